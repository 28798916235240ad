package input

import (
	"sync"
	"time"
)

// Queue is a Source backed by an in-process slice. Drivers that receive
// their raw notifications asynchronously (or tests that inject them) post
// records here and hand the queue to a decoder.
type Queue struct {
	mu   sync.Mutex
	recs []Record
	wake chan struct{}
	once sync.Once
}

func (q *Queue) init() {
	q.once.Do(func() {
		q.wake = make(chan struct{}, 1)
	})
}

// Post appends records, waking any blocked Read.
func (q *Queue) Post(recs ...Record) {
	q.init()
	q.mu.Lock()
	q.recs = append(q.recs, recs...)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Read implements Source.
func (q *Queue) Read(max int, timeout time.Duration) ([]Record, error) {
	q.init()
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		q.mu.Lock()
		if len(q.recs) > 0 {
			n := min(max, len(q.recs))
			out := append([]Record(nil), q.recs[:n]...)
			q.recs = q.recs[n:]
			q.mu.Unlock()
			return out, nil
		}
		q.mu.Unlock()

		switch {
		case timeout == 0:
			return nil, nil
		case timeout > 0:
			remain := time.Until(deadline)
			if remain <= 0 {
				return nil, nil
			}
			timer := time.NewTimer(remain)
			select {
			case <-q.wake:
				timer.Stop()
			case <-timer.C:
				return nil, nil
			}
		default:
			<-q.wake
		}
	}
}

// Peek implements Source.
func (q *Queue) Peek(max int) ([]Record, error) {
	q.init()
	q.mu.Lock()
	defer q.mu.Unlock()
	n := min(max, len(q.recs))
	return append([]Record(nil), q.recs[:n]...), nil
}

// Pending implements Source.
func (q *Queue) Pending() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.recs), nil
}
