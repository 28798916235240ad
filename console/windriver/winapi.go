//go:build windows

package windriver

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/dshills/conio/console"
)

// kernel32 calls missing from x/sys/windows are resolved lazily, the same
// way tcell reaches the console API.
var (
	k32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetConsoleScreenBufferInfoEx = k32.NewProc("GetConsoleScreenBufferInfoEx")
	procSetConsoleScreenBufferInfoEx = k32.NewProc("SetConsoleScreenBufferInfoEx")
	procSetConsoleScreenBufferSize   = k32.NewProc("SetConsoleScreenBufferSize")
	procSetConsoleTextAttribute      = k32.NewProc("SetConsoleTextAttribute")
	procReadConsoleOutput            = k32.NewProc("ReadConsoleOutputW")
	procWriteConsoleOutput           = k32.NewProc("WriteConsoleOutputW")
	procGetConsoleTitle              = k32.NewProc("GetConsoleTitleW")
	procSetConsoleTitle              = k32.NewProc("SetConsoleTitleW")
	procReadConsoleInput             = k32.NewProc("ReadConsoleInputW")
	procPeekConsoleInput             = k32.NewProc("PeekConsoleInputW")
	procGetNumberOfInputEvents       = k32.NewProc("GetNumberOfConsoleInputEvents")
	procFlushConsoleInputBuffer      = k32.NewProc("FlushConsoleInputBuffer")
)

type coord struct {
	x int16
	y int16
}

func (c coord) uintptr() uintptr {
	// Passed by value: x in the low word.
	return uintptr(uint16(c.x)) | uintptr(uint16(c.y))<<16
}

type smallRect struct {
	left   int16
	top    int16
	right  int16
	bottom int16
}

type charInfo struct {
	ch   uint16
	attr uint16
}

// consoleInfoEx mirrors CONSOLE_SCREEN_BUFFER_INFOEX.
type consoleInfoEx struct {
	size                uint32
	bufferSize          coord
	cursorPos           coord
	attributes          uint16
	window              smallRect
	maxWindowSize       coord
	popupAttributes     uint16
	fullscreenSupported int32
	colorTable          [16]uint32
}

// Raw INPUT_RECORD. The event union starts after the type word and its
// padding.
type inputRecord struct {
	typ  uint16
	_    uint16
	data [16]byte
}

const (
	recKeyEvent    uint16 = 0x0001
	recMouseEvent  uint16 = 0x0002
	recResizeEvent uint16 = 0x0004
	recMenuEvent   uint16 = 0x0008
	recFocusEvent  uint16 = 0x0010
)

type keyEventRecord struct {
	keyDown         int32
	repeatCount     uint16
	virtualKeyCode  uint16
	virtualScanCode uint16
	unicodeChar     uint16
	controlKeyState uint32
}

type mouseEventRecord struct {
	x           int16
	y           int16
	buttonState uint32
	controlKeys uint32
	eventFlags  uint32
}

type resizeEventRecord struct {
	x int16
	y int16
}

type menuEventRecord struct {
	commandID uint32
}

type focusEventRecord struct {
	setFocus int32
}

// DBCS cell markers in the attribute word, stripped on read.
const (
	commonLVBLeadingByte  uint16 = 0x0100
	commonLVBTrailingByte uint16 = 0x0200
)

// wrap maps a native errno onto the package sentinels where one applies.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch err {
	case windows.ERROR_INVALID_HANDLE:
		return fmt.Errorf("%s: %w", op, console.ErrInvalidHandle)
	case windows.ERROR_INVALID_PARAMETER:
		return fmt.Errorf("%s: %w", op, console.ErrInvalidParameter)
	case windows.ERROR_ACCESS_DENIED:
		return fmt.Errorf("%s: %w", op, console.ErrAccessDenied)
	case windows.ERROR_CALL_NOT_IMPLEMENTED:
		return fmt.Errorf("%s: %w", op, console.ErrUnsupported)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// call invokes a lazy proc that reports failure with a zero return.
func call(op string, proc *windows.LazyProc, args ...uintptr) error {
	ret, _, err := proc.Call(args...)
	if ret == 0 {
		return wrap(op, err)
	}
	return nil
}

// colorref packs an RGB triple into the 0x00BBGGRR layout the color table
// uses.
func colorref(r, g, b uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16
}

func fromColorref(v uint32) (r, g, b uint8) {
	return uint8(v), uint8(v >> 8), uint8(v >> 16)
}
