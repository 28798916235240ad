//go:build windows

package main

import (
	"github.com/dshills/conio/conlog"
	"github.com/dshills/conio/console"
	"github.com/dshills/conio/console/windriver"
)

// openDevice uses the native console API on Windows.
func openDevice(log *conlog.Logger) (console.InputDevice, error) {
	return windriver.New(windriver.WithLogger(log))
}
