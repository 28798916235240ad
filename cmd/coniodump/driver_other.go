//go:build !windows

package main

import (
	"github.com/dshills/conio/conlog"
	"github.com/dshills/conio/console"
	"github.com/dshills/conio/console/tcelldriver"
)

// openDevice drives the terminal through tcell everywhere else.
func openDevice(log *conlog.Logger) (console.InputDevice, error) {
	return tcelldriver.New(tcelldriver.WithLogger(log))
}
