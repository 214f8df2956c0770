//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableWindowsANSI turns on virtual terminal processing so the progress
// bar and colors render on Windows 10+ consoles.
func enableWindowsANSI() {
	handle := windows.Handle(os.Stdout.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return
	}
	_ = windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
