//go:build !windows

package main

// enableWindowsANSI is a no-op outside Windows.
func enableWindowsANSI() {}
