//go:build windows

package cpu

import "golang.org/x/sys/windows"

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinThread restricts the current OS thread to a single core.
// Bit N of the mask selects core N.
func pinThread(coreID int) error {
	handle := windows.CurrentThread()
	prev, _, err := setThreadAffinityMask.Call(uintptr(handle), uintptr(1)<<uint(coreID))
	if prev == 0 {
		return err
	}
	return nil
}
