//go:build linux

package cpu

import "golang.org/x/sys/unix"

// pinThread restricts the current OS thread to a single core.
func pinThread(coreID int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(coreID)

	// 0 = calling thread
	return unix.SchedSetaffinity(0, &mask)
}
