// Package cpu pins pool workers to CPU cores where the platform allows it.
package cpu

import "runtime"

// Cores returns the number of logical CPUs usable by the process.
func Cores() int {
	return runtime.NumCPU()
}

// core maps a worker index onto a valid core index.
func core(workerID int) int {
	n := Cores()
	id := workerID % n
	if id < 0 {
		id += n
	}
	return id
}

// Pin locks the calling goroutine to its OS thread and, where supported,
// restricts that thread to the core assigned to workerID. The returned
// release function must be called from the same goroutine once the worker
// exits. The error reports a failed pin; the thread stays locked either way.
func Pin(workerID int) (release func(), err error) {
	runtime.LockOSThread()
	err = pinThread(core(workerID))
	return runtime.UnlockOSThread, err
}
