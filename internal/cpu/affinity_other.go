//go:build !linux && !windows

package cpu

// pinThread is a no-op: macOS and the BSDs expose no thread-to-core pinning.
func pinThread(int) error {
	return nil
}
