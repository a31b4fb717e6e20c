//go:build windows

package db

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// acquireFileLockTimeout tries to acquire an exclusive lock with
// exponential backoff up to the given timeout.
func acquireFileLockTimeout(f *os.File, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	backoff := 5 * time.Millisecond
	maxBackoff := 50 * time.Millisecond

	for {
		ol := new(windows.Overlapped)
		err := windows.LockFileEx(
			windows.Handle(f.Fd()),
			windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
			0, 1, 0, ol,
		)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout after %v waiting for write lock", timeout)
		}
		time.Sleep(backoff)
		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// releaseFileLock releases the exclusive lock.
func releaseFileLock(f *os.File) {
	if f != nil {
		ol := new(windows.Overlapped)
		windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, ol)
	}
}
