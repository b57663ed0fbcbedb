package store

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// lockTimeout bounds how long a writer waits for a sibling writer in the
// same process group. Locking is advisory, single-writer-per-file
// discipline — not multi-process coordination.
const lockTimeout = 5 * time.Second

type fileLock struct {
	file *os.File
}

// acquireLock takes an exclusive flock on a sidecar ".lock" file next to
// path, so the lock never interferes with atomic renames of the file
// itself.
func acquireLock(path string) (*fileLock, error) {
	lockPath := path + ".lock"

	file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms) //nolint:gosec // path derives from the store root
	if openErr != nil {
		return nil, fmt.Errorf("%w: %w", errLockFileOpen, openErr)
	}

	deadline := time.Now().Add(lockTimeout)

	const retryInterval = 10 * time.Millisecond

	for {
		flockErr := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if flockErr == nil {
			return &fileLock{file: file}, nil
		}

		if time.Now().After(deadline) {
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		time.Sleep(retryInterval)
	}
}

func (l *fileLock) release() {
	if l.file != nil {
		_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		_ = l.file.Close()
	}
}

// withFileLock runs fn while holding the exclusive lock for path.
func withFileLock(path string, fn func() error) error {
	lock, err := acquireLock(path)
	if err != nil {
		return err
	}

	defer lock.release()

	return fn()
}
