//go:build !windows

// pkg/storage/lock_unix.go
package storage

import (
	"os"

	"golang.org/x/sys/unix"

	"tur/pkg/dberrors"
)

// Lock acquires a non-blocking advisory exclusive lock on f, guarding
// against two tinysql processes pointing at the same catalog file
// (spec.md §4.5/§6; outside this single-process engine's own concurrency
// model but cheap to defend against regardless).
func Lock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if err == unix.EWOULDBLOCK {
			return dberrors.New(dberrors.IO, "catalog file %s is locked by another process", f.Name())
		}
		return dberrors.Wrap(dberrors.IO, err, "locking catalog file")
	}
	return nil
}

// Unlock releases the lock acquired by Lock.
func Unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
