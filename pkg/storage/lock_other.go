//go:build windows

// pkg/storage/lock_other.go
package storage

import "os"

// Lock is a no-op placeholder on platforms without a flock-style
// primitive wired up here; single-process use (spec.md §5) does not
// depend on it for correctness.
func Lock(f *os.File) error { return nil }

// Unlock is the no-op counterpart to Lock.
func Unlock(f *os.File) error { return nil }
