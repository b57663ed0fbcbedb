package store

import "errors"

// Surfaced failure modes. Parse-layer problems never abort a read; these
// are the write-layer outcomes a caller must decide on.
var (
	// ErrNotFound reports an operation against an identifier with no
	// backing file in the searched scope.
	ErrNotFound = errors.New("task not found")

	// ErrWriteConflict reports that the file changed on disk after the
	// caller captured its fingerprint. The caller must reload and retry;
	// the store never silently overwrites an external edit.
	ErrWriteConflict = errors.New("write conflict: file changed on disk")

	// ErrExists reports a create or move that would clobber an existing
	// file.
	ErrExists = errors.New("task file already exists")

	// ErrItemNotFound reports a checklist toggle whose item number does
	// not exist in the group.
	ErrItemNotFound = errors.New("checklist item not found")

	errLockTimeout  = errors.New("lock timeout")
	errLockFileOpen = errors.New("failed to open lock file")
)
