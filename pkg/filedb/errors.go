package filedb

import "errors"

var (
	// ErrCorrupt reports a collection file that exists but cannot be read
	// or decoded.
	ErrCorrupt = errors.New("filedb: collection file is corrupt")

	// ErrUnavailable reports an OS-level failure writing or locking the
	// store (permissions, missing directory, full disk).
	ErrUnavailable = errors.New("filedb: store unavailable")

	// ErrLockBusy is returned when a bounded lock wait runs out.
	ErrLockBusy = errors.New("filedb: lock busy")

	// ErrUnknownCollection is returned for a collection name that was not
	// registered in Config.Collections.
	ErrUnknownCollection = errors.New("filedb: unknown collection")

	// ErrTypeMismatch is returned when one Tx loads the same collection with
	// two different record types.
	ErrTypeMismatch = errors.New("filedb: record type mismatch")
)
