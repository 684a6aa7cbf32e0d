package engine

import "errors"

var (
	// ErrKeyNotFound is returned by Remove when the key has no entry in the
	// keydir. Get does not use it: a missing key is reported as (nil, nil).
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidFileHandler is returned when the keydir points at a
	// generation with no corresponding open read handle. This indicates an
	// internal bookkeeping bug, never a normal runtime condition.
	ErrInvalidFileHandler = errors.New("invalid file handler for generation")

	// ErrWriterBusy is returned when the current buffered writer cannot be
	// handed off to a new generation because a previous write on it is
	// still unresolved.
	ErrWriterBusy = errors.New("writer busy: pending write error")

	// ErrCorruptRecord is returned when a positioned read (by keydir offset)
	// lands on anything other than the expected Set: a Remove record, or a
	// record of unknown kind. The keydir should never point at anything
	// else; seeing this means the on-disk log and the in-memory index have
	// diverged.
	ErrCorruptRecord = errors.New("corrupt record: expected set")
)
