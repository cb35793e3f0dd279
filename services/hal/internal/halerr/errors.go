package halerr

import "hhgarden-go/errcode"

// Sentinels are errcode.Code values so that errcode.Of maps them directly.
var (
	// Lookup / role mismatch
	ErrNotFound    error = errcode.NotFound
	ErrInvalidType error = errcode.InvalidType

	// Capacity / allocation
	ErrOutOfIndex  error = errcode.OutOfIndex
	ErrOutOfMemory error = errcode.OutOfMemory

	// Capability absent (null-object platform)
	ErrUnsupported error = errcode.Unsupported

	// Capability present but returned false
	ErrRejected error = errcode.Rejected

	// Interrupt operations
	ErrNoInterrupt error = errcode.NoInterrupt

	// Bridges
	ErrAlreadyRunning error = errcode.AlreadyRunning
)

// ErrInvalidName rejects empty or oversize peripheral names.
var ErrInvalidName error = errcode.InvalidName
