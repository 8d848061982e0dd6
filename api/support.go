// File: api/support.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared contracts between the facade and the platform socket
// providers: readiness masks, duplication records, wait handles, and
// the provider interface itself.

package api

import "time"

// EventMask selects the readiness condition an event is associated
// with. Values match the Winsock FD_READ/FD_WRITE masks and map to
// EPOLLIN/EPOLLOUT on Linux.
type EventMask uint32

const (
	EventRead  EventMask = 1 << 0
	EventWrite EventMask = 1 << 1
)

func (m EventMask) String() string {
	switch m {
	case EventRead:
		return "read"
	case EventWrite:
		return "write"
	default:
		return "unknown"
	}
}

// DuplicationRecord describes a duplicated socket for handoff to a
// socket constructor. ProtocolInfo is an opaque blob whose byte layout
// is owned by the OS ABI (WSAPROTOCOL_INFOW on Windows) and must be
// passed through unmodified. When a duplication attempt reports "not a
// socket" the record is left partially populated and is unusable.
type DuplicationRecord struct {
	ProtocolInfo []byte
	Listening    bool
}

// WaitHandle is an OS synchronization object tied to a socket
// readiness condition. Ownership rests with the caller, who must Close
// it to release the underlying event object.
type WaitHandle interface {
	// Wait blocks until the handle is signaled or the timeout elapses.
	// A negative timeout blocks indefinitely. Returns true if signaled,
	// false on timeout.
	Wait(timeout time.Duration) (bool, error)

	// Raw returns the underlying OS handle value for interop with
	// native wait primitives.
	Raw() uintptr

	// Close releases the underlying OS event object.
	Close() error
}

// Provider exposes the host socket-subsystem primitives behind a
// platform-neutral surface. Real implementations live in the sockets
// package; scripted doubles for tests live in the fake package.
type Provider interface {
	// Startup starts the OS socket subsystem requesting the given
	// version. The facade guarantees it runs once before any other
	// method. A no-op on platforms without an explicit subsystem.
	Startup(major, minor byte) error

	// StdinHandle returns the process's inherited standard-input handle.
	StdinHandle() (uintptr, error)

	// DuplicateSocket duplicates the socket behind handle for the
	// current process, writing the duplication blob into info, which
	// must be at least RecordSize bytes. Returns ok == false with a nil
	// error when the handle is not a socket; info may be partially
	// written in that case.
	DuplicateSocket(handle uintptr, info []byte) (ok bool, err error)

	// RegisterEvent creates a new OS event object and associates it
	// with the socket behind handle for the given readiness mask.
	// Ownership of the returned WaitHandle transfers to the caller.
	RegisterEvent(handle uintptr, mask EventMask) (WaitHandle, error)

	// CloseHandle closes an OS handle.
	CloseHandle(handle uintptr) error

	// RecordSize returns the size in bytes of the platform's socket
	// duplication blob.
	RecordSize() int
}
