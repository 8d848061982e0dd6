//go:build linux
// +build linux

// File: sockets/sockets_linux.go
// Author: momentics <momentics@gmail.com>
//
// POSIX analogue of the Winsock provider. There is no subsystem to
// start; duplication is fcntl F_DUPFD_CLOEXEC plus a small metadata
// record, and wait handles are dedicated epoll instances armed with
// the requested readiness mask.

package sockets

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/socksupport/api"
)

// Linux duplication record layout, little-endian:
//
//	bytes  0..3   int32  duplicated file descriptor
//	bytes  4..7   int32  socket domain (SO_DOMAIN)
//	bytes  8..11  int32  socket type (SO_TYPE)
//	bytes 12..15  int32  socket protocol (SO_PROTOCOL)
//	bytes 16..31  reserved, zero
const linuxRecordSize = 32

type linuxProvider struct{}

// NewProvider constructs the POSIX provider.
func NewProvider() (api.Provider, error) {
	return &linuxProvider{}, nil
}

// Startup is a no-op: POSIX sockets need no subsystem initialization.
func (p *linuxProvider) Startup(major, minor byte) error { return nil }

func (p *linuxProvider) StdinHandle() (uintptr, error) {
	return uintptr(unix.Stdin), nil
}

// DuplicateSocket probes the descriptor with SO_TYPE, then duplicates
// it and encodes the record. ENOTSOCK is the expected outcome for
// console, file, and pipe descriptors and is reported as ok == false
// rather than an error.
func (p *linuxProvider) DuplicateSocket(handle uintptr, info []byte) (bool, error) {
	if len(info) < linuxRecordSize {
		return false, &api.CallError{Op: "duplicate", Code: unix.EINVAL}
	}
	fd := int(handle)
	sotype, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		if err == unix.ENOTSOCK {
			return false, nil
		}
		return false, &api.CallError{Op: "duplicate", Code: errnoOf(err)}
	}
	domain, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_DOMAIN)
	if err != nil {
		return false, &api.CallError{Op: "duplicate", Code: errnoOf(err)}
	}
	proto, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_PROTOCOL)
	if err != nil {
		return false, &api.CallError{Op: "duplicate", Code: errnoOf(err)}
	}
	dup, err := unix.FcntlInt(handle, unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return false, &api.CallError{Op: "duplicate", Code: errnoOf(err)}
	}
	binary.LittleEndian.PutUint32(info[0:4], uint32(dup))
	binary.LittleEndian.PutUint32(info[4:8], uint32(domain))
	binary.LittleEndian.PutUint32(info[8:12], uint32(sotype))
	binary.LittleEndian.PutUint32(info[12:16], uint32(proto))
	for i := 16; i < linuxRecordSize; i++ {
		info[i] = 0
	}
	return true, nil
}

// RegisterEvent arms a fresh epoll instance with the requested mask.
// Each registration owns its own instance, so the returned handles are
// independent of one another.
func (p *linuxProvider) RegisterEvent(handle uintptr, mask api.EventMask) (api.WaitHandle, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, &api.CallError{Op: "create-event", Code: errnoOf(err)}
	}
	var events uint32
	if mask&api.EventRead != 0 {
		events |= unix.EPOLLIN
	}
	if mask&api.EventWrite != 0 {
		events |= unix.EPOLLOUT
	}
	ev := &unix.EpollEvent{Events: events, Fd: int32(handle)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, int(handle), ev); err != nil {
		unix.Close(epfd)
		return nil, &api.CallError{Op: "event-select", Code: errnoOf(err)}
	}
	return &epollEvent{epfd: epfd}, nil
}

func (p *linuxProvider) CloseHandle(handle uintptr) error {
	if err := unix.Close(int(handle)); err != nil {
		return &api.CallError{Op: "close-handle", Code: errnoOf(err)}
	}
	return nil
}

func (p *linuxProvider) RecordSize() int { return linuxRecordSize }

// SocketFromRecord extracts the duplicated socket descriptor from a
// record blob produced by DuplicateSocket.
func SocketFromRecord(info []byte) (uintptr, error) {
	if len(info) < linuxRecordSize {
		return 0, &api.CallError{Op: "socket-from-record", Code: unix.EINVAL}
	}
	fd := int32(binary.LittleEndian.Uint32(info[0:4]))
	if fd < 0 {
		return 0, &api.CallError{Op: "socket-from-record", Code: unix.EBADF}
	}
	return uintptr(fd), nil
}

// epollEvent wraps a single-socket epoll instance as an api.WaitHandle.
type epollEvent struct {
	epfd int
}

func (e *epollEvent) Wait(timeout time.Duration) (bool, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	var events [1]unix.EpollEvent
	for {
		n, err := unix.EpollWait(e.epfd, events[:], ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, &api.CallError{Op: "wait", Code: errnoOf(err)}
		}
		return n > 0, nil
	}
}

func (e *epollEvent) Raw() uintptr { return uintptr(e.epfd) }

func (e *epollEvent) Close() error {
	if err := unix.Close(e.epfd); err != nil {
		return &api.CallError{Op: "close-event", Code: errnoOf(err)}
	}
	return nil
}
