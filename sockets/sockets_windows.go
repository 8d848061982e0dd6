//go:build windows
// +build windows

// File: sockets/sockets_windows.go
// Author: momentics <momentics@gmail.com>
//
// Winsock provider: WSAStartup, WSADuplicateSocketW, WSACreateEvent,
// WSAEventSelect. The duplication blob is the raw WSAPROTOCOL_INFOW
// structure and must reach the consuming socket constructor unmodified.

package sockets

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/socksupport/api"
)

// api.EventRead and api.EventWrite are defined to the FD_READ/FD_WRITE
// values, so masks pass to WSAEventSelect unchanged.

const fromProtocolInfo = -1 // af/type/protocol selector for WSASocket

var (
	modws2_32 = windows.NewLazySystemDLL("ws2_32.dll")

	procWSADuplicateSocketW = modws2_32.NewProc("WSADuplicateSocketW")
	procWSACreateEvent      = modws2_32.NewProc("WSACreateEvent")
	procWSACloseEvent       = modws2_32.NewProc("WSACloseEvent")
	procWSAEventSelect      = modws2_32.NewProc("WSAEventSelect")
)

// windowsRecordSize is the byte length of WSAPROTOCOL_INFOW.
var windowsRecordSize = int(unsafe.Sizeof(windows.WSAProtocolInfo{}))

// callErrno interprets the error slot of a LazyProc.Call after the
// return value indicated failure. WSA functions report through the
// same thread-local slot GetLastError reads.
func callErrno(err error) syscall.Errno {
	if errno, ok := err.(syscall.Errno); ok && errno != 0 {
		return errno
	}
	return syscall.EINVAL
}

type windowsProvider struct{}

// NewProvider constructs the Winsock provider.
func NewProvider() (api.Provider, error) {
	return &windowsProvider{}, nil
}

// Startup starts Winsock with the requested version.
func (p *windowsProvider) Startup(major, minor byte) error {
	var data windows.WSAData
	// MAKEWORD(major, minor)
	if err := windows.WSAStartup(uint32(major)|uint32(minor)<<8, &data); err != nil {
		return &api.InitError{Code: errnoOf(err)}
	}
	return nil
}

func (p *windowsProvider) StdinHandle() (uintptr, error) {
	h, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return 0, &api.CallError{Op: "get-stdin-handle", Code: errnoOf(err)}
	}
	return uintptr(h), nil
}

// DuplicateSocket asks Winsock to duplicate the socket for the current
// process. WSAENOTSOCK is the expected outcome for console, file, and
// pipe handles and is reported as ok == false rather than an error.
func (p *windowsProvider) DuplicateSocket(handle uintptr, info []byte) (bool, error) {
	if len(info) < windowsRecordSize {
		return false, &api.CallError{Op: "duplicate", Code: windows.WSAEFAULT}
	}
	infoPtr := (*windows.WSAProtocolInfo)(unsafe.Pointer(&info[0]))
	r1, _, e1 := procWSADuplicateSocketW.Call(
		handle,
		uintptr(windows.GetCurrentProcessId()),
		uintptr(unsafe.Pointer(infoPtr)),
	)
	if int32(r1) == -1 {
		errno := callErrno(e1)
		if errno == windows.WSAENOTSOCK {
			return false, nil
		}
		return false, &api.CallError{Op: "duplicate", Code: errno}
	}
	return true, nil
}

// RegisterEvent creates a WSAEVENT and ties it to the socket for the
// given readiness mask. A second WSAEventSelect on the same socket
// replaces the previous association.
func (p *windowsProvider) RegisterEvent(handle uintptr, mask api.EventMask) (api.WaitHandle, error) {
	ev, _, e1 := procWSACreateEvent.Call()
	if ev == 0 {
		return nil, &api.CallError{Op: "create-event", Code: callErrno(e1)}
	}
	r1, _, e2 := procWSAEventSelect.Call(handle, ev, uintptr(mask))
	if int32(r1) == -1 {
		errno := callErrno(e2)
		procWSACloseEvent.Call(ev)
		return nil, &api.CallError{Op: "event-select", Code: errno}
	}
	return &wsaEvent{handle: windows.Handle(ev)}, nil
}

func (p *windowsProvider) CloseHandle(handle uintptr) error {
	if err := windows.CloseHandle(windows.Handle(handle)); err != nil {
		return &api.CallError{Op: "close-handle", Code: errnoOf(err)}
	}
	return nil
}

func (p *windowsProvider) RecordSize() int { return windowsRecordSize }

// SocketFromRecord builds a new socket from a duplication record blob,
// the Winsock equivalent of constructing a socket from
// WSAPROTOCOL_INFOW.
func SocketFromRecord(info []byte) (uintptr, error) {
	if len(info) < windowsRecordSize {
		return 0, &api.CallError{Op: "socket-from-record", Code: windows.WSAEFAULT}
	}
	pi := (*windows.WSAProtocolInfo)(unsafe.Pointer(&info[0]))
	h, err := windows.WSASocket(fromProtocolInfo, fromProtocolInfo, fromProtocolInfo, pi, 0, windows.WSA_FLAG_OVERLAPPED)
	if err != nil {
		return 0, &api.CallError{Op: "socket-from-record", Code: errnoOf(err)}
	}
	return uintptr(h), nil
}

// wsaEvent wraps a WSAEVENT as an api.WaitHandle.
type wsaEvent struct {
	handle windows.Handle
}

func (e *wsaEvent) Wait(timeout time.Duration) (bool, error) {
	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(timeout / time.Millisecond)
	}
	status, err := windows.WaitForSingleObject(e.handle, ms)
	switch status {
	case windows.WAIT_OBJECT_0:
		return true, nil
	case uint32(windows.WAIT_TIMEOUT):
		return false, nil
	}
	return false, &api.CallError{Op: "wait", Code: errnoOf(err)}
}

func (e *wsaEvent) Raw() uintptr { return uintptr(e.handle) }

func (e *wsaEvent) Close() error {
	r1, _, e1 := procWSACloseEvent.Call(uintptr(e.handle))
	if r1 == 0 {
		return &api.CallError{Op: "close-event", Code: callErrno(e1)}
	}
	return nil
}
