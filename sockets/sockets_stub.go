//go:build !linux && !windows
// +build !linux,!windows

// File: sockets/sockets_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package sockets

import (
	"errors"

	"github.com/momentics/socksupport/api"
)

// NewProvider returns an error for unsupported platforms.
func NewProvider() (api.Provider, error) {
	return nil, errors.New("sockets: this platform is not supported")
}

// SocketFromRecord returns an error for unsupported platforms.
func SocketFromRecord(info []byte) (uintptr, error) {
	return 0, errors.New("sockets: this platform is not supported")
}
