// Package api
// Author: momentics <momentics@gmail.com>
//
// Structured error types for socket subsystem failures. Both kinds
// carry the raw OS error code so callers can branch on specific
// conditions without string parsing.

package api

import (
	"fmt"
	"syscall"
)

// InitError reports that the OS socket subsystem could not be started.
// Startup runs once per facade instance; after a failure every
// operation returns the same InitError. The condition is unrecoverable
// for the process.
type InitError struct {
	Code syscall.Errno // raw OS error code from subsystem startup
}

func (e *InitError) Error() string {
	return fmt.Sprintf("socksupport: subsystem startup failed: %v (code %d)", e.Code, uintptr(e.Code))
}

// Unwrap exposes the OS error code for errors.Is/errors.As matching.
func (e *InitError) Unwrap() error { return e.Code }

// CallError reports an OS failure during a single operation.
type CallError struct {
	Op   string        // operation name, e.g. "duplicate" or "event-select"
	Code syscall.Errno // raw OS error code
}

func (e *CallError) Error() string {
	return fmt.Sprintf("socksupport: %s: %v (code %d)", e.Op, e.Code, uintptr(e.Code))
}

// Unwrap exposes the OS error code for errors.Is/errors.As matching.
func (e *CallError) Unwrap() error { return e.Code }
