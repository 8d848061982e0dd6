package api_test

import (
	"errors"
	"strings"
	"syscall"
	"testing"

	"github.com/momentics/socksupport/api"
)

func TestCallErrorCarriesCode(t *testing.T) {
	err := &api.CallError{Op: "event-select", Code: syscall.EBADF}
	if !errors.Is(err, syscall.EBADF) {
		t.Error("CallError must unwrap to its OS code")
	}
	if !strings.Contains(err.Error(), "event-select") {
		t.Errorf("CallError message %q must name the operation", err.Error())
	}
}

func TestInitErrorCarriesCode(t *testing.T) {
	var err error = &api.InitError{Code: syscall.EACCES}
	if !errors.Is(err, syscall.EACCES) {
		t.Error("InitError must unwrap to its OS code")
	}
	var ie *api.InitError
	if !errors.As(err, &ie) || ie.Code != syscall.EACCES {
		t.Error("errors.As must match *InitError and preserve the code")
	}
}

func TestEventMaskString(t *testing.T) {
	if api.EventRead.String() != "read" || api.EventWrite.String() != "write" {
		t.Error("mask names mismatch")
	}
	if (api.EventRead | api.EventWrite).String() != "unknown" {
		t.Error("combined mask has no name")
	}
}
