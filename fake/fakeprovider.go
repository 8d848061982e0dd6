// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"time"

	"github.com/momentics/socksupport/api"
)

// FakeWaitHandle provides a test/dummy WaitHandle.
type FakeWaitHandle struct {
	Signaled bool
	ClosedN  int
	ID       uintptr
}

func (f *FakeWaitHandle) Wait(timeout time.Duration) (bool, error) { return f.Signaled, nil }
func (f *FakeWaitHandle) Raw() uintptr                             { return f.ID }
func (f *FakeWaitHandle) Close() error                             { f.ClosedN++; return nil }

// Registration records one RegisterEvent call.
type Registration struct {
	Handle uintptr
	Mask   api.EventMask
}

// FakeProvider provides a scripted api.Provider for facade tests.
// Zero value is usable: startup succeeds, duplication reports
// "not a socket", registrations succeed.
type FakeProvider struct {
	mu sync.Mutex

	StartupErr   error
	StartupCalls int

	Stdin    uintptr
	StdinErr error

	DupOK   bool
	DupErr  error
	DupFill byte // byte written across the record blob on success

	RegisterErr error
	Size        int

	Closed     []uintptr
	Registered []Registration
	nextHandle uintptr
}

func (f *FakeProvider) Startup(major, minor byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StartupCalls++
	return f.StartupErr
}

func (f *FakeProvider) StdinHandle() (uintptr, error) {
	if f.StdinErr != nil {
		return 0, f.StdinErr
	}
	return f.Stdin, nil
}

func (f *FakeProvider) DuplicateSocket(handle uintptr, info []byte) (bool, error) {
	if f.DupErr != nil {
		return false, f.DupErr
	}
	if !f.DupOK {
		return false, nil
	}
	for i := range info {
		info[i] = f.DupFill
	}
	return true, nil
}

func (f *FakeProvider) RegisterEvent(handle uintptr, mask api.EventMask) (api.WaitHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	f.nextHandle++
	f.Registered = append(f.Registered, Registration{Handle: handle, Mask: mask})
	return &FakeWaitHandle{ID: f.nextHandle}, nil
}

func (f *FakeProvider) CloseHandle(handle uintptr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = append(f.Closed, handle)
	return nil
}

func (f *FakeProvider) RecordSize() int {
	if f.Size > 0 {
		return f.Size
	}
	return 32
}
