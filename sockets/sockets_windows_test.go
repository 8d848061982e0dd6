//go:build windows
// +build windows

package sockets_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/windows"

	"github.com/momentics/socksupport/api"
	"github.com/momentics/socksupport/sockets"
)

func startedProvider(t *testing.T) api.Provider {
	t.Helper()
	p, err := sockets.NewProvider()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Startup(2, 0); err != nil {
		t.Fatal(err)
	}
	return p
}

// testSocket creates a raw TCP socket outside the Go runtime poller.
// Only socket handles can participate in duplication and event
// registration; pipe handles cannot.
func testSocket(t *testing.T) windows.Handle {
	t.Helper()
	s, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		t.Fatal("socket:", err)
	}
	t.Cleanup(func() { windows.Closesocket(s) })
	return s
}

// connectedSocket returns a raw socket connected to a loopback
// listener created for the test.
func connectedSocket(t *testing.T) windows.Handle {
	t.Helper()
	l := testSocket(t)
	sa := &windows.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}
	if err := windows.Bind(l, sa); err != nil {
		t.Fatal("bind:", err)
	}
	if err := windows.Listen(l, 1); err != nil {
		t.Fatal("listen:", err)
	}
	bound, err := windows.Getsockname(l)
	if err != nil {
		t.Fatal("getsockname:", err)
	}
	c := testSocket(t)
	if err := windows.Connect(c, bound.(*windows.SockaddrInet4)); err != nil {
		t.Fatal("connect:", err)
	}
	return c
}

func TestStartupIdempotent(t *testing.T) {
	p := startedProvider(t)
	for i := 0; i < 5; i++ {
		if err := p.Startup(2, 0); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDuplicateSocketPopulatesRecord(t *testing.T) {
	p := startedProvider(t)
	s := testSocket(t)
	info := make([]byte, p.RecordSize())
	ok, err := p.DuplicateSocket(uintptr(s), info)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("TCP socket handle must duplicate as a socket")
	}
	h, err := sockets.SocketFromRecord(info)
	if err != nil {
		t.Fatal(err)
	}
	if err := windows.Closesocket(windows.Handle(h)); err != nil {
		t.Errorf("reconstructed socket unusable: %v", err)
	}
}

func TestDuplicateNotASocket(t *testing.T) {
	p := startedProvider(t)
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	info := make([]byte, p.RecordSize())
	ok, err := p.DuplicateSocket(r.Fd(), info)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("pipe handle must not duplicate as a socket")
	}
	// The original handle must stay usable.
	if _, err := w.Write([]byte{1}); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 1)
	if _, err := r.Read(buf); err != nil {
		t.Errorf("pipe unusable after failed duplication: %v", err)
	}
}

func TestRegisterReadEventNotSignaled(t *testing.T) {
	p := startedProvider(t)
	c := connectedSocket(t)
	wh, err := p.RegisterEvent(uintptr(c), api.EventRead)
	if err != nil {
		t.Fatal(err)
	}
	defer wh.Close()
	signaled, err := wh.Wait(50 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if signaled {
		t.Error("read event must not signal with no inbound data")
	}
}

func TestRegisterWriteEventSignals(t *testing.T) {
	p := startedProvider(t)
	c := connectedSocket(t)
	wh, err := p.RegisterEvent(uintptr(c), api.EventWrite)
	if err != nil {
		t.Fatal(err)
	}
	defer wh.Close()
	signaled, err := wh.Wait(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !signaled {
		t.Error("connected socket must report write readiness")
	}
}

func TestRegisterReadAndWriteIndependentHandles(t *testing.T) {
	p := startedProvider(t)
	s := testSocket(t)
	rh, err := p.RegisterEvent(uintptr(s), api.EventRead)
	if err != nil {
		t.Fatal(err)
	}
	wh, err := p.RegisterEvent(uintptr(s), api.EventWrite)
	if err != nil {
		t.Fatal(err)
	}
	if rh.Raw() == wh.Raw() {
		t.Error("wait handles must be distinct")
	}
	if err := rh.Close(); err != nil {
		t.Error(err)
	}
	if err := wh.Close(); err != nil {
		t.Error(err)
	}
}

func TestRegisterEventInvalidHandle(t *testing.T) {
	p := startedProvider(t)
	s, err := windows.Socket(windows.AF_INET, windows.SOCK_STREAM, windows.IPPROTO_TCP)
	if err != nil {
		t.Fatal(err)
	}
	windows.Closesocket(s)
	_, err = p.RegisterEvent(uintptr(s), api.EventRead)
	var ce *api.CallError
	if !errors.As(err, &ce) {
		t.Fatalf("want *api.CallError, got %v", err)
	}
	if ce.Code == 0 {
		t.Error("call error must carry a non-zero OS code")
	}
}
