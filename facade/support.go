// File: facade/support.go
// Socket support facade for the socksupport library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the SocketSupport struct, which aggregates the
// platform socket provider behind the three operations:
// duplicate-stdin-as-socket, register-read-event, and
// register-write-event. Subsystem startup runs once per instance, at
// the first operation, and a startup failure is replayed to every
// subsequent caller. A package-level default instance mirrors the
// process-wide facade of the original interop surface.

package facade

import (
	"log"
	"sync"

	"github.com/momentics/socksupport/api"
	"github.com/momentics/socksupport/control"
	"github.com/momentics/socksupport/sockets"
)

// Config holds parameters immutable per instance.
type Config struct {
	VersionMajor  byte // requested socket subsystem major version
	VersionMinor  byte // requested socket subsystem minor version
	EnableMetrics bool // whether to count operations in the metrics registry
}

// DefaultConfig returns default configuration values. Version 2.0 is
// the subsystem version this facade has always requested on Windows;
// the POSIX provider ignores it.
func DefaultConfig() *Config {
	return &Config{
		VersionMajor:  2,
		VersionMinor:  0,
		EnableMetrics: true,
	}
}

// SocketSupport exposes OS-socket-adjacent primitives to the caller.
// All methods are safe for concurrent use.
type SocketSupport struct {
	prov    api.Provider
	cfg     *Config
	metrics *control.MetricsRegistry

	startOnce sync.Once
	startErr  error
}

// New constructs a SocketSupport over the platform provider.
func New(cfg *Config) (*SocketSupport, error) {
	prov, err := sockets.NewProvider()
	if err != nil {
		return nil, err
	}
	return NewWithProvider(cfg, prov), nil
}

// NewWithProvider constructs a SocketSupport over an explicit provider.
// Intended for tests and embedding hosts that bring their own provider.
func NewWithProvider(cfg *Config, prov api.Provider) *SocketSupport {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &SocketSupport{prov: prov, cfg: cfg}
	if cfg.EnableMetrics {
		s.metrics = control.NewMetricsRegistry()
	}
	return s
}

// Metrics returns the operation counter registry, or nil when metrics
// are disabled.
func (s *SocketSupport) Metrics() *control.MetricsRegistry { return s.metrics }

// ensure runs subsystem startup once and replays its outcome afterward.
func (s *SocketSupport) ensure() error {
	s.startOnce.Do(func() {
		s.startErr = s.prov.Startup(s.cfg.VersionMajor, s.cfg.VersionMinor)
		if s.startErr != nil {
			log.Printf("[facade] socket subsystem startup failed: %v", s.startErr)
		}
	})
	return s.startErr
}

func (s *SocketSupport) count(key string) {
	if s.metrics != nil {
		s.metrics.Inc(key)
	}
}

// DuplicateStdinSocket duplicates the process's inherited standard
// input handle as a socket owned by the current process.
//
// On success it returns ok == true with a record whose ProtocolInfo is
// the OS duplication blob, marked listening, and closes the original
// stdin handle: ownership has moved into the duplicate. When stdin is
// not a socket — a legitimate outcome when the process was started
// from a console, file, or pipe — it returns ok == false with a nil
// error; the record is unusable and stdin stays open. Any other OS
// failure returns a *api.CallError carrying the OS code and leaves
// stdin open.
func (s *SocketSupport) DuplicateStdinSocket() (api.DuplicationRecord, bool, error) {
	rec := api.DuplicationRecord{}
	if err := s.ensure(); err != nil {
		return rec, false, err
	}
	rec.ProtocolInfo = make([]byte, s.prov.RecordSize())
	rec.Listening = true

	h, err := s.prov.StdinHandle()
	if err != nil {
		s.count("duplicate.error")
		return rec, false, err
	}
	ok, err := s.prov.DuplicateSocket(h, rec.ProtocolInfo)
	if err != nil {
		s.count("duplicate.error")
		return rec, false, err
	}
	if !ok {
		s.count("duplicate.notsock")
		return rec, false, nil
	}
	if err := s.prov.CloseHandle(h); err != nil {
		log.Printf("[facade] closing original stdin handle: %v", err)
	}
	s.count("duplicate.ok")
	return rec, true, nil
}

// RegisterReadEvent associates a fresh OS event object with the socket
// behind handle for the read-ready condition. The handle is not
// validated; per OS semantics a second registration on the same socket
// replaces its previous association. The caller owns the returned
// WaitHandle and must Close it.
func (s *SocketSupport) RegisterReadEvent(handle uintptr) (api.WaitHandle, error) {
	return s.registerEvent(handle, api.EventRead)
}

// RegisterWriteEvent is RegisterReadEvent for the write-ready condition.
func (s *SocketSupport) RegisterWriteEvent(handle uintptr) (api.WaitHandle, error) {
	return s.registerEvent(handle, api.EventWrite)
}

func (s *SocketSupport) registerEvent(handle uintptr, mask api.EventMask) (api.WaitHandle, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	wh, err := s.prov.RegisterEvent(handle, mask)
	if err != nil {
		s.count("register." + mask.String() + ".error")
		return nil, err
	}
	s.count("register." + mask.String())
	return wh, nil
}

var (
	defaultMu      sync.Mutex
	defaultSupport *SocketSupport
)

// Default returns the process-wide SocketSupport instance, creating it
// with DefaultConfig on first use.
func Default() (*SocketSupport, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSupport == nil {
		s, err := New(DefaultConfig())
		if err != nil {
			return nil, err
		}
		defaultSupport = s
	}
	return defaultSupport, nil
}

// DuplicateStdinSocket calls DuplicateStdinSocket on the default
// instance.
func DuplicateStdinSocket() (api.DuplicationRecord, bool, error) {
	s, err := Default()
	if err != nil {
		return api.DuplicationRecord{}, false, err
	}
	return s.DuplicateStdinSocket()
}

// RegisterReadEvent calls RegisterReadEvent on the default instance.
func RegisterReadEvent(handle uintptr) (api.WaitHandle, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	return s.RegisterReadEvent(handle)
}

// RegisterWriteEvent calls RegisterWriteEvent on the default instance.
func RegisterWriteEvent(handle uintptr) (api.WaitHandle, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	return s.RegisterWriteEvent(handle)
}
