// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// metrics_test.go — MetricsRegistry counters and Prometheus export.
package control_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/socksupport/control"
)

func TestMetricsRegistry_Basic(t *testing.T) {
	reg := control.NewMetricsRegistry()
	reg.Set("foo.count", int64(42))
	reg.Set("bar.status", "ok")
	reg.Inc("duplicate.ok")
	reg.Inc("duplicate.ok")

	metrics := reg.GetSnapshot()
	if metrics["foo.count"] != int64(42) {
		t.Error("MetricsRegistry: value mismatch")
	}
	if metrics["bar.status"] != "ok" {
		t.Error("MetricsRegistry: string value mismatch")
	}
	if metrics["duplicate.ok"] != int64(2) {
		t.Error("MetricsRegistry: counter mismatch")
	}
	if reg.Updated().IsZero() {
		t.Error("MetricsRegistry: updated timestamp not set")
	}
}

func TestPrometheusCollector_Gather(t *testing.T) {
	reg := control.NewMetricsRegistry()
	reg.Inc("register.read")
	reg.Set("bar.status", "ok") // non-numeric, must be skipped

	promReg := prometheus.NewPedanticRegistry()
	if err := promReg.Register(control.NewPrometheusCollector(reg)); err != nil {
		t.Fatal(err)
	}
	families, err := promReg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 1 {
		t.Fatalf("gathered %d families, want 1", len(families))
	}
	mf := families[0]
	if mf.GetName() != "socksupport_operations_total" {
		t.Errorf("family name = %q", mf.GetName())
	}
	ms := mf.GetMetric()
	if len(ms) != 1 {
		t.Fatalf("gathered %d metrics, want 1", len(ms))
	}
	if v := ms[0].GetCounter().GetValue(); v != 1 {
		t.Errorf("counter value = %v, want 1", v)
	}
	if lbl := ms[0].GetLabel()[0]; lbl.GetName() != "op" || lbl.GetValue() != "register.read" {
		t.Errorf("unexpected label %v", lbl)
	}
}
