// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for the socket support facade: a concurrent-safe
// counter registry with dynamic registration plus a Prometheus bridge.
package control
