// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, collects returned errors, and turns
// panics into errors so background work does not crash the process. Map
// builds an ordered fan-out on top of it.
package pkgroutine
