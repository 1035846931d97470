// Package monitoring carries the module's diagnostic logging
// indirection. Hot-path code (prediction, association, fitting,
// scoring) never logs; the pipeline, store, and export layers log
// sparingly through Logf, and verbose per-frame tracing goes through
// Debugf, which is off by default.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to
// log.Printf but may be replaced by SetLogger. Tests or embedding
// applications can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf is the verbose trace logger, a no-op unless enabled with
// SetDebugLogger. Per-frame tracing goes here so normal runs stay
// quiet.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces the verbose trace logger. Passing nil
// restores the no-op default.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}
