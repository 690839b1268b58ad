// Package log provides the leveled logging used across every cloudcore
// package, in place of ad hoc fmt.Println calls.
package log

import (
	"fmt"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

// SetOutput redirects all subsequent log lines; used by tests that want
// quiet output or a captured buffer.
func SetOutput(w interface{ Write([]byte) (int, error) }) {
	std.SetOutput(w)
}

func Infof(format string, args ...interface{}) {
	std.Output(2, "I "+fmt.Sprintf(format, args...)) //nolint:errcheck
}

func Warningf(format string, args ...interface{}) {
	std.Output(2, "W "+fmt.Sprintf(format, args...)) //nolint:errcheck
}

func Errorf(format string, args ...interface{}) {
	std.Output(2, "E "+fmt.Sprintf(format, args...)) //nolint:errcheck
}

// Fatalf logs and exits; reserved for startup failures, never called from
// a request path or a background loop (those log-and-continue).
func Fatalf(format string, args ...interface{}) {
	std.Output(2, "F "+fmt.Sprintf(format, args...)) //nolint:errcheck
	os.Exit(1)
}
