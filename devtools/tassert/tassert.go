// Package tassert provides the small set of fail-fast assertions every
// test in this module's integration suite uses, grounded on the
// CheckFatal/Errorf helpers devtools test clients in this lineage lean
// on instead of testify.
package tassert

import "testing"

// CheckFatal calls tb.Fatalf if err is non-nil.
func CheckFatal(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("unexpected error: %v", err)
	}
}

// CheckError calls tb.Errorf (non-fatal) if err is non-nil.
func CheckError(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Errorf("unexpected error: %v", err)
	}
}

// Fatalf fails the test immediately unless cond is true.
func Fatalf(tb testing.TB, cond bool, format string, args ...interface{}) {
	tb.Helper()
	if !cond {
		tb.Fatalf(format, args...)
	}
}

// Errorf records a failure unless cond is true, without stopping the test.
func Errorf(tb testing.TB, cond bool, format string, args ...interface{}) {
	tb.Helper()
	if !cond {
		tb.Errorf(format, args...)
	}
}
