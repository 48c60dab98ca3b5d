// Package assert centralizes the precondition checks used throughout the
// ecs package. Violations here are programming errors, not recoverable
// failures.
package assert

import "fmt"

// That panics with a formatted message if cond is false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
