// Package invariant reports contract violations: caller bugs that must crash
// the process rather than surface as recoverable errors.
package invariant

import (
	"fmt"
	"log/slog"
)

// Violation describes a broken contract. It is only ever delivered through
// panic; functions in this module never return it as an error value.
type Violation struct {
	// Op names the operation that detected the violation.
	Op string

	// Message describes what was violated.
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Op, v.Message)
}

// Fail logs the violation and panics with a *Violation.
func Fail(op string, format string, args ...any) {
	v := &Violation{Op: op, Message: fmt.Sprintf(format, args...)}
	slog.Error("Contract violation", "op", v.Op, "message", v.Message)
	panic(v)
}

// Failf is like Fail but only fires when cond is true.
func Failf(cond bool, op string, format string, args ...any) {
	if cond {
		Fail(op, format, args...)
	}
}
