// Package eventlog defines the callback type components use to surface
// progress and warnings to whatever is listening, without importing a
// logger of their own.
package eventlog

// Handler receives a formatted progress or warning line. v is treated as a
// fmt.Sprintf format string when args is non-empty.
type Handler func(v string, args ...any)

// Noop discards every event, useful in tests that don't care about them.
func Noop(string, ...any) {}
