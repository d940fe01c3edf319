// Package logging provides the leveled, structured Logger interface used
// throughout tsdemux, and a zap-backed implementation of it.
package logging

// Level identifies a log severity.
type Level int8

const (
	Debug Level = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is the logging contract every tsdemux pipe is constructed with.
// Params are logged as alternating key/value pairs, matching the calling
// convention used throughout this codebase's predecessors.
type Logger interface {
	SetLevel(level Level)
	Log(level Level, message string, params ...interface{})
	Debug(message string, params ...interface{})
	Info(message string, params ...interface{})
	Warning(message string, params ...interface{})
	Error(message string, params ...interface{})
	Fatal(message string, params ...interface{})
}
