package logging

// discard is a Logger that drops everything. Used by tests that don't care
// about log output.
type discard struct{}

// Discard is a Logger implementation that does nothing, for use in tests.
var Discard Logger = discard{}

func (discard) SetLevel(Level)                          {}
func (discard) Log(Level, string, ...interface{})       {}
func (discard) Debug(string, ...interface{})            {}
func (discard) Info(string, ...interface{})             {}
func (discard) Warning(string, ...interface{})          {}
func (discard) Error(string, ...interface{})            {}
func (discard) Fatal(string, ...interface{})            {}
