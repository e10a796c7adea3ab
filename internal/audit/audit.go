// Package audit records every dispatched command. run_script is untrusted
// code execution by design, so the trail is the operational record of what
// ran, when, and from which connection.
package audit

import "time"

// Entry is one dispatched command.
type Entry struct {
	Time    time.Time
	ConnID  string
	Command string
	Status  string
	Message string
}

// Recorder persists entries. Recording is best effort and must never fail
// a command.
type Recorder interface {
	Record(e Entry)
}

// Nop discards all entries. Used when auditing is disabled.
type Nop struct{}

func (Nop) Record(Entry) {}
