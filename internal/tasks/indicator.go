package tasks

import (
	"fmt"
	"time"
)

// LastUpdatedLayout formats last-synced timestamps for display.
const LastUpdatedLayout = "Jan 2, 2006 3:04:05 PM"

// State is the sync lifecycle of one indicator.
type State int

const (
	StateIdle State = iota
	StatePending
	StateActive
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProgressIndicator renders one artist's sync state.
//
// The error message is present only in [StateError]. The last-updated timestamp survives every state change
// and is replaced only by a later successful sync.
type ProgressIndicator struct {
	id          string
	state       State
	message     string
	lastUpdated time.Time
}

// NewProgressIndicator creates an idle indicator. lastUpdated may be zero when the artist was never synced.
func NewProgressIndicator(id string, lastUpdated time.Time) *ProgressIndicator {
	return &ProgressIndicator{id: id, lastUpdated: lastUpdated}
}

func (p *ProgressIndicator) ID() string             { return p.id }
func (p *ProgressIndicator) State() State           { return p.state }
func (p *ProgressIndicator) Message() string        { return p.message }
func (p *ProgressIndicator) LastUpdated() time.Time { return p.lastUpdated }

// Busy reports whether a spinner should be shown.
func (p *ProgressIndicator) Busy() bool {
	return p.state == StatePending || p.state == StateActive
}

// SetState moves the indicator to state. message is kept only for [StateError]; a non-zero ts replaces the
// last-updated timestamp.
func (p *ProgressIndicator) SetState(state State, message string, ts time.Time) {
	p.state = state
	p.message = ""
	if state == StateError {
		p.message = message
	}
	if !ts.IsZero() {
		p.lastUpdated = ts
	}
}

// StatusText is the state line without the spinner, empty when idle.
func (p *ProgressIndicator) StatusText() string {
	switch p.state {
	case StatePending:
		return "Pending..."
	case StateActive:
		return "In progress..."
	case StateError:
		return "Error syncing: " + p.message
	default:
		return ""
	}
}

// LastUpdatedText is the timestamp line in local time, empty when the artist was never synced.
func (p *ProgressIndicator) LastUpdatedText() string {
	if p.lastUpdated.IsZero() {
		return ""
	}
	return "Last Updated: " + p.lastUpdated.Local().Format(LastUpdatedLayout)
}

// Render returns the visible text lines. It depends only on the indicator's state.
func (p *ProgressIndicator) Render() []string {
	var lines []string
	if s := p.StatusText(); s != "" {
		lines = append(lines, s)
	}
	if s := p.LastUpdatedText(); s != "" {
		lines = append(lines, s)
	}
	return lines
}

func (p *ProgressIndicator) snapshot() ProgressIndicator { return *p }
