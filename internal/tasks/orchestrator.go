package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/smartlist/internal/shared"
)

// DisconnectMessage is the error shown on indicators the stream left unresolved.
const DisconnectMessage = "No sync performed"

var ErrSyncInFlight = errors.New("sync already in progress")

// Result summarizes one finished session. Each list is sorted.
type Result struct {
	Session      string   `json:"session"`
	Completed    []string `json:"completed"`
	Failed       []string `json:"failed"`
	Disconnected []string `json:"disconnected"`
}

// MarshalJSON writes empty lists as [] rather than null.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := plain(r)
	for _, list := range []*[]string{&out.Completed, &out.Failed, &out.Disconnected} {
		if *list == nil {
			*list = []string{}
		}
	}
	return json.Marshal(out)
}

// OK reports whether every artist synced successfully.
func (r Result) OK() bool { return len(r.Failed) == 0 && len(r.Disconnected) == 0 }

// Orchestrator owns the indicators for a fixed set of artists and drives them through sync sessions.
//
// An Orchestrator is not safe for concurrent use: every method must be called from the same goroutine
// (the event loop), except that [Orchestrator.Run] may own that goroutine for the session.
type Orchestrator struct {
	source     EventSource
	order      []string
	indicators map[string]*ProgressIndicator
	session    string
	unresolved map[string]struct{}
	completed  map[string]struct{}
	failed     map[string]struct{}
	progress   chan<- ProgressUpdate
	logger     *log.Logger
}

// NewOrchestrator creates idle indicators for ids in the given order. Duplicate ids are dropped.
func NewOrchestrator(source EventSource, ids ...string) *Orchestrator {
	o := &Orchestrator{
		source:     source,
		indicators: make(map[string]*ProgressIndicator, len(ids)),
		logger:     shared.DiscardLogger(),
	}
	for _, id := range ids {
		if _, ok := o.indicators[id]; ok {
			continue
		}
		o.indicators[id] = NewProgressIndicator(id, time.Time{})
		o.order = append(o.order, id)
	}
	return o
}

// SetLogger replaces the orchestrator's logger.
func (o *Orchestrator) SetLogger(l *log.Logger) {
	if l != nil {
		o.logger = l
	}
}

// SetProgress sets the channel that receives a [ProgressUpdate] per transition. nil disables reporting.
func (o *Orchestrator) SetProgress(progress chan<- ProgressUpdate) { o.progress = progress }

// SetLastUpdated seeds an artist's last-synced time, typically from the server listing.
func (o *Orchestrator) SetLastUpdated(id string, ts time.Time) {
	if p, ok := o.indicators[id]; ok && !ts.IsZero() {
		p.lastUpdated = ts
	}
}

// Indicator returns the indicator for id.
func (o *Orchestrator) Indicator(id string) (*ProgressIndicator, bool) {
	p, ok := o.indicators[id]
	return p, ok
}

// IDs returns the tracked ids in render order.
func (o *Orchestrator) IDs() []string { return slices.Clone(o.order) }

// CanSync reports whether the sync trigger is enabled, i.e. no session is open.
func (o *Orchestrator) CanSync() bool { return o.session == "" }

// Session returns the open session token, empty when idle.
func (o *Orchestrator) Session() string { return o.session }

// Begin opens a session and returns its token.
func (o *Orchestrator) Begin() (string, error) {
	if o.session != "" {
		return "", ErrSyncInFlight
	}

	o.session = shared.GenerateID()
	o.unresolved = make(map[string]struct{})
	o.completed = make(map[string]struct{})
	o.failed = make(map[string]struct{})
	o.logger.Info("sync session started", "session", o.session, "artists", len(o.order))
	return o.session, nil
}

// Apply applies one event to the session identified by token. Returns false when the event was ignored:
// stale token, unknown id, or an event whose precondition the indicator does not meet.
func (o *Orchestrator) Apply(token string, ev Event) bool {
	if token == "" || token != o.session {
		o.logger.Debug("ignoring event for stale session", "session", token, "kind", ev.Kind)
		return false
	}

	if ev.Kind == EventStart {
		clear(o.completed)
		clear(o.failed)
		for _, id := range o.order {
			o.indicators[id].SetState(StatePending, "", time.Time{})
			o.unresolved[id] = struct{}{}
		}
		o.send(syncStartedUpdate(len(o.order)))
		return true
	}

	p, ok := o.indicators[ev.ItemID]
	if !ok {
		o.logger.Warn("ignoring event for unknown artist", "kind", ev.Kind, "artist", ev.ItemID)
		return false
	}

	switch ev.Kind {
	case EventItemStart:
		if p.State() != StatePending {
			return o.ignore(ev, p)
		}
		p.SetState(StateActive, "", time.Time{})
		o.send(itemStartedUpdate(o.resolved(), len(o.order), p))
	case EventItemError:
		if !p.Busy() {
			return o.ignore(ev, p)
		}
		p.SetState(StateError, ev.Message, time.Time{})
		delete(o.unresolved, p.ID())
		o.failed[p.ID()] = struct{}{}
		o.logger.Warn("artist sync failed", "artist", p.ID(), "error", ev.Message)
		o.send(itemFailedUpdate(o.resolved(), len(o.order), p))
	case EventItemComplete:
		if !p.Busy() {
			return o.ignore(ev, p)
		}
		p.SetState(StateIdle, "", ev.Timestamp)
		delete(o.unresolved, p.ID())
		o.completed[p.ID()] = struct{}{}
		o.send(itemCompletedUpdate(o.resolved(), len(o.order), p))
	default:
		o.logger.Warn("ignoring unknown event kind", "kind", ev.Kind)
		return false
	}
	return true
}

// Finish closes the session identified by token. Every indicator left pending or active becomes an error with
// [DisconnectMessage]. A stale token is ignored and yields a zero [Result].
func (o *Orchestrator) Finish(token string) Result {
	if token == "" || token != o.session {
		return Result{}
	}

	res := Result{Session: token}
	for _, id := range slices.Sorted(maps.Keys(o.unresolved)) {
		p := o.indicators[id]
		if !p.Busy() {
			continue
		}
		p.SetState(StateError, DisconnectMessage, time.Time{})
		res.Disconnected = append(res.Disconnected, id)
		o.send(itemDisconnectedUpdate(o.resolved()+len(res.Disconnected), len(o.order), p))
	}
	res.Completed = slices.Sorted(maps.Keys(o.completed))
	res.Failed = slices.Sorted(maps.Keys(o.failed))

	o.session = ""
	o.unresolved = nil
	o.completed = nil
	o.failed = nil

	o.send(syncFinishedUpdate(res, len(o.order)))
	o.logger.Info("sync session finished", "session", token,
		"completed", len(res.Completed), "failed", len(res.Failed), "disconnected", len(res.Disconnected))
	return res
}

// Run performs one full session: open the source, apply every event in arrival order, then finish.
//
// When Open fails the session is finished at once and the error returned. Cancelling ctx finishes the session
// with whatever was resolved so far.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if o.source == nil {
		return Result{}, fmt.Errorf("%w: no event source configured", shared.ErrMissingConfig)
	}

	token, err := o.Begin()
	if err != nil {
		return Result{}, err
	}

	events, err := o.source.Open(ctx)
	if err != nil {
		o.logger.Error("failed to open sync stream", "error", err)
		return o.Finish(token), fmt.Errorf("failed to open sync stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return o.Finish(token), ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return o.Finish(token), nil
			}
			o.Apply(token, ev)
		}
	}
}

func (o *Orchestrator) ignore(ev Event, p *ProgressIndicator) bool {
	o.logger.Debug("ignoring out-of-order event", "kind", ev.Kind, "artist", p.ID(), "state", p.State())
	return false
}

func (o *Orchestrator) resolved() int { return len(o.completed) + len(o.failed) }

// send emits a progress update without blocking.
func (o *Orchestrator) send(update ProgressUpdate) {
	if o.progress == nil {
		return
	}
	select {
	case o.progress <- update:
	default:
	}
}
