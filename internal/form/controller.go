package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/smartlist/internal/shared"
)

// SaveFailedMessage is the status text shown after a failed commit.
const SaveFailedMessage = "Error encountered while saving"

var (
	ErrNothingToSave = errors.New("no unsaved changes")
	ErrSaveInFlight  = errors.New("save already in progress")
	ErrFinished      = errors.New("form already saved")
)

// Committer persists the dirty subset of a form as one request. changes maps field id to its current value.
type Committer interface {
	Commit(ctx context.Context, changes map[string]bool) error
}

// CommitterFunc adapts a function to [Committer].
type CommitterFunc func(ctx context.Context, changes map[string]bool) error

func (f CommitterFunc) Commit(ctx context.Context, changes map[string]bool) error {
	return f(ctx, changes)
}

// Status is the save status of a [Controller].
type Status int

const (
	StatusIdle Status = iota
	StatusSaving
	StatusSaved
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// SaveResult reports the outcome of [Controller.Save].
type SaveResult struct {
	Saved   bool
	Changes map[string]bool
}

// Controller owns a fixed set of [ToggleField]s and the set of their ids that are currently dirty.
//
// The dirty set is maintained from field notifications only; it is never recomputed by scanning.
type Controller struct {
	committer Committer
	fields    []*ToggleField
	byID      map[string]*ToggleField
	dirty     map[string]struct{}
	saving    bool
	finished  bool
	status    Status
	message   string
	logger    *log.Logger
}

// NewController subscribes a new controller to every field. Fields keep their given order.
//
// Fields may start dirty (a restored draft, say); their ids are seeded into the dirty set.
func NewController(committer Committer, fields ...*ToggleField) (*Controller, error) {
	c := &Controller{
		committer: committer,
		byID:      make(map[string]*ToggleField, len(fields)),
		dirty:     make(map[string]struct{}),
		logger:    shared.DiscardLogger(),
	}

	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w: nil field", shared.ErrInvalidInput)
		}
		if _, exists := c.byID[f.ID()]; exists {
			return nil, fmt.Errorf("%w: duplicate field id %q", shared.ErrInvalidInput, f.ID())
		}

		c.byID[f.ID()] = f
		c.fields = append(c.fields, f)
		f.Subscribe(c)
		if f.Dirty() {
			c.dirty[f.ID()] = struct{}{}
		}
	}
	return c, nil
}

// SetLogger replaces the controller's logger.
func (c *Controller) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// OnDirty implements [Listener].
func (c *Controller) OnDirty(id string) {
	if _, ok := c.byID[id]; !ok {
		return
	}
	c.dirty[id] = struct{}{}
}

// OnClean implements [Listener].
func (c *Controller) OnClean(id string) {
	delete(c.dirty, id)
}

func (c *Controller) HasChanges() bool { return len(c.dirty) > 0 }
func (c *Controller) Saving() bool     { return c.saving }
func (c *Controller) Finished() bool   { return c.finished }
func (c *Controller) Status() Status   { return c.status }

// CanSave reports whether the save action is enabled.
func (c *Controller) CanSave() bool { return c.HasChanges() && !c.saving && !c.finished }

// CanReset reports whether the reset action is enabled.
func (c *Controller) CanReset() bool { return c.CanSave() }

// Message returns the human-readable status line, empty while idle.
func (c *Controller) Message() string { return c.message }

// DirtyIDs returns the dirty set in sorted order.
func (c *Controller) DirtyIDs() []string {
	return slices.Sorted(maps.Keys(c.dirty))
}

// Field looks up a field by id.
func (c *Controller) Field(id string) (*ToggleField, bool) {
	f, ok := c.byID[id]
	return f, ok
}

// Fields returns the fields in render order.
func (c *Controller) Fields() []*ToggleField {
	return slices.Clone(c.fields)
}

// Payload builds the commit body: every dirty id mapped to its current value.
func (c *Controller) Payload() map[string]bool {
	out := make(map[string]bool, len(c.dirty))
	for id := range c.dirty {
		out[id] = c.byID[id].Value()
	}
	return out
}

// Reset returns every dirty field to its baseline and empties the dirty set. It is a no-op while a save is in
// flight or after a successful save.
func (c *Controller) Reset() {
	if !c.CanReset() {
		return
	}

	// field resets call back into OnClean, which deletes the visited key
	for id := range c.dirty {
		c.byID[id].Reset()
	}
	clear(c.dirty)
	c.logger.Debug("form reset")
}

// Begin enters the saving state: every field is locked and the payload for the commit is returned.
func (c *Controller) Begin() (map[string]bool, error) {
	switch {
	case c.saving:
		return nil, ErrSaveInFlight
	case c.finished:
		return nil, ErrFinished
	case !c.HasChanges():
		return nil, ErrNothingToSave
	}

	payload := c.Payload()
	c.saving = true
	c.status = StatusSaving
	c.message = "Saving..."
	c.setDisabled(true)
	c.logger.Info("saving changes", "count", len(payload))
	return payload, nil
}

// Complete leaves the saving state with the commit result.
//
// On success the controller is finished: fields stay locked until [Controller.Rebaseline] or a reload.
// On failure the fields unlock and the dirty set and values are exactly as before [Controller.Begin].
func (c *Controller) Complete(err error) {
	if !c.saving {
		return
	}
	c.saving = false

	if err != nil {
		c.status = StatusError
		c.message = SaveFailedMessage
		c.setDisabled(false)
		c.logger.Error("save failed", "error", err)
		return
	}

	c.finished = true
	c.status = StatusSaved
	c.message = "Saved"
	c.logger.Info("changes saved")
}

// Save commits the dirty subset through the controller's [Committer] in one request.
func (c *Controller) Save(ctx context.Context) (SaveResult, error) {
	payload, err := c.Begin()
	if err != nil {
		return SaveResult{}, err
	}

	if c.committer == nil {
		err = fmt.Errorf("%w: no committer configured", shared.ErrMissingConfig)
	} else {
		err = c.committer.Commit(ctx, payload)
	}
	c.Complete(err)

	if err != nil {
		return SaveResult{Changes: payload}, err
	}
	return SaveResult{Saved: true, Changes: payload}, nil
}

// Rebaseline adopts the committed values as new baselines after a successful save, unlocking the form for
// further edits. Status stays [StatusSaved] until the next edit cycle begins.
func (c *Controller) Rebaseline() {
	if !c.finished {
		return
	}

	for id := range c.dirty {
		c.byID[id].rebaseline()
	}
	clear(c.dirty)
	c.finished = false
	c.setDisabled(false)
}

func (c *Controller) setDisabled(disabled bool) {
	for _, f := range c.fields {
		f.SetDisabled(disabled)
	}
}
