package form

// Listener receives dirty-status transitions from a [ToggleField].
type Listener interface {
	OnDirty(id string)
	OnClean(id string)
}

// ToggleField is a single boolean setting with a baseline. It is dirty exactly when its value differs from the baseline.
type ToggleField struct {
	id       string
	name     string
	baseline bool
	value    bool
	disabled bool
	listener Listener
}

// NewToggleField creates a clean field whose value starts at baseline.
func NewToggleField(id, name string, baseline bool) *ToggleField {
	return &ToggleField{id: id, name: name, baseline: baseline, value: baseline}
}

// Subscribe sets the listener notified on dirty/clean transitions. A field has at most one listener.
func (f *ToggleField) Subscribe(l Listener) { f.listener = l }

func (f *ToggleField) ID() string     { return f.id }
func (f *ToggleField) Name() string   { return f.name }
func (f *ToggleField) Value() bool    { return f.value }
func (f *ToggleField) Baseline() bool { return f.baseline }
func (f *ToggleField) Dirty() bool    { return f.value != f.baseline }
func (f *ToggleField) Disabled() bool { return f.disabled }

// Toggle flips the value as a user click would. Returns false when the field is disabled.
func (f *ToggleField) Toggle() bool {
	return f.Set(!f.value)
}

// Set assigns the value as user input. Returns false when the field is disabled.
func (f *ToggleField) Set(v bool) bool {
	if f.disabled {
		return false
	}

	wasDirty := f.Dirty()
	f.value = v
	f.notify(wasDirty)
	return true
}

// Reset restores the baseline value, emitting a clean notification if the field was dirty.
//
// Reset ignores the disabled lock: it is a programmatic operation, not user input.
func (f *ToggleField) Reset() {
	wasDirty := f.Dirty()
	f.value = f.baseline
	f.notify(wasDirty)
}

// SetDisabled locks or unlocks user input. Value and dirty status are unaffected.
func (f *ToggleField) SetDisabled(disabled bool) { f.disabled = disabled }

// rebaseline adopts the current value as the committed baseline without notifying.
func (f *ToggleField) rebaseline() { f.baseline = f.value }

func (f *ToggleField) notify(wasDirty bool) {
	if f.listener == nil {
		return
	}

	switch isDirty := f.Dirty(); {
	case isDirty && !wasDirty:
		f.listener.OnDirty(f.id)
	case !isDirty && wasDirty:
		f.listener.OnClean(f.id)
	}
}
