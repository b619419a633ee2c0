package tasks

import (
	"context"
	"time"
)

// ScriptedSource replays a local sync sequence: start, then for each id itemStart, a delay, and either
// itemComplete or itemError. It stands in for the server when running offline.
type ScriptedSource struct {
	IDs      []string
	Delay    time.Duration     // pause between itemStart and the outcome of each id
	Failures map[string]string // id -> error message reported instead of completing
	// DropAfter closes the stream after that many events, simulating a lost connection. Zero never drops.
	DropAfter int
	Now       func() time.Time
}

// NewScriptedSource creates a source that completes every id after delay.
func NewScriptedSource(delay time.Duration, ids ...string) *ScriptedSource {
	return &ScriptedSource{IDs: ids, Delay: delay}
}

// Open starts the replay in a goroutine. The channel closes when the script ends, the drop point is reached,
// or ctx is cancelled.
func (s *ScriptedSource) Open(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	now := s.Now
	if now == nil {
		now = time.Now
	}

	go func() {
		defer close(ch)

		sent := 0
		emit := func(ev Event) bool {
			if s.DropAfter > 0 && sent >= s.DropAfter {
				return false
			}
			select {
			case <-ctx.Done():
				return false
			case ch <- ev:
				sent++
				return true
			}
		}

		if !emit(StartEvent()) {
			return
		}

		for _, id := range s.IDs {
			if !emit(ItemStartEvent(id)) {
				return
			}
			if !s.wait(ctx) {
				return
			}

			ev := ItemCompleteEvent(id, now())
			if msg, failed := s.Failures[id]; failed {
				ev = ItemErrorEvent(id, msg)
			}
			if !emit(ev) {
				return
			}
		}
	}()
	return ch, nil
}

func (s *ScriptedSource) wait(ctx context.Context) bool {
	if s.Delay <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
