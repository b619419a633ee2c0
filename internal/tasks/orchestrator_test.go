package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replay returns a source that emits events in order and then closes.
func replay(events ...Event) EventSource {
	return SourceFunc(func(ctx context.Context) (<-chan Event, error) {
		ch := make(chan Event, len(events))
		for _, ev := range events {
			ch <- ev
		}
		close(ch)
		return ch, nil
	})
}

func state(t *testing.T, o *Orchestrator, id string) State {
	t.Helper()
	p, ok := o.Indicator(id)
	require.True(t, ok)
	return p.State()
}

func TestOrchestratorTransitions(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("start marks every indicator pending", func(t *testing.T) {
		o := NewOrchestrator(nil, "A", "B")
		token, err := o.Begin()
		require.NoError(t, err)

		assert.True(t, o.Apply(token, StartEvent()))
		assert.Equal(t, StatePending, state(t, o, "A"))
		assert.Equal(t, StatePending, state(t, o, "B"))
	})

	t.Run("complete directly from pending", func(t *testing.T) {
		o := NewOrchestrator(nil, "X")
		token, _ := o.Begin()
		o.Apply(token, StartEvent())

		assert.True(t, o.Apply(token, ItemCompleteEvent("X", t1)))
		p, _ := o.Indicator("X")
		assert.Equal(t, StateIdle, p.State())
		assert.Equal(t, t1, p.LastUpdated())

		res := o.Finish(token)
		assert.Equal(t, []string{"X"}, res.Completed)
		assert.True(t, res.OK())
	})

	t.Run("item lifecycle", func(t *testing.T) {
		o := NewOrchestrator(nil, "A", "B")
		token, _ := o.Begin()
		o.Apply(token, StartEvent())

		assert.True(t, o.Apply(token, ItemStartEvent("A")))
		assert.Equal(t, StateActive, state(t, o, "A"))
		assert.True(t, o.Apply(token, ItemCompleteEvent("A", t1)))
		assert.Equal(t, StateIdle, state(t, o, "A"))

		assert.True(t, o.Apply(token, ItemStartEvent("B")))
		assert.True(t, o.Apply(token, ItemErrorEvent("B", "not found")))
		p, _ := o.Indicator("B")
		assert.Equal(t, StateError, p.State())
		assert.Equal(t, "not found", p.Message())

		res := o.Finish(token)
		assert.Equal(t, []string{"A"}, res.Completed)
		assert.Equal(t, []string{"B"}, res.Failed)
		assert.Empty(t, res.Disconnected)
		assert.False(t, res.OK())
	})

	t.Run("events violating preconditions are ignored", func(t *testing.T) {
		o := NewOrchestrator(nil, "A")
		token, _ := o.Begin()

		assert.False(t, o.Apply(token, ItemStartEvent("A")), "itemStart before start")
		assert.Equal(t, StateIdle, state(t, o, "A"))

		o.Apply(token, StartEvent())
		o.Apply(token, ItemStartEvent("A"))
		assert.False(t, o.Apply(token, ItemStartEvent("A")), "itemStart on active")

		o.Apply(token, ItemErrorEvent("A", "boom"))
		assert.False(t, o.Apply(token, ItemCompleteEvent("A", t1)), "complete after error")
		assert.Equal(t, StateError, state(t, o, "A"))
	})

	t.Run("unknown ids are ignored", func(t *testing.T) {
		o := NewOrchestrator(nil, "A")
		token, _ := o.Begin()
		o.Apply(token, StartEvent())
		assert.False(t, o.Apply(token, ItemCompleteEvent("ghost", t1)))
		assert.False(t, o.Apply(token, Event{Kind: EventKind(42), ItemID: "A"}))
	})

	t.Run("duplicate ids collapse", func(t *testing.T) {
		o := NewOrchestrator(nil, "A", "B", "A")
		assert.Equal(t, []string{"A", "B"}, o.IDs())
	})
}

func TestOrchestratorSessions(t *testing.T) {
	t.Run("disconnect marks unresolved as error", func(t *testing.T) {
		o := NewOrchestrator(replay(StartEvent(), ItemStartEvent("A")), "A", "B")

		res, err := o.Run(context.Background())
		require.NoError(t, err)

		for _, id := range []string{"A", "B"} {
			p, _ := o.Indicator(id)
			assert.Equal(t, StateError, p.State())
			assert.Equal(t, DisconnectMessage, p.Message())
		}
		assert.Equal(t, []string{"A", "B"}, res.Disconnected)
		assert.True(t, o.CanSync())
	})

	t.Run("overlapping sessions are rejected", func(t *testing.T) {
		o := NewOrchestrator(nil, "A")
		_, err := o.Begin()
		require.NoError(t, err)
		assert.False(t, o.CanSync())

		_, err = o.Begin()
		assert.ErrorIs(t, err, ErrSyncInFlight)
	})

	t.Run("stale token is ignored", func(t *testing.T) {
		o := NewOrchestrator(nil, "A")
		old, _ := o.Begin()
		o.Apply(old, StartEvent())
		o.Finish(old)

		current, _ := o.Begin()
		assert.NotEqual(t, old, current)
		o.Apply(current, StartEvent())

		assert.False(t, o.Apply(old, ItemStartEvent("A")))
		assert.Equal(t, Result{}, o.Finish(old))
		assert.Equal(t, StatePending, state(t, o, "A"))
		assert.False(t, o.CanSync())
	})

	t.Run("open failure finishes session", func(t *testing.T) {
		boom := errors.New("dial failed")
		src := SourceFunc(func(context.Context) (<-chan Event, error) { return nil, boom })
		o := NewOrchestrator(src, "A")

		_, err := o.Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.True(t, o.CanSync())
		assert.Equal(t, StateIdle, state(t, o, "A"), "start never arrived")
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := NewOrchestrator(nil, "A").Run(context.Background())
		assert.ErrorIs(t, err, shared.ErrMissingConfig)
	})

	t.Run("previous errors reset on next start", func(t *testing.T) {
		o := NewOrchestrator(replay(StartEvent()), "A")
		_, err := o.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StateError, state(t, o, "A"))

		o.source = replay(StartEvent(), ItemCompleteEvent("A", time.Now()))
		res, err := o.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StateIdle, state(t, o, "A"))
		assert.True(t, res.OK())
	})

	t.Run("cancellation finishes session", func(t *testing.T) {
		src := SourceFunc(func(ctx context.Context) (<-chan Event, error) {
			ch := make(chan Event, 1)
			ch <- StartEvent()
			return ch, nil
		})
		o := NewOrchestrator(src, "A")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := o.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, o.CanSync())
		_ = res
	})
}

func TestOrchestratorProgress(t *testing.T) {
	o := NewOrchestrator(replay(StartEvent(), ItemStartEvent("A"), ItemCompleteEvent("A", time.Now())), "A", "B")
	progress := make(chan ProgressUpdate, 16)
	o.SetProgress(progress)

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	close(progress)

	var phases []Phase
	for u := range progress {
		phases = append(phases, u.Phase)
	}
	assert.Equal(t, []Phase{SyncStarted, ItemStarted, ItemCompleted, ItemDisconnected, SyncFinished}, phases)
}

func TestOrchestratorProgressNeverBlocks(t *testing.T) {
	o := NewOrchestrator(replay(StartEvent(), ItemStartEvent("A")), "A")
	o.SetProgress(make(chan ProgressUpdate))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run blocked on an unread progress channel")
	}
}

func TestSetLastUpdated(t *testing.T) {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	o := NewOrchestrator(nil, "A")
	o.SetLastUpdated("A", ts)
	o.SetLastUpdated("missing", ts)

	p, _ := o.Indicator("A")
	assert.Equal(t, ts, p.LastUpdated())
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(Result{Session: "s1", Completed: []string{"A"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"session":"s1","completed":["A"],"failed":[],"disconnected":[]}`, string(data))

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "s1", back.Session)
	assert.Equal(t, []string{"A"}, back.Completed)
	assert.Empty(t, back.Failed)
}
