package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressIndicator(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	t.Run("idle renders nothing", func(t *testing.T) {
		p := NewProgressIndicator("a", time.Time{})
		assert.Empty(t, p.Render())
		assert.False(t, p.Busy())
	})

	t.Run("render table", func(t *testing.T) {
		p := NewProgressIndicator("a", time.Time{})

		p.SetState(StatePending, "", time.Time{})
		assert.Equal(t, []string{"Pending..."}, p.Render())
		assert.True(t, p.Busy())

		p.SetState(StateActive, "", time.Time{})
		assert.Equal(t, []string{"In progress..."}, p.Render())
		assert.True(t, p.Busy())

		p.SetState(StateError, "rate limited", time.Time{})
		assert.Equal(t, []string{"Error syncing: rate limited"}, p.Render())
		assert.False(t, p.Busy())
	})

	t.Run("message only kept on error", func(t *testing.T) {
		p := NewProgressIndicator("a", time.Time{})
		p.SetState(StatePending, "ignored", time.Time{})
		assert.Empty(t, p.Message())

		p.SetState(StateError, "boom", time.Time{})
		assert.Equal(t, "boom", p.Message())

		p.SetState(StatePending, "", time.Time{})
		assert.Empty(t, p.Message())
	})

	t.Run("timestamp survives state changes", func(t *testing.T) {
		p := NewProgressIndicator("a", ts)
		want := "Last Updated: " + ts.Local().Format(LastUpdatedLayout)
		assert.Equal(t, []string{want}, p.Render())

		p.SetState(StatePending, "", time.Time{})
		assert.Equal(t, []string{"Pending...", want}, p.Render())

		p.SetState(StateError, "x", time.Time{})
		assert.Equal(t, ts, p.LastUpdated())

		later := ts.Add(time.Hour)
		p.SetState(StateIdle, "", later)
		assert.Equal(t, later, p.LastUpdated())
	})

	t.Run("idle twice renders identically", func(t *testing.T) {
		p := NewProgressIndicator("a", ts)
		p.SetState(StateIdle, "", time.Time{})
		first := p.Render()
		p.SetState(StateIdle, "", time.Time{})
		assert.Equal(t, first, p.Render())
	})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "State(7)", State(7).String())
	assert.Equal(t, "itemComplete", EventItemComplete.String())
}
