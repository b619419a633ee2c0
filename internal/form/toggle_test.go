package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	events []string
}

func (r *recorder) OnDirty(id string) { r.events = append(r.events, "dirty:"+id) }
func (r *recorder) OnClean(id string) { r.events = append(r.events, "clean:"+id) }

func TestToggleField(t *testing.T) {
	t.Run("starts clean", func(t *testing.T) {
		f := NewToggleField("a", "Artist A", true)
		assert.True(t, f.Value())
		assert.True(t, f.Baseline())
		assert.False(t, f.Dirty())
		assert.Equal(t, "a", f.ID())
		assert.Equal(t, "Artist A", f.Name())
	})

	t.Run("notifies only on transitions", func(t *testing.T) {
		rec := &recorder{}
		f := NewToggleField("a", "A", false)
		f.Subscribe(rec)

		assert.True(t, f.Toggle())
		assert.True(t, f.Dirty())
		assert.True(t, f.Set(true), "setting the same dirty value is accepted")
		assert.True(t, f.Toggle())
		assert.False(t, f.Dirty())

		assert.Equal(t, []string{"dirty:a", "clean:a"}, rec.events)
	})

	t.Run("double toggle returns to clean", func(t *testing.T) {
		rec := &recorder{}
		f := NewToggleField("b", "B", true)
		f.Subscribe(rec)

		f.Toggle()
		f.Toggle()

		assert.False(t, f.Dirty())
		assert.Equal(t, []string{"dirty:b", "clean:b"}, rec.events)
	})

	t.Run("reset restores baseline", func(t *testing.T) {
		rec := &recorder{}
		f := NewToggleField("c", "C", false)
		f.Subscribe(rec)

		f.Toggle()
		f.Reset()
		assert.False(t, f.Value())
		assert.False(t, f.Dirty())

		f.Reset()
		assert.Equal(t, []string{"dirty:c", "clean:c"}, rec.events, "reset of a clean field is silent")
	})

	t.Run("disabled ignores input", func(t *testing.T) {
		rec := &recorder{}
		f := NewToggleField("d", "D", false)
		f.Subscribe(rec)
		f.SetDisabled(true)

		assert.False(t, f.Toggle())
		assert.False(t, f.Set(true))
		assert.False(t, f.Value())
		assert.Empty(t, rec.events)

		f.SetDisabled(false)
		assert.True(t, f.Toggle())
		assert.True(t, f.Value())
	})

	t.Run("disabling keeps dirty state", func(t *testing.T) {
		f := NewToggleField("e", "E", false)
		f.Toggle()
		f.SetDisabled(true)
		assert.True(t, f.Dirty())
		assert.True(t, f.Disabled())
	})
}
