package shared

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		l.Info("hello", "artist", "a1")

		assert.Contains(t, buf.String(), "hello")
		assert.Contains(t, buf.String(), "artist=a1")
	})

	t.Run("SetLogLevel filters lower levels", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		SetLogLevel(l, log.WarnLevel)
		l.Info("quiet")

		assert.Empty(t, buf.String())
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "panel.log")
		l, err := NewFileLogger(path)
		require.NoError(t, err)
		l.Info("written")

		assert.FileExists(t, path)
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()

	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
