package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/repositories"
	"github.com/desertthunder/smartlist/internal/server"
	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/desertthunder/smartlist/internal/tasks"
	tu "github.com/desertthunder/smartlist/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(output *bytes.Buffer) *Runner {
	return NewRunner(RunnerOpts{Logger: shared.DiscardLogger(), Output: output})
}

// run executes args against a fresh command tree; flag state does not survive between runs.
func run(r *Runner, args ...string) error {
	return newApp(r).Run(context.Background(), append([]string{"smartlist"}, args...))
}

// startService runs the real service over an in-memory database and writes a config file pointing at it.
func startService(t *testing.T, provider *tu.MockArtistProvider) string {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(context.Background(), db))

	srv, err := server.New(server.Options{
		CSRFToken: "secret",
		Store:     repositories.NewArtistRepository(db),
		Provider:  provider,
		Logger:    shared.DiscardLogger(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := shared.DefaultConfig()
	cfg.Panel.BaseURL = ts.URL
	cfg.Panel.UserID = "tester"
	cfg.Server.CSRFToken = "secret"

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, shared.SaveConfig(path, cfg))
	return path
}

func TestNewRunner(t *testing.T) {
	t.Run("with all dependencies provided", func(t *testing.T) {
		config := shared.DefaultConfig()
		logger := shared.DiscardLogger()
		output := &bytes.Buffer{}
		httpClient := &http.Client{}

		runner := NewRunner(RunnerOpts{
			Config:     config,
			ConfigPath: "/test/path/config.toml",
			Logger:     logger,
			Output:     output,
			HTTPClient: httpClient,
		})

		assert.Same(t, config, runner.config)
		assert.Same(t, logger, runner.logger)
		assert.Same(t, httpClient, runner.httpClient)
		assert.Equal(t, output, runner.output)
		assert.Equal(t, "/test/path/config.toml", runner.configPath)
	})

	t.Run("with nil options uses defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		assert.NotNil(t, runner.config)
		assert.NotNil(t, runner.logger)
		assert.Equal(t, os.Stdout, runner.output)
		assert.Same(t, http.DefaultClient, runner.httpClient)
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("pretty and compact", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(output)

		require.NoError(t, runner.writeJSON(map[string]string{"key": "value"}, true))
		assert.Contains(t, output.String(), `"key": "value"`)

		output.Reset()
		require.NoError(t, runner.writeJSON(map[string]string{"key": "value"}, false))
		assert.Equal(t, `{"key":"value"}`+"\n", output.String())
	})

	t.Run("marshal error", func(t *testing.T) {
		runner := newTestRunner(&bytes.Buffer{})
		err := runner.writeJSON(make(chan int), false)
		assert.ErrorContains(t, err, "failed to marshal JSON")
	})

	t.Run("write failure", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.DiscardLogger(), Output: &tu.FWriter{}})
		err := runner.writeJSON(map[string]string{"key": "value"}, false)
		assert.ErrorContains(t, err, "failed to write output")
	})

	t.Run("newline write failure", func(t *testing.T) {
		limited := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
		runner := NewRunner(RunnerOpts{Logger: shared.DiscardLogger(), Output: &limited})
		err := runner.writeJSON(map[string]string{"key": "value"}, false)
		assert.ErrorContains(t, err, "failed to write newline")
	})
}

func TestParseChanges(t *testing.T) {
	changes, err := parseChanges([]string{"a", "b"}, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": false}, changes)

	_, err = parseChanges(nil, nil)
	assert.ErrorIs(t, err, shared.ErrMissingArgument)

	_, err = parseChanges([]string{"a"}, []string{"a"})
	assert.ErrorIs(t, err, shared.ErrInvalidArgument)

	_, err = parseChanges([]string{""}, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestArtistsCommands(t *testing.T) {
	provider := &tu.MockArtistProvider{
		Artists: []models.Artist{
			{ID: "a", Name: "Radiohead"},
			{ID: "b", Name: "Portishead"},
			{ID: "c", Name: "Massive Attack"},
		},
	}
	path := startService(t, provider)
	output := &bytes.Buffer{}
	runner := newTestRunner(output)

	require.NoError(t, run(runner, "--config", path, "artists", "save", "--on", "a", "--on", "c"))
	assert.Contains(t, output.String(), "Saved 2 artists, removed 0")

	output.Reset()
	require.NoError(t, run(runner, "--config", path, "artists", "list", "--format", "json"))

	var artists []models.Artist
	require.NoError(t, json.Unmarshal(output.Bytes(), &artists))
	require.Len(t, artists, 3)
	saved := map[string]bool{}
	for _, a := range artists {
		saved[a.ID] = a.Saved
	}
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": true}, saved)

	output.Reset()
	require.NoError(t, run(runner, "--config", path, "artists", "list", "--filter", "head"))
	assert.Contains(t, output.String(), "[x] Radiohead (a)")
	assert.Contains(t, output.String(), "[ ] Portishead (b)")
	assert.NotContains(t, output.String(), "Massive Attack")

	output.Reset()
	require.NoError(t, run(runner, "--config", path, "artists", "save", "--off", "c"))
	assert.Contains(t, output.String(), "Saved 0 artists, removed 1")

	out := filepath.Join(t.TempDir(), "saved.csv")
	require.NoError(t, run(runner, "--config", path, "artists", "list", "--saved", "--format", "csv", "--output", out))
	tu.AssertFileExists(t, out)
	csv := tu.MustReadFile(t, out)
	assert.Contains(t, csv, "a,Radiohead,true,")
	assert.NotContains(t, csv, "Portishead")
}

func TestArtistsCommandErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")

	t.Run("unknown format", func(t *testing.T) {
		err := run(newTestRunner(&bytes.Buffer{}), "--config", missing, "artists", "list", "--format", "yaml")
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})

	t.Run("nothing to save", func(t *testing.T) {
		err := run(newTestRunner(&bytes.Buffer{}), "--config", missing, "artists", "save")
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("service unavailable", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Logger:     shared.DiscardLogger(),
			Output:     &bytes.Buffer{},
			HTTPClient: &http.Client{Transport: tu.NewStatusRoundTripper(http.StatusBadGateway, `{}`)},
		})
		err := run(runner, "--config", missing, "artists", "list")
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})

	t.Run("save failure reports the form message", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Logger:     shared.DiscardLogger(),
			Output:     &bytes.Buffer{},
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
		})
		err := run(runner, "--config", missing, "artists", "save", "--on", "a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Error encountered while saving")
	})
}

func TestSyncCommand(t *testing.T) {
	t.Run("stream", func(t *testing.T) {
		provider := &tu.MockArtistProvider{
			Artists: []models.Artist{{ID: "a", Name: "Radiohead"}, {ID: "c", Name: "Massive Attack"}},
			Fail:    map[string]error{"c": errors.New("gone")},
		}
		path := startService(t, provider)
		output := &bytes.Buffer{}
		runner := newTestRunner(output)

		require.NoError(t, run(runner, "--config", path, "artists", "save", "--on", "a", "--on", "c"))
		output.Reset()

		err := run(runner, "--config", path, "sync")
		require.ErrorIs(t, err, errSyncIncomplete)
		assert.Contains(t, output.String(), "✓ a")
		assert.Contains(t, output.String(), "✗ c")
		assert.Contains(t, output.String(), "Last Updated: ")
		assert.ElementsMatch(t, []string{"a", "c"}, provider.Lookups())

		require.NoError(t, run(runner, "--config", path, "artists", "save", "--off", "c"))
		output.Reset()
		require.NoError(t, run(runner, "--config", path, "sync"))
		assert.Contains(t, output.String(), "1 completed, 0 failed, 0 not synced")
	})

	t.Run("simulated failure", func(t *testing.T) {
		output := &bytes.Buffer{}
		missing := filepath.Join(t.TempDir(), "missing.toml")

		err := run(newTestRunner(output), "--config", missing,
			"sync", "--simulate", "--artist", "x", "--artist", "y", "--fail", "y", "--delay", "1ms")
		require.ErrorIs(t, err, errSyncIncomplete)
		assert.Contains(t, output.String(), "✓ x")
		assert.Contains(t, output.String(), "✗ y: simulated failure")
	})

	t.Run("simulated json", func(t *testing.T) {
		output := &bytes.Buffer{}
		missing := filepath.Join(t.TempDir(), "missing.toml")

		require.NoError(t, run(newTestRunner(output), "--config", missing,
			"sync", "--simulate", "--artist", "x", "--delay", "1ms", "--json"))

		var res map[string]any
		require.NoError(t, json.Unmarshal(output.Bytes(), &res), output.String())
		assert.NotEmpty(t, res["session"])
		assert.Equal(t, []any{"x"}, res["completed"])
		assert.Equal(t, []any{}, res["failed"])
		assert.Equal(t, []any{}, res["disconnected"])
	})

	t.Run("simulated json with failure", func(t *testing.T) {
		output := &bytes.Buffer{}
		missing := filepath.Join(t.TempDir(), "missing.toml")

		err := run(newTestRunner(output), "--config", missing,
			"sync", "--simulate", "--artist", "x", "--artist", "y", "--fail", "y", "--delay", "1ms", "--json")
		require.ErrorIs(t, err, errSyncIncomplete)

		var res tasks.Result
		require.NoError(t, json.Unmarshal(output.Bytes(), &res), output.String())
		assert.Equal(t, []string{"x"}, res.Completed)
		assert.Equal(t, []string{"y"}, res.Failed)
		assert.NotContains(t, output.String(), "simulated failure")
	})
}

func TestSetupDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := shared.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "smartlist.db")

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, shared.SaveConfig(path, cfg))

	output := &bytes.Buffer{}
	require.NoError(t, run(newTestRunner(output), "--config", path, "setup", "database"))

	tu.AssertFileExists(t, cfg.Database.Path)
	assert.Contains(t, output.String(), "Database ready")
}
