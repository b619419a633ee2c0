package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserCommand(t *testing.T) {
	tt := []struct {
		goos string
		want string
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
	}

	for _, tc := range tt {
		t.Run(tc.goos, func(t *testing.T) {
			cmd, err := browserCommand(tc.goos, "http://127.0.0.1/callback")
			require.NoError(t, err)
			assert.Equal(t, tc.want, cmd.Args[0])
			assert.Equal(t, "http://127.0.0.1/callback", cmd.Args[len(cmd.Args)-1])
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		_, err := browserCommand("plan9", "http://127.0.0.1")
		assert.ErrorIs(t, err, ErrNotImplemented)
	})

	t.Run("OpenBrowser reports unsupported runtime", func(t *testing.T) {
		orig := getRuntime
		defer func() { getRuntime = orig }()
		getRuntime = func() string { return "plan9" }

		assert.Error(t, OpenBrowser("http://127.0.0.1"))
	})
}
