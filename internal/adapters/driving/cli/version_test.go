package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() { version = original })
}

func TestVersionCmd(t *testing.T) {
	t.Run("prints version and platform", func(t *testing.T) {
		withVersion(t, "1.0.0")

		stdout, _, err := executeCommand("version")

		require.NoError(t, err)
		assert.Contains(t, stdout, "insight version 1.0.0")
		assert.Contains(t, stdout, runtime.GOOS+"/"+runtime.GOARCH)
	})

	t.Run("dev by default", func(t *testing.T) {
		withVersion(t, "dev")

		stdout, _, err := executeCommand("version")

		require.NoError(t, err)
		assert.Contains(t, stdout, "insight version dev")
	})

	t.Run("short", func(t *testing.T) {
		withVersion(t, "2.1.0")

		stdout, _, err := executeCommand("version", "--short")

		require.NoError(t, err)
		assert.Equal(t, "2.1.0\n", stdout)
	})

	t.Run("rejects arguments", func(t *testing.T) {
		_, _, err := executeCommand("version", "extra")
		assert.Error(t, err)
	})
}
