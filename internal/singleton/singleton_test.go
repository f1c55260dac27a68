package singleton

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockPathUsesBotIDOnly(t *testing.T) {
	path := LockPath("/var/run", "123456789:AAHsecret")
	assert.Equal(t, filepath.Join("/var/run", "codexbot-123456789.lock"), path)
	assert.NotContains(t, path, "secret")

	assert.Equal(t, filepath.Join(".", "codexbot-default.lock"), LockPath(".", ""))
	assert.Equal(t, filepath.Join(".", "codexbot-default.lock"), LockPath(".", "../../etc:x"))
}

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bot.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path())

	_, err = Acquire(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Contains(t, err.Error(), "pid "+strconv.Itoa(os.Getpid()))

	require.NoError(t, first.Release())

	second, err := Acquire(path)
	require.NoError(t, err, "lock must be available after release")
	require.NoError(t, second.Release())
}

func TestAcquireWritesMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.lock")

	g, err := Acquire(path)
	require.NoError(t, err)
	defer g.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"pid":`+strconv.Itoa(os.Getpid())))
}

func TestAcquireEmptyPath(t *testing.T) {
	_, err := Acquire("  ")
	assert.ErrorIs(t, err, ErrLockUnavailable)
}

func TestReleaseIsIdempotent(t *testing.T) {
	g, err := Acquire(filepath.Join(t.TempDir(), "bot.lock"))
	require.NoError(t, err)
	require.NoError(t, g.Release())
	require.NoError(t, g.Release())

	var nilGuard *Guard
	assert.NoError(t, nilGuard.Release())
}
