package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mycord.log")

	logger, closeFn, err := Init(path, true)
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	logger.Info("connected", zap.String("target", "127.0.0.1:8080"))
	LogV("frame", zap.Int("kind", 10))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"connected"`)
	assert.Contains(t, out, `"target":"127.0.0.1:8080"`)
	assert.Contains(t, out, `"msg":"frame"`)
	assert.Contains(t, out, `"session":`)
}

func TestLogVSilentWithoutVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiet.log")

	_, closeFn, err := Init(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	LogV("hidden")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
}

func TestInitWithoutPathIsNop(t *testing.T) {
	logger, closeFn, err := Init("", false)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closeFn())
}
