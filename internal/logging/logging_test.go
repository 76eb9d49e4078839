package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "plotter.log")

	require.NoError(t, Init("debug", logPath))
	t.Cleanup(func() { _ = Close() })

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	logrus.WithField("dataset", "zoo").Info("chart written")
	require.NoError(t, Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chart written")
	assert.Contains(t, string(data), "dataset=zoo")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init("chatty", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestCloseWithoutFile(t *testing.T) {
	require.NoError(t, Init("info", ""))
	assert.NoError(t, Close())
}
