package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSinkPut(t *testing.T) {
	root := t.TempDir()
	sink := DirSink{Root: root}

	path, err := sink.Put(context.Background(), "dashboard/2024-01-15/export.json", []byte(`{"v":1}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dashboard", "2024-01-15", "export.json"), path)

	_, err = sink.Put(context.Background(), "dashboard/2024-01-15/export.json", []byte(`{"v":2}`), "application/json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}
