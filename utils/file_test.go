package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pitchdeck-be/config"
)

func TestTimestampedName(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "deck_1700000000.pdf", TimestampedName("deck.pdf", at))
	assert.Equal(t, "notes_1700000000", TimestampedName("notes", at))
}

func TestCopyFileWithTimestamp(t *testing.T) {
	src := filepath.Join(t.TempDir(), "acme.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.7"), 0644))
	dest := filepath.Join(t.TempDir(), "nested", "uploads")

	path, err := CopyFileWithTimestamp(src, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, filepath.Dir(path))
	assert.Regexp(t, `^acme_\d+\.pdf$`, filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(content))

	_, err = CopyFileWithTimestamp(filepath.Join(t.TempDir(), "missing.pdf"), dest)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
