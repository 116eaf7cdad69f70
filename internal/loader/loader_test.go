package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoad(t *testing.T) {
	t.Run("load program file", func(t *testing.T) {
		tmpFile := createTempFile(t, []byte{0x00, 0xE0, 0x12, 0x00})

		data, err := New().Load(tmpFile, 0xE00)
		assert.NoError(t, err)
		assert.True(t, bytes.Equal([]byte{0x00, 0xE0, 0x12, 0x00}, data))
	})

	t.Run("program at size limit", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, 8))

		data, err := New().Load(tmpFile, 8)
		assert.NoError(t, err)
		assert.Len(t, data, 8)
	})

	t.Run("program too large", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, 9))

		_, err := New().Load(tmpFile, 8)
		assert.True(t, errors.Is(err, chip8.ErrProgramTooLarge))
	})

	t.Run("empty file", func(t *testing.T) {
		tmpFile := createTempFile(t, nil)

		_, err := New().Load(tmpFile, 8)
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New().Load(filepath.Join(t.TempDir(), "missing.ch8"), 8)
		assert.ErrorContains(t, err, "opening file")
	})
}

func createTempFile(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "program.ch8")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
