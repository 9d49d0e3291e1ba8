// FILE: lixenwraith/cclog/builder_test.go
package cclog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	t.Run("successful build returns configured logger", func(t *testing.T) {
		reg, m := newTestRegistry(t)
		path := filepath.Join(t.TempDir(), "built.log")

		logger, err := NewBuilder().
			Path(path).
			BufferCapacity(2048).
			OpenMode(OpenAppend).
			FileMode(0600).
			SyncOnFlush(true).
			Build(reg)
		require.NoError(t, err, "Builder.Build() should not return an error on valid config")
		require.NotNil(t, logger)
		defer logger.Destroy()

		assert.Equal(t, path, logger.Path())
		assert.Equal(t, 2048, logger.Capacity())
		assert.Equal(t, uint64(1), m.Opens.Load())

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("config is copied", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		cfg := DefaultConfig()
		cfg.BufferCapacity = 128

		b := NewBuilder().Config(cfg)
		cfg.BufferCapacity = 1

		logger, err := b.Build(reg)
		require.NoError(t, err)
		defer logger.Destroy()
		assert.Equal(t, 128, logger.Capacity())
		assert.True(t, logger.IsStderr())
	})

	t.Run("builder error accumulation", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		logger, err := NewBuilder().Config(nil).Path("/tmp/never.log").Build(reg)
		require.Error(t, err)
		assert.Nil(t, logger)
		assert.Contains(t, err.Error(), "builder config cannot be nil")
	})

	t.Run("invalid config fails validation", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		cfg := DefaultConfig()
		cfg.OpenMode = "bogus"
		_, err := NewBuilder().Config(cfg).Build(reg)
		assert.ErrorContains(t, err, "invalid open_mode")
	})

	t.Run("buffer source is used", func(t *testing.T) {
		reg, _ := newTestRegistry(t)
		src := &fixedSource{buf: make([]byte, 256)}

		logger, err := NewBuilder().BufferCapacity(256).BufferSource(src).Build(reg)
		require.NoError(t, err)
		assert.True(t, src.taken)
		require.NoError(t, logger.Destroy())
		assert.False(t, src.taken)
	})

	t.Run("detached registry", func(t *testing.T) {
		_, err := NewBuilder().Build(NewRegistry())
		assert.ErrorIs(t, err, ErrNotSetUp)
	})
}
