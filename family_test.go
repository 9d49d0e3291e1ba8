package cclog

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyPerWorkerFiles(t *testing.T) {
	reg, m := newTestRegistry(t)
	dir := t.TempDir()

	fam, err := NewFamily(reg, dir, "worker", 256)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, name := range []string{"0", "1", "2", "3"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			l, err := fam.Get(name)
			if !assert.NoError(t, err) {
				return
			}
			_, _ = l.Write([]byte("from " + name + "\n"))
		}(name)
	}
	wg.Wait()

	assert.Equal(t, []string{"0", "1", "2", "3"}, fam.Names())
	require.NoError(t, fam.Flush())
	assert.Equal(t, "from 2\n", readFile(t, filepath.Join(dir, "worker.2.log")))

	again, err := fam.Get("2")
	require.NoError(t, err)
	assert.Equal(t, fam.PathFor("2"), again.Path())
	assert.Equal(t, uint64(4), m.Creations.Load(), "Get reuses existing members")

	require.NoError(t, fam.Close())
	assert.NoError(t, fam.Close())
	assert.True(t, again.Destroyed())
	assert.Equal(t, int64(0), m.Active.Load())

	_, err = fam.Get("5")
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestFamilyValidation(t *testing.T) {
	reg, _ := newTestRegistry(t)
	dir := t.TempDir()

	_, err := NewFamily(nil, dir, "w", 0)
	assert.ErrorIs(t, err, ErrNotSetUp)
	_, err = NewFamily(reg, dir, "", 0)
	assert.Error(t, err)
	_, err = NewFamily(reg, dir, "a/b", 0)
	assert.Error(t, err)

	fam, err := NewFamily(reg, dir, "w", 0)
	require.NoError(t, err)
	defer fam.Close()

	_, err = fam.Get("")
	assert.Error(t, err)
	_, err = fam.Get("../escape")
	assert.Error(t, err)
}

func TestFamilyOpenFailure(t *testing.T) {
	reg, m := newTestRegistry(t)

	fam, err := NewFamily(reg, filepath.Join(t.TempDir(), "missing"), "w", 0)
	require.NoError(t, err)

	_, err = fam.Get("0")
	assert.ErrorIs(t, err, ErrOpen)
	assert.Empty(t, fam.Names())
	assert.Equal(t, uint64(0), m.Creations.Load())
}
