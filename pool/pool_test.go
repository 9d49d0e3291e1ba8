package pool_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/pool"
)

func TestPreallocAndTake(t *testing.T) {
	allocs := 0
	p := pool.New(pool.Config[[]byte]{
		Max: 10,
		New: func() []byte {
			allocs++
			b := make([]byte, 5)
			b[0] = 1
			return b
		},
	})

	assert.Equal(t, 0, p.InUse())
	assert.Equal(t, 0, p.Free())
	assert.Equal(t, 10, p.Max())

	assert.Equal(t, 3, p.Prealloc(3))
	assert.Equal(t, 3, p.Free())
	assert.Equal(t, 3, allocs)

	b, ok := p.Take()
	require.True(t, ok)
	assert.Len(t, b, 5)
	assert.Equal(t, byte(1), b[0], "init runs on allocation")
	assert.Equal(t, 1, p.InUse())
	assert.Equal(t, 2, p.Free())

	// Prealloc never exceeds the bound
	assert.Equal(t, 7, p.Prealloc(20))
	assert.Equal(t, 9, p.Free())
}

func TestTakeAndPutBounded(t *testing.T) {
	p := pool.New(pool.Config[[]byte]{
		Max: 2,
		New: func() []byte { return make([]byte, 5) },
	})
	p.Prealloc(1)

	a, ok := p.Take()
	require.True(t, ok)
	b, ok := p.Take()
	require.True(t, ok, "allocates while under the bound")
	assert.Equal(t, 2, p.InUse())

	_, ok = p.Take()
	assert.False(t, ok, "pool is full")

	p.Put(a)
	assert.Equal(t, 1, p.InUse())
	assert.Equal(t, 1, p.Free())

	p.Put(b)
	assert.Equal(t, 0, p.InUse())
	assert.Equal(t, 2, p.Free())

	// A foreign object beyond the bound is discarded
	p.Put(make([]byte, 5))
	assert.Equal(t, 2, p.Free())
}

func TestUnbounded(t *testing.T) {
	p := pool.New(pool.Config[int]{New: func() int { return 42 }})

	for i := 0; i < 100; i++ {
		v, ok := p.Take()
		require.True(t, ok)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 100, p.InUse())
	assert.Equal(t, 0, p.Max())
}

func TestReset(t *testing.T) {
	p := pool.NewBuffers(16, 1)

	b, ok := p.Take()
	require.True(t, ok)
	assert.Equal(t, 16, cap(b))
	b = append(b, "dirty"...)

	p.Put(b)
	again, ok := p.Take()
	require.True(t, ok)
	assert.Len(t, again, 0)
	assert.Equal(t, 16, cap(again))
}

func TestLIFOOrder(t *testing.T) {
	next := 0
	p := pool.New(pool.Config[int]{New: func() int { next++; return next }})
	p.Prealloc(3)

	first, _ := p.Take()
	second, _ := p.Take()
	assert.Equal(t, 3, first)
	assert.Equal(t, 2, second)

	p.Put(first)
	again, _ := p.Take()
	assert.Equal(t, 3, again, "the last returned object is reused first")
}

func TestTakePutDoesNotAllocate(t *testing.T) {
	p := pool.New(pool.Config[int]{Max: 2, New: func() int { return 0 }})
	require.Equal(t, 2, p.Prealloc(2))

	var total float64
	for i := 0; i < 50; i++ {
		total += testing.AllocsPerRun(1, func() {
			a, _ := p.Take()
			b, _ := p.Take()
			p.Put(a)
			p.Put(b)
		})
	}
	assert.Zero(t, total)
	assert.Equal(t, 2, p.Free())
	assert.Equal(t, 0, p.InUse())
}

func TestNewRequired(t *testing.T) {
	assert.Panics(t, func() { pool.New(pool.Config[int]{}) })
}

func TestConcurrentTakePut(t *testing.T) {
	p := pool.NewBuffers(64, 4)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if b, ok := p.Take(); ok {
					p.Put(b)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, p.InUse())
	assert.LessOrEqual(t, p.Free(), 4)
}

// TestLoggerBorrowsBuffers verifies the pool works as a logger buffer source
func TestLoggerBorrowsBuffers(t *testing.T) {
	reg := cclog.NewRegistry()
	require.NoError(t, reg.Setup(cclog.NewMetrics()))
	defer reg.Teardown()

	var _ cclog.BufferSource = (*pool.Pool[[]byte])(nil)

	buffers := pool.NewBuffers(128, 2)
	buffers.Prealloc(2)
	dir := t.TempDir()

	a, err := cclog.Create(reg, filepath.Join(dir, "a.log"), 128, cclog.WithBufferSource(buffers))
	require.NoError(t, err)
	b, err := cclog.Create(reg, filepath.Join(dir, "b.log"), 64, cclog.WithBufferSource(buffers))
	require.NoError(t, err)
	assert.Equal(t, 2, buffers.InUse())

	_, err = cclog.Create(reg, "", 128, cclog.WithBufferSource(buffers))
	assert.ErrorIs(t, err, cclog.ErrBufferUnavailable)

	_, err = cclog.Create(reg, "", 256, cclog.WithBufferSource(pool.NewBuffers(128, 0)))
	assert.ErrorIs(t, err, cclog.ErrBufferUnavailable, "buffer smaller than capacity")

	require.NoError(t, cclog.Destroy(&a))
	require.NoError(t, cclog.Destroy(&b))
	assert.Equal(t, 0, buffers.InUse())
	assert.Equal(t, 2, buffers.Free())
}
