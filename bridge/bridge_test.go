// FILE: lixenwraith/cclog/bridge/bridge_test.go
package bridge

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/sanitizer"
)

// createTestLogger creates a registry and a file logger in a temp directory
func createTestLogger(t *testing.T, capacity uint32) (*cclog.Logger, *cclog.Metrics, string) {
	t.Helper()
	reg := cclog.NewRegistry()
	m := cclog.NewMetrics()
	require.NoError(t, reg.Setup(m))
	t.Cleanup(reg.Teardown)

	path := filepath.Join(t.TempDir(), "bridge.log")
	l, err := cclog.Create(reg, path, capacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Destroy() })
	return l, m, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 8, 30, 0, 42000, time.UTC)
}

func TestStateMachine(t *testing.T) {
	l, _, _ := createTestLogger(t, 0)
	b := New()

	assert.Equal(t, StateUnprepared, b.State())
	assert.ErrorIs(t, b.Register(l, cclog.LevelInfo), ErrNotSetUp)
	assert.ErrorIs(t, b.Teardown(), ErrNotSetUp)

	require.NoError(t, b.Setup())
	assert.Equal(t, StatePrepared, b.State())
	assert.ErrorIs(t, b.Setup(), ErrAlreadySetUp)
	assert.ErrorIs(t, b.Log([]byte("early"), cclog.LevelError), ErrNotSetUp, "prepared is not registered")

	require.NoError(t, b.Register(l, cclog.LevelInfo))
	assert.Equal(t, StateRegistered, b.State())
	assert.True(t, b.IsRegistered())
	assert.ErrorIs(t, b.Register(l, cclog.LevelDebug), ErrAlreadyRegistered)
	assert.ErrorIs(t, b.Teardown(), ErrStillRegistered)

	assert.True(t, b.Unregister())
	assert.False(t, b.Unregister())
	assert.Equal(t, StatePrepared, b.State())
	assert.ErrorIs(t, b.Log([]byte("late"), cclog.LevelError), ErrNotSetUp)

	require.NoError(t, b.Teardown())
	assert.Equal(t, StateUnprepared, b.State())
	assert.Equal(t, "registered", StateRegistered.String())
}

func TestRegisterValidation(t *testing.T) {
	l, _, _ := createTestLogger(t, 0)
	b := New()
	require.NoError(t, b.Setup())

	assert.ErrorIs(t, b.Register(nil, cclog.LevelInfo), cclog.ErrDestroyed)
	assert.Error(t, b.Register(l, cclog.Level(0)))
	assert.Error(t, b.Register(l, cclog.Level(6)))
	assert.False(t, b.IsRegistered())
}

func TestLogThreshold(t *testing.T) {
	l, m, path := createTestLogger(t, 0)
	b := New()
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelWarn))

	require.NoError(t, b.Log([]byte("err\n"), cclog.LevelError))
	require.NoError(t, b.Log([]byte("warn\n"), cclog.LevelWarn))
	require.NoError(t, b.Log([]byte("info\n"), cclog.LevelInfo))
	assert.Equal(t, "err\nwarn\n", readFile(t, path))

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.Writes)
	assert.Equal(t, uint64(0), s.SkippedMessages, "filtered messages are not drops")

	assert.True(t, b.Enabled(cclog.LevelWarn))
	assert.False(t, b.Enabled(cclog.LevelInfo))

	b.SetMaxLevel(cclog.LevelTrace)
	assert.Equal(t, cclog.LevelTrace, b.MaxLevel())
	require.NoError(t, b.Log([]byte("trace\n"), cclog.LevelTrace))
	assert.Equal(t, "err\nwarn\ntrace\n", readFile(t, path))
}

func TestSetMaxLevelIgnoresInvalid(t *testing.T) {
	l, _, path := createTestLogger(t, 0)
	b := New()
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelWarn))

	b.SetMaxLevel(cclog.Level(0))
	assert.Equal(t, cclog.LevelWarn, b.MaxLevel())
	b.SetMaxLevel(cclog.Level(9))
	assert.Equal(t, cclog.LevelWarn, b.MaxLevel())

	require.NoError(t, b.Log([]byte("kept\n"), cclog.LevelWarn))
	require.NoError(t, b.Log([]byte("filtered\n"), cclog.LevelDebug))
	assert.Equal(t, "kept\n", readFile(t, path))
}

func TestLogOverflowIsSilent(t *testing.T) {
	l, m, _ := createTestLogger(t, 5)
	b := New()
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	assert.NoError(t, b.Log([]byte("foo bar baz"), cclog.LevelError))
	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.SkippedMessages)
	assert.Equal(t, uint64(11), s.SkippedBytes)
}

func TestUTF8Enforcement(t *testing.T) {
	l, m, path := createTestLogger(t, 0)

	b := New()
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))
	assert.ErrorIs(t, b.Log([]byte{0xff, 'x'}, cclog.LevelError), ErrInvalidEncoding)
	assert.Equal(t, uint64(0), m.Writes.Load())

	// Below-threshold messages are not inspected
	assert.NoError(t, b.Log([]byte{0xff}, cclog.LevelDebug))
	b.Unregister()

	opaque := New(WithRequireUTF8(false))
	require.NoError(t, opaque.Setup())
	require.NoError(t, opaque.Register(l, cclog.LevelInfo))
	assert.NoError(t, opaque.Log([]byte{0xff, 'x'}, cclog.LevelError))
	assert.Equal(t, "\xffx", readFile(t, path))
}

func TestUnregisterLeavesLoggerOpen(t *testing.T) {
	l, m, path := createTestLogger(t, 64)
	b := New()
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	require.NoError(t, b.Log([]byte("via bridge "), cclog.LevelInfo))
	require.NoError(t, b.Flush())
	assert.True(t, b.Unregister())
	assert.ErrorIs(t, b.Flush(), ErrNotSetUp)

	assert.False(t, l.Destroyed())
	_, err := l.Write([]byte("owner"))
	require.NoError(t, err)
	require.NoError(t, l.Flush())
	assert.Equal(t, "via bridge owner", readFile(t, path))
	assert.Equal(t, uint64(0), m.Destructions.Load())
}

func TestOwnerDestroyInvalidatesBridge(t *testing.T) {
	l, _, _ := createTestLogger(t, 64)
	b := New()
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	require.NoError(t, l.Destroy())
	assert.ErrorIs(t, b.Log([]byte("x"), cclog.LevelError), cclog.ErrDestroyed)
	assert.True(t, b.Unregister())
}

func TestFlushOnLog(t *testing.T) {
	l, _, path := createTestLogger(t, 128)

	b := New(WithFlushOnLog(true))
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))
	require.NoError(t, b.Log([]byte("visible"), cclog.LevelInfo))
	assert.Equal(t, "visible", readFile(t, path))
	assert.Equal(t, 0, l.Buffered())
}

func TestEmit(t *testing.T) {
	l, _, path := createTestLogger(t, 0)
	b := New(WithClock(fixedClock))
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	require.NoError(t, b.Emit(cclog.LevelWarn, "storage", "slab evicted", "id", 3))
	require.NoError(t, b.Emit(cclog.LevelDebug, "storage", "filtered"))

	assert.Equal(t, "2024-03-01 08:30:00.000042 WARN  [storage] slab evicted id=3\n", readFile(t, path))

	b.Unregister()
	assert.ErrorIs(t, b.Emit(cclog.LevelError, "m", "x"), ErrNotSetUp)
}

func TestEmitCustomSanitizerUTF8(t *testing.T) {
	l, m, path := createTestLogger(t, 0)

	b := New(WithClock(fixedClock), WithSanitizer(sanitizer.New()))
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	assert.ErrorIs(t, b.Emit(cclog.LevelInfo, "m", "bad \xff byte"), ErrInvalidEncoding)
	assert.Equal(t, uint64(0), m.Writes.Load())
	require.NoError(t, b.Emit(cclog.LevelInfo, "m", "fine"))
	b.Unregister()

	// Without enforcement the passthrough sanitizer keeps raw bytes
	opaque := New(WithClock(fixedClock), WithSanitizer(sanitizer.New()), WithRequireUTF8(false))
	require.NoError(t, opaque.Setup())
	require.NoError(t, opaque.Register(l, cclog.LevelInfo))
	require.NoError(t, opaque.Emit(cclog.LevelInfo, "m", "raw \xff"))

	content := readFile(t, path)
	assert.Contains(t, content, "[m] fine\n")
	assert.Contains(t, content, "[m] raw \xff\n")
}

func TestEmitDefaultSanitizerEncodesInvalid(t *testing.T) {
	l, _, path := createTestLogger(t, 0)
	b := New(WithClock(fixedClock))
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	require.NoError(t, b.Emit(cclog.LevelInfo, "m", "bad \xff byte"))
	assert.Contains(t, readFile(t, path), "[m] bad <ff> byte\n")
}

func TestEmitJSON(t *testing.T) {
	l, _, path := createTestLogger(t, 0)
	b := New(WithClock(fixedClock), WithFormat("json"))
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	require.NoError(t, b.Emit(cclog.LevelInfo, "net", "accepted", "fd", 9))
	assert.Equal(t,
		`{"time":"2024-03-01 08:30:00.000042","level":"INFO","module":"net","msg":"accepted","fields":{"fd":9}}`+"\n",
		readFile(t, path))
}

func TestConcurrentEmit(t *testing.T) {
	l, m, path := createTestLogger(t, 1<<16)
	b := New()
	require.NoError(t, b.Setup())
	require.NoError(t, b.Register(l, cclog.LevelInfo))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = b.Emit(cclog.LevelInfo, "worker", "tick", "j", j)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, b.Flush())

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	assert.Len(t, lines, 400)
	for _, line := range lines {
		assert.Contains(t, line, " INFO  [worker] tick j=")
	}
	assert.Equal(t, uint64(400), m.Writes.Load())
}

func TestDefaultBridge(t *testing.T) {
	l, _, path := createTestLogger(t, 0)

	require.NoError(t, Setup())
	defer func() {
		Unregister()
		_ = Teardown()
	}()
	assert.Same(t, std, Default())

	require.NoError(t, Register(l, cclog.LevelInfo))
	assert.True(t, IsRegistered())
	assert.ErrorIs(t, Register(l, cclog.LevelInfo), ErrAlreadyRegistered)

	require.NoError(t, Log([]byte("one\n"), cclog.LevelInfo))
	SetMaxLevel(cclog.LevelError)
	require.NoError(t, Log([]byte("two\n"), cclog.LevelInfo))
	require.NoError(t, Emit(cclog.LevelError, "m", "three"))
	require.NoError(t, Flush())

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "one\n"))
	assert.NotContains(t, content, "two")
	assert.Contains(t, content, "[m] three\n")

	assert.True(t, Unregister())
	assert.ErrorIs(t, Log([]byte("x"), cclog.LevelError), ErrNotSetUp)
}
