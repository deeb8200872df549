package packd

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(tb testing.TB) (*Store, *testClock) {
	tb.Helper()
	clock := &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := New(Options{
		Logger: slog.Default(),
		Now:    clock.Now,
	})
	return s, clock
}

func TestStringSetGet(t *testing.T) {
	s, _ := newTestStore(t)

	s.Set("greeting", []byte("hello"))
	v, err := s.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	s.Set("greeting", []byte("replaced"))
	v, err = s.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), v)
}

func TestStringIntegerEncoding(t *testing.T) {
	s, _ := newTestStore(t)

	s.Set("n", []byte("12345"))
	obj, ok := s.keys.Get("n")
	require.True(t, ok)
	assert.Equal(t, encInt, obj.enc)
	assert.Equal(t, int64(12345), obj.num)

	v, err := s.Get("n")
	require.NoError(t, err)
	assert.Equal(t, []byte("12345"), v)

	// non-canonical digits stay raw
	s.Set("padded", []byte("007"))
	obj, _ = s.keys.Get("padded")
	assert.Equal(t, encRaw, obj.enc)
	v, _ = s.Get("padded")
	assert.Equal(t, []byte("007"), v)
}

func TestWrongKind(t *testing.T) {
	s, _ := newTestStore(t)

	s.Set("str", []byte("x"))
	_, err := s.LLen("str")
	assert.ErrorIs(t, err, ErrWrongType)
	_, err = s.LPush("str", []byte("v"))
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = s.RPush("lst", []byte("v"))
	require.NoError(t, err)
	_, err = s.Get("lst")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestDelExistsType(t *testing.T) {
	s, _ := newTestStore(t)

	s.Set("a", []byte("1"))
	s.Set("b", []byte("2"))
	_, err := s.RPush("l", []byte("x"))
	require.NoError(t, err)

	assert.True(t, s.Exists("a"))
	assert.False(t, s.Exists("zzz"))

	kind, ok := s.Type("a")
	require.True(t, ok)
	assert.Equal(t, KindString, kind)
	kind, ok = s.Type("l")
	require.True(t, ok)
	assert.Equal(t, KindList, kind)
	_, ok = s.Type("zzz")
	assert.False(t, ok)

	assert.Equal(t, 2, s.Del("a", "b", "zzz"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"l"}, s.Keys())
}

func TestExpiry(t *testing.T) {
	s, clock := newTestStore(t)

	s.SetEx("session", []byte("token"), time.Minute)
	v, err := s.Get("session")
	require.NoError(t, err)
	assert.Equal(t, []byte("token"), v)

	ttl, hasTTL, err := s.TTL("session")
	require.NoError(t, err)
	require.True(t, hasTTL)
	assert.Equal(t, time.Minute, ttl)

	clock.Advance(30 * time.Second)
	ttl, _, _ = s.TTL("session")
	assert.Equal(t, 30*time.Second, ttl)

	clock.Advance(30 * time.Second)
	_, err = s.Get("session")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, s.Exists("session"))
	assert.Equal(t, uint64(1), s.ExpiredCount.Load())
}

func TestExpireAndPersist(t *testing.T) {
	s, clock := newTestStore(t)

	s.Set("k", []byte("v"))
	_, hasTTL, err := s.TTL("k")
	require.NoError(t, err)
	assert.False(t, hasTTL)

	assert.True(t, s.Expire("k", time.Hour))
	assert.False(t, s.Expire("missing", time.Hour))

	assert.True(t, s.Persist("k"))
	assert.False(t, s.Persist("k"))
	clock.Advance(2 * time.Hour)
	assert.True(t, s.Exists("k"))

	// a plain Set clears any deadline
	s.SetEx("k2", []byte("v"), time.Minute)
	s.Set("k2", []byte("v2"))
	clock.Advance(time.Hour)
	assert.True(t, s.Exists("k2"))
}

func TestKeysSkipsExpired(t *testing.T) {
	s, clock := newTestStore(t)

	s.Set("stay", []byte("1"))
	s.SetEx("gone", []byte("2"), time.Second)
	clock.Advance(2 * time.Second)

	assert.Equal(t, []string{"stay"}, s.Keys())
	// the sweep during Keys dropped the stale key for real
	assert.Equal(t, 1, s.keys.Len())
}

func TestFlushAll(t *testing.T) {
	s, _ := newTestStore(t)
	s.Set("a", []byte("1"))
	s.SetEx("b", []byte("2"), time.Hour)
	s.FlushAll()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Exists("a"))
}

func TestCounters(t *testing.T) {
	s, _ := newTestStore(t)
	s.Set("a", []byte("1"))
	_, _ = s.Get("a")
	_, _ = s.Get("a")
	assert.Equal(t, uint64(1), s.WriteCount.Load())
	assert.Equal(t, uint64(2), s.ReadCount.Load())
}

func TestDebugDump(t *testing.T) {
	s, _ := newTestStore(t)
	s.Set("alpha", []byte("hello"))
	s.Set("num", []byte("42"))
	for i := 0; i < 3; i++ {
		_, err := s.RPush("lst", []byte("v"))
		require.NoError(t, err)
	}

	out := s.DebugDump(DumpAll)
	assert.Contains(t, out, "keys: 3")
	assert.Contains(t, out, `alpha: string/raw = "hello"`)
	assert.Contains(t, out, "num: string/int = 42")
	assert.Contains(t, out, "lst: list/packed (3 entries)")
}
