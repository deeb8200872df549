package packd

import (
	"log/slog"
	"sort"
	"sync/atomic"
	"time"
)

// Defaults for Options fields left zero.
const (
	DefaultFill             = -2
	DefaultMaxPackedEntries = 128
	DefaultMaxPackedValue   = 64
)

type Options struct {
	// Fill is the per-node size policy for list chains, see quicklist.New.
	Fill int
	// CompressDepth is the number of uncompressed nodes kept at each end
	// of a list chain; 0 disables compression.
	CompressDepth int
	// MaxPackedEntries is the entry count past which a list outgrows its
	// single-buffer form and becomes a chain.
	MaxPackedEntries int
	// MaxPackedValue is the element size in bytes past which a list
	// becomes a chain.
	MaxPackedValue int

	Logger  *slog.Logger
	Verbose bool

	// Now is the clock used by expiration. Exposed for tests.
	Now func() time.Time
}

// Store is a single-writer in-memory key-value store. The caller serializes
// access; the counters alone are safe to read concurrently.
type Store struct {
	keys    *dict[*object]
	expires *dict[int64] // unix nanoseconds
	opt     Options
	logger  *slog.Logger
	now     func() time.Time
	verbose bool

	ReadCount    atomic.Uint64
	WriteCount   atomic.Uint64
	ExpiredCount atomic.Uint64
}

func New(opt Options) *Store {
	if opt.Fill == 0 {
		opt.Fill = DefaultFill
	}
	if opt.MaxPackedEntries == 0 {
		opt.MaxPackedEntries = DefaultMaxPackedEntries
	}
	if opt.MaxPackedValue == 0 {
		opt.MaxPackedValue = DefaultMaxPackedValue
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Store{
		keys:    newDict[*object](),
		expires: newDict[int64](),
		opt:     opt,
		logger:  opt.Logger,
		now:     opt.Now,
		verbose: opt.Verbose,
	}
}

// lookup returns the live object for key, deleting it first if its
// expiration deadline has passed.
func (s *Store) lookup(key string) (*object, bool) {
	obj, ok := s.keys.Get(key)
	if !ok {
		return nil, false
	}
	if deadline, hasTTL := s.expires.Get(key); hasTTL && s.now().UnixNano() >= deadline {
		s.keys.Delete(key)
		s.expires.Delete(key)
		s.ExpiredCount.Add(1)
		if s.verbose {
			s.logger.Debug("expired key dropped on access", "key", key)
		}
		return nil, false
	}
	return obj, true
}

func (s *Store) dropKey(key string) {
	s.keys.Delete(key)
	s.expires.Delete(key)
}

// Set stores a string value, replacing whatever the key held and clearing
// any expiration.
func (s *Store) Set(key string, value []byte) {
	s.WriteCount.Add(1)
	s.keys.Set(key, newStringObject(value))
	s.expires.Delete(key)
}

// SetEx stores a string value with an expiration deadline of now+ttl.
func (s *Store) SetEx(key string, value []byte, ttl time.Duration) {
	s.WriteCount.Add(1)
	s.keys.Set(key, newStringObject(value))
	s.expires.Set(key, s.now().Add(ttl).UnixNano())
}

// Get returns a copy of the string value stored at key.
func (s *Store) Get(key string) ([]byte, error) {
	s.ReadCount.Add(1)
	obj, ok := s.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	if obj.kind != KindString {
		return nil, ErrWrongType
	}
	return obj.stringBytes(), nil
}

// Del removes the given keys, returning how many existed.
func (s *Store) Del(keys ...string) int {
	s.WriteCount.Add(1)
	var n int
	for _, key := range keys {
		if _, ok := s.lookup(key); ok {
			s.dropKey(key)
			n++
		}
	}
	return n
}

func (s *Store) Exists(key string) bool {
	s.ReadCount.Add(1)
	_, ok := s.lookup(key)
	return ok
}

// Type returns the kind of the value at key.
func (s *Store) Type(key string) (Kind, bool) {
	s.ReadCount.Add(1)
	obj, ok := s.lookup(key)
	if !ok {
		return 0, false
	}
	return obj.kind, true
}

// Len returns the number of keys, counting expired-but-not-yet-dropped ones.
func (s *Store) Len() int {
	return s.keys.Len()
}

// Keys returns all live keys in sorted order.
func (s *Store) Keys() []string {
	s.ReadCount.Add(1)
	all := make([]string, 0, s.keys.Len())
	s.keys.ForEach(func(key string, _ *object) bool {
		all = append(all, key)
		return true
	})
	live := all[:0]
	for _, key := range all {
		if _, ok := s.lookup(key); ok {
			live = append(live, key)
		}
	}
	sort.Strings(live)
	return live
}

// Expire sets an expiration deadline of now+ttl on an existing key.
func (s *Store) Expire(key string, ttl time.Duration) bool {
	s.WriteCount.Add(1)
	if _, ok := s.lookup(key); !ok {
		return false
	}
	s.expires.Set(key, s.now().Add(ttl).UnixNano())
	return true
}

// TTL returns the remaining time to live of key. The second result is false
// when the key has no expiration; ErrNotFound when the key does not exist.
func (s *Store) TTL(key string) (time.Duration, bool, error) {
	s.ReadCount.Add(1)
	if _, ok := s.lookup(key); !ok {
		return 0, false, ErrNotFound
	}
	deadline, ok := s.expires.Get(key)
	if !ok {
		return 0, false, nil
	}
	return time.Duration(deadline - s.now().UnixNano()), true, nil
}

// Persist removes the expiration from key, returning whether one was set.
func (s *Store) Persist(key string) bool {
	s.WriteCount.Add(1)
	if _, ok := s.lookup(key); !ok {
		return false
	}
	return s.expires.Delete(key)
}

// FlushAll drops every key.
func (s *Store) FlushAll() {
	s.WriteCount.Add(1)
	s.keys = newDict[*object]()
	s.expires = newDict[int64]()
}
