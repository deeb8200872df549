package packd

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type DumpFlags uint64

const (
	DumpValues = DumpFlags(1 << iota)
	DumpExpiry
	DumpListNodes

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// DebugDump renders the keyspace as text, for tests and debugging. Keys are
// sorted so the output is deterministic.
func (s *Store) DebugDump(f DumpFlags) string {
	var buf strings.Builder
	fmt.Fprintln(&buf, dumpSep1)
	fmt.Fprintf(&buf, "keys: %d\n", s.keys.Len())

	keys := make([]string, 0, s.keys.Len())
	s.keys.ForEach(func(key string, _ *object) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)

	for i, key := range keys {
		obj, _ := s.keys.Get(key)
		if obj == nil {
			continue
		}
		if i > 0 && f.Contains(DumpListNodes) {
			fmt.Fprintln(&buf, dumpSep2)
		}
		s.dumpKey(&buf, f, key, obj)
	}
	return buf.String()
}

func (s *Store) dumpKey(w *strings.Builder, f DumpFlags, key string, obj *object) {
	fmt.Fprintf(w, "%s: %v/%v", key, obj.kind, obj.enc)
	if f.Contains(DumpExpiry) {
		if deadline, ok := s.expires.Get(key); ok {
			fmt.Fprintf(w, " ttl=%v", time.Duration(deadline-s.now().UnixNano()))
		}
	}
	if f.Contains(DumpValues) {
		switch obj.enc {
		case encRaw:
			fmt.Fprintf(w, " = %q", obj.raw)
		case encInt:
			fmt.Fprintf(w, " = %d", obj.num)
		case encPacked, encChain:
			fmt.Fprintf(w, " (%d entries)", obj.listLen())
		}
	}
	w.WriteByte('\n')
	if obj.enc == encChain && f.Contains(DumpListNodes) {
		w.WriteString(obj.list.DebugString())
	}
}
