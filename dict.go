package packd

import (
	"github.com/cespare/xxhash/v2"
)

const dictInitialSize = 4

// dict is a chained hash table with incremental rehashing. It keeps up to two
// bucket arrays; while a rehash is in progress every operation migrates one
// bucket from tables[0] to tables[1], so no single call pays for the whole
// move. Bucket counts are powers of two.
type dict[V any] struct {
	tables    [2][]*dictEntry[V]
	used      [2]int
	rehashIdx int // next bucket of tables[0] to migrate, -1 when not rehashing
}

type dictEntry[V any] struct {
	key  string
	val  V
	next *dictEntry[V]
}

func newDict[V any]() *dict[V] {
	return &dict[V]{rehashIdx: -1}
}

func dictHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

func (d *dict[V]) Len() int {
	return d.used[0] + d.used[1]
}

func (d *dict[V]) rehashing() bool {
	return d.rehashIdx >= 0
}

// rehashStep migrates up to n non-empty buckets, visiting at most 10*n empty
// ones so a sparse table cannot turn one step into a full scan.
func (d *dict[V]) rehashStep(n int) {
	if !d.rehashing() {
		return
	}
	emptyVisits := n * 10
	for n > 0 && d.rehashIdx < len(d.tables[0]) {
		e := d.tables[0][d.rehashIdx]
		if e == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return
			}
			continue
		}
		mask := uint64(len(d.tables[1]) - 1)
		for e != nil {
			next := e.next
			idx := dictHash(e.key) & mask
			e.next = d.tables[1][idx]
			d.tables[1][idx] = e
			d.used[0]--
			d.used[1]++
			e = next
		}
		d.tables[0][d.rehashIdx] = nil
		d.rehashIdx++
		n--
	}
	if d.rehashIdx >= len(d.tables[0]) {
		d.tables[0] = d.tables[1]
		d.used[0] = d.used[1]
		d.tables[1] = nil
		d.used[1] = 0
		d.rehashIdx = -1
	}
}

func (d *dict[V]) expandIfNeeded() {
	if d.rehashing() {
		return
	}
	if d.tables[0] == nil {
		d.tables[0] = make([]*dictEntry[V], dictInitialSize)
		return
	}
	if d.used[0] >= len(d.tables[0]) {
		d.tables[1] = make([]*dictEntry[V], len(d.tables[0])*2)
		d.rehashIdx = 0
	}
}

func (d *dict[V]) Set(key string, val V) {
	d.rehashStep(1)
	d.expandIfNeeded()
	h := dictHash(key)

	last := 0
	if d.rehashing() {
		last = 1
	}
	for t := 0; t <= last; t++ {
		idx := h & uint64(len(d.tables[t])-1)
		for e := d.tables[t][idx]; e != nil; e = e.next {
			if e.key == key {
				e.val = val
				return
			}
		}
	}

	// during a rehash new keys go to the new table so the old one only drains
	idx := h & uint64(len(d.tables[last])-1)
	d.tables[last][idx] = &dictEntry[V]{key: key, val: val, next: d.tables[last][idx]}
	d.used[last]++
}

func (d *dict[V]) Get(key string) (V, bool) {
	var zero V
	if d.Len() == 0 {
		return zero, false
	}
	d.rehashStep(1)
	h := dictHash(key)
	for t := 0; t < 2; t++ {
		if len(d.tables[t]) == 0 {
			break
		}
		idx := h & uint64(len(d.tables[t])-1)
		for e := d.tables[t][idx]; e != nil; e = e.next {
			if e.key == key {
				return e.val, true
			}
		}
		if !d.rehashing() {
			break
		}
	}
	return zero, false
}

func (d *dict[V]) Delete(key string) bool {
	if d.Len() == 0 {
		return false
	}
	d.rehashStep(1)
	h := dictHash(key)
	for t := 0; t < 2; t++ {
		if len(d.tables[t]) == 0 {
			break
		}
		idx := h & uint64(len(d.tables[t])-1)
		var prev *dictEntry[V]
		for e := d.tables[t][idx]; e != nil; e = e.next {
			if e.key == key {
				if prev == nil {
					d.tables[t][idx] = e.next
				} else {
					prev.next = e.next
				}
				d.used[t]--
				return true
			}
			prev = e
		}
		if !d.rehashing() {
			break
		}
	}
	return false
}

// ForEach visits every entry; fn returning false stops the walk. The dict
// must not be modified during the walk.
func (d *dict[V]) ForEach(fn func(key string, val V) bool) {
	for t := 0; t < 2; t++ {
		for _, e := range d.tables[t] {
			for ; e != nil; e = e.next {
				if !fn(e.key, e.val) {
					return
				}
			}
		}
	}
}
