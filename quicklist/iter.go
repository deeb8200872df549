package quicklist

import (
	"github.com/andreyvit/packd/packseq"
)

// Iterator walks the list's entries in one direction. Create a fresh
// iterator to restart. Insertion while an iterator is live is not allowed;
// DelEntry on the current entry is, and keeps the position valid.
type Iterator struct {
	list     *List
	current  *node
	pos      int // byte position, meaningful only while posValid
	posValid bool
	offset   int // entry index within current; negative counts from its tail
	forward  bool
	dirty    bool // deletions happened; re-coalesce once iteration is over
}

// Iterator returns an iterator over the whole list, from the head or from
// the tail.
func (l *List) Iterator(forward bool) *Iterator {
	it := &Iterator{list: l, forward: forward}
	if forward {
		it.current = l.head
		it.offset = 0
	} else {
		it.current = l.tail
		it.offset = -1
	}
	return it
}

// IteratorAt returns an iterator positioned so that the first Next call
// yields the element at idx.
func (l *List) IteratorAt(idx int, forward bool) (*Iterator, bool) {
	e, ok := l.Index(idx)
	if !ok {
		return nil, false
	}
	return &Iterator{
		list:    l,
		current: e.node,
		offset:  e.offset,
		forward: forward,
	}, true
}

// Next yields the next entry. The entry's byte-string value is borrowed from
// the node buffer; copy it to retain it across further mutation.
func (it *Iterator) Next() (Entry, bool) {
	for it.current != nil {
		n := it.current

		if !it.posValid {
			// first visit of this node, or the position was invalidated by
			// a deletion: re-derive it from the logical offset
			it.list.decompressForUse(n)
			if pos, ok := packseq.Index(n.buf, it.offset); ok {
				it.pos = pos
				it.posValid = true
			}
		} else {
			var pos int
			var ok bool
			if it.forward {
				pos, ok = packseq.Next(n.buf, it.pos)
			} else {
				pos, ok = packseq.Prev(n.buf, it.pos)
			}
			if ok {
				it.pos = pos
				if it.forward {
					it.offset++
				} else {
					it.offset--
				}
			} else {
				it.posValid = false
			}
		}

		if it.posValid {
			return Entry{
				Value:  packseq.Get(n.buf, it.pos),
				list:   it.list,
				node:   n,
				pos:    it.pos,
				offset: it.offset,
			}, true
		}

		// done with this node; restore its compression state and move on
		it.list.recompressOnly(n)
		if it.forward {
			it.current, it.offset = n.next, 0
		} else {
			it.current, it.offset = n.prev, -1
		}
	}
	if it.dirty {
		it.dirty = false
		it.list.mergeSweep()
	}
	return Entry{}, false
}

// DelEntry removes the entry the iterator just returned. The iterator
// advances logically: the following Next yields the element that came after
// (or before, when walking backwards) the deleted one. Merging nodes would
// invalidate the position, so undersized survivors are coalesced only once
// the iteration finishes (exhaustion or Close).
func (it *Iterator) DelEntry(e Entry) {
	n := e.node
	prev, next := n.prev, n.next
	deletedNode := it.list.delPos(n, e.pos)
	it.dirty = true

	// the byte position is dead either way; the unchanged logical offset now
	// addresses the logically-next element
	it.posValid = false
	if deletedNode {
		if it.forward {
			it.current, it.offset = next, 0
		} else {
			it.current, it.offset = prev, -1
		}
	}
}

// Close releases the iterator, restoring the compression state of the node
// it stopped on.
func (it *Iterator) Close() {
	if it.current != nil {
		it.list.compress(it.current)
		it.current = nil
	}
	if it.dirty {
		it.dirty = false
		it.list.mergeSweep()
	}
}
