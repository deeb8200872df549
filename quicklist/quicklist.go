package quicklist

import (
	"strconv"

	"github.com/andreyvit/packd/packseq"
)

// List is a chain of packed-sequence nodes acting as one logical list.
type List struct {
	head, tail *node
	count      int // entries across all nodes
	nodes      int
	fill       int
	depth      int
}

// New returns an empty list. A positive fill bounds nodes by entry count
// (clamped to 1..32768); fill values -1..-5 select a byte-size ceiling from
// {4096, 8192, 16384, 32768, 65536}. depth is the number of nodes kept
// uncompressed at each end of the chain; 0 disables compression.
func New(fill, depth int) *List {
	if fill > fillMax {
		fill = fillMax
	} else if fill == 0 {
		fill = 1
	} else if fill < -len(optLevel) {
		fill = -len(optLevel)
	}
	if depth > depthMax {
		depth = depthMax
	} else if depth < 0 {
		depth = 0
	}
	return &List{fill: fill, depth: depth}
}

// Len returns the total number of entries.
func (l *List) Len() int { return l.count }

// Nodes returns the number of chain nodes.
func (l *List) Nodes() int { return l.nodes }

func (l *List) Fill() int  { return l.fill }
func (l *List) Depth() int { return l.depth }

// Entry addresses one element, as produced by Index or an iterator. It stays
// valid until the next mutation of the list; the Value's byte string is
// borrowed from the node's buffer.
type Entry struct {
	Value  packseq.Payload
	list   *List
	node   *node
	pos    int // byte position within the node's packed sequence
	offset int // entry index within the node; negative counts from its tail
}

// PushHead prepends value, reporting whether a new node had to be created.
func (l *List) PushHead(value []byte) bool {
	origHead := l.head
	if l.allowInsert(l.head, len(value)) {
		l.head.buf = packseq.Push(l.head.buf, value, true)
		l.head.updateSize()
	} else {
		n := newNode()
		n.buf = packseq.Push(packseq.New(), value, true)
		n.updateSize()
		l.insertNode(l.head, n, false)
	}
	l.count++
	l.head.count++
	return origHead != l.head
}

// PushTail appends value, reporting whether a new node had to be created.
func (l *List) PushTail(value []byte) bool {
	origTail := l.tail
	if l.allowInsert(l.tail, len(value)) {
		l.tail.buf = packseq.Push(l.tail.buf, value, false)
		l.tail.updateSize()
	} else {
		n := newNode()
		n.buf = packseq.Push(packseq.New(), value, false)
		n.updateSize()
		l.insertNode(l.tail, n, true)
	}
	l.count++
	l.tail.count++
	return origTail != l.tail
}

// PopHead removes and returns the first element.
func (l *List) PopHead() (packseq.Payload, bool) { return l.pop(true) }

// PopTail removes and returns the last element.
func (l *List) PopTail() (packseq.Payload, bool) { return l.pop(false) }

func (l *List) pop(head bool) (packseq.Payload, bool) {
	if l.count == 0 {
		return packseq.Payload{}, false
	}
	n, idx := l.head, 0
	if !head {
		n, idx = l.tail, -1
	}
	l.decompressForUse(n)
	pos, ok := packseq.Index(n.buf, idx)
	if !ok {
		panic("quicklist: node count out of sync with packed sequence")
	}
	v := packseq.Get(n.buf, pos).Copy() // the delete below releases the storage
	if !l.delPos(n, pos) {
		l.mergeNodes(n)
	}
	return v, true
}

// Index locates the element with the given index, negative values counting
// from the tail. The node walk skips whole nodes by their entry counts.
func (l *List) Index(idx int) (Entry, bool) {
	e := Entry{list: l}
	forward := idx >= 0
	index := idx
	if !forward {
		index = -idx - 1
	}

	var n *node
	if forward {
		n = l.head
	} else {
		n = l.tail
	}
	accum := 0
	for n != nil {
		if accum+n.count > index {
			break
		}
		accum += n.count
		if forward {
			n = n.next
		} else {
			n = n.prev
		}
	}
	if n == nil {
		return e, false
	}

	e.node = n
	if forward {
		e.offset = index - accum
	} else {
		e.offset = -index - 1 + accum
	}
	l.decompressForUse(n)
	pos, ok := packseq.Index(n.buf, e.offset)
	if !ok {
		panic("quicklist: node count out of sync with packed sequence")
	}
	e.pos = pos
	e.Value = packseq.Get(n.buf, pos)
	return e, true
}

// InsertBefore splices value in immediately before the anchor entry.
func (l *List) InsertBefore(e Entry, value []byte) { l.insert(e, value, false) }

// InsertAfter splices value in immediately after the anchor entry.
func (l *List) InsertAfter(e Entry, value []byte) { l.insert(e, value, true) }

func (l *List) insert(e Entry, value []byte, after bool) {
	if e.node == nil {
		// no anchor: only possible on an empty list
		n := newNode()
		n.buf = packseq.Push(packseq.New(), value, true)
		n.count = 1
		n.updateSize()
		l.insertNode(nil, n, after)
		l.count++
		return
	}

	n := e.node
	off := e.offset
	if off < 0 {
		off += n.count
	}
	full := !l.allowInsert(n, len(value))
	atTail := after && off == n.count-1
	atHead := !after && off == 0
	fullNext := atTail && !l.allowInsert(n.next, len(value))
	fullPrev := atHead && !l.allowInsert(n.prev, len(value))

	switch {
	case !full && after:
		release := l.borrowForUse(n)
		if next, ok := packseq.Next(n.buf, e.pos); ok {
			n.buf = packseq.Insert(n.buf, next, value)
		} else {
			n.buf = packseq.Push(n.buf, value, false)
		}
		n.count++
		n.updateSize()
		release()

	case !full && !after:
		release := l.borrowForUse(n)
		n.buf = packseq.Insert(n.buf, e.pos, value)
		n.count++
		n.updateSize()
		release()

	case full && atTail && n.next != nil && !fullNext:
		// no room here, but the next node's head can take it
		nn := n.next
		release := l.borrowForUse(nn)
		nn.buf = packseq.Push(nn.buf, value, true)
		nn.count++
		nn.updateSize()
		release()

	case full && atHead && n.prev != nil && !fullPrev:
		pn := n.prev
		release := l.borrowForUse(pn)
		pn.buf = packseq.Push(pn.buf, value, false)
		pn.count++
		pn.updateSize()
		release()

	case full && ((atTail && n.next != nil && fullNext) || (atHead && n.prev != nil && fullPrev)):
		// both this node and the relevant neighbor are full: a fresh node
		// holding just this entry goes in between
		nn := newNode()
		nn.buf = packseq.Push(packseq.New(), value, true)
		nn.count = 1
		nn.updateSize()
		l.insertNode(n, nn, after)

	default:
		// full, mid-node (or full at an edge of the chain): split, place the
		// entry in the proper half, then re-coalesce what the split left
		// undersized
		l.decompressForUse(n)
		nn := l.splitNode(n, off, after)
		nn.buf = packseq.Push(nn.buf, value, after)
		nn.count++
		nn.updateSize()
		l.insertNode(n, nn, after)
		l.mergeNodes(n)
	}
	l.count++
}

// DelRange removes count entries starting at index start (negative counts
// from the tail), returning how many entries were actually removed.
func (l *List) DelRange(start, count int) int {
	if count <= 0 {
		return 0
	}
	extent := count
	if start >= 0 && extent > l.count-start {
		extent = l.count - start
	} else if start < 0 && extent > -start {
		extent = -start
	}
	if extent <= 0 {
		return 0
	}

	e, ok := l.Index(start)
	if !ok {
		return 0
	}

	total := extent
	n := e.node
	off := e.offset
	before := n.prev
	var partial *node
	for extent > 0 && n != nil {
		next := n.next

		var del int
		wholeNode := false
		switch {
		case off == 0 && extent >= n.count:
			wholeNode = true
			del = n.count
		case off >= 0 && extent+off >= n.count:
			del = n.count - off
		case off < 0:
			del = -off
			if del > extent {
				del = extent
			}
		default:
			del = extent
		}
		extent -= del

		if wholeNode {
			l.delNode(n) // adjusts the list count by the node's entries
		} else {
			release := l.borrowForUse(n)
			n.buf = packseq.DeleteRange(n.buf, off, del)
			n.updateSize()
			n.count -= del
			l.count -= del
			if n.count == 0 {
				l.delNode(n)
			} else {
				release()
				partial = n
			}
		}

		off = 0
		n = next
	}

	// a shrunken boundary node, or the pair left adjacent across the gap,
	// may now satisfy the merge predicate
	if partial != nil {
		l.mergeNodes(partial)
	} else if before != nil {
		l.mergeNodes(before)
	}
	return total
}

// ReplaceAtIndex swaps the element at idx for value. It fails only when idx
// is out of range.
func (l *List) ReplaceAtIndex(idx int, value []byte) bool {
	e, ok := l.Index(idx)
	if !ok {
		return false
	}
	n := e.node
	n.buf = packseq.Delete(n.buf, e.pos)
	n.buf = packseq.Insert(n.buf, e.pos, value)
	n.updateSize()
	l.recompressOnly(n)
	l.mergeNodes(n) // a smaller replacement can make the node merge-eligible
	return true
}

// Rotate moves the tail element to the head.
func (l *List) Rotate() {
	if l.count <= 1 {
		return
	}

	e, _ := l.Index(-1)
	var v []byte
	if e.Value.IsInt() {
		v = strconv.AppendInt(nil, e.Value.Int(), 10)
	} else {
		// copy: the push below may reallocate the very buffer it aliases
		v = append([]byte(nil), e.Value.Bytes()...)
	}
	l.PushHead(v)

	// the push may have shifted offsets within a single shared node
	e, _ = l.Index(-1)
	if !l.delPos(e.node, e.pos) {
		l.mergeNodes(e.node)
	}
}

// Dup returns a deep copy. The source is never mutated, and nodes keep their
// compression state.
func (l *List) Dup() *List {
	out := New(l.fill, l.depth)
	for n := l.head; n != nil; n = n.next {
		nn := newNode()
		nn.buf = append([]byte(nil), n.buf...)
		nn.size = n.size
		nn.count = n.count
		nn.encoding = n.encoding
		nn.container = n.container

		nn.prev = out.tail
		if out.tail != nil {
			out.tail.next = nn
		} else {
			out.head = nn
		}
		out.tail = nn
		out.nodes++
	}
	out.count = l.count
	return out
}

// Merge appends src's elements after dst's and returns the surviving list.
// Both input handles are consumed; callers must use only the result.
func Merge(dst, src *List) *List {
	if dst == nil {
		return src
	}
	if src == nil {
		return dst
	}
	if src.count == 0 {
		src.invalidate()
		return dst
	}
	if dst.count == 0 {
		dst.head, dst.tail = src.head, src.tail
		dst.count, dst.nodes = src.count, src.nodes
		src.invalidate()
		dst.compressWindow(nil)
		return dst
	}

	seam := dst.tail
	dst.tail.next = src.head
	src.head.prev = dst.tail
	dst.tail = src.tail
	dst.nodes += src.nodes
	dst.count += src.count
	src.invalidate()

	dst.mergeNodes(seam)
	dst.compressWindow(nil)
	return dst
}

func (l *List) invalidate() {
	l.head, l.tail = nil, nil
	l.count, l.nodes = 0, 0
}

// FromPacked builds a list from a single externally produced packed-sequence
// buffer, the legacy one-buffer form of a small list. The buffer is validated
// and its values re-packed under the list's fill policy.
func FromPacked(fill, depth int, pq []byte) (*List, error) {
	if err := packseq.Validate(pq); err != nil {
		return nil, err
	}
	l := New(fill, depth)
	var scratch []byte
	pos, ok := packseq.Index(pq, 0)
	for ok {
		scratch = packseq.Get(pq, pos).Append(scratch[:0])
		l.PushTail(scratch)
		pos, ok = packseq.Next(pq, pos)
	}
	return l, nil
}

// AppendPacked links a whole packed buffer as a new tail node, bypassing the
// fill policy. Used when reassembling a list from per-node buffers; the
// buffer is validated and ownership transfers to the list.
func (l *List) AppendPacked(pq []byte) error {
	if err := packseq.Validate(pq); err != nil {
		return err
	}
	count := packseq.Len(pq)
	if count == 0 {
		return nil
	}
	n := newNode()
	n.buf = pq
	n.count = count
	n.updateSize()
	l.insertNode(l.tail, n, true)
	l.count += count
	return nil
}

// Packed flattens the whole list into one packed-sequence buffer.
func (l *List) Packed() []byte {
	out := packseq.New()
	var scratch []byte
	it := l.Iterator(true)
	defer it.Close()
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		scratch = e.Value.Append(scratch[:0])
		out = packseq.Push(out, scratch, false)
	}
	return out
}

// NodeBuffers returns a copy of every node's plain packed sequence, head to
// tail, leaving compression state untouched.
func (l *List) NodeBuffers() [][]byte {
	out := make([][]byte, 0, l.nodes)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.plainCopy())
	}
	return out
}
