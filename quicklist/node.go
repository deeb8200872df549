package quicklist

import (
	"github.com/andreyvit/packd/packseq"
)

const (
	// a node never grows past this many bytes, whatever the fill policy says,
	// unless it holds exactly one oversized entry
	sizeSafetyLimit = 8192

	fillMax  = 32768
	depthMax = 65536

	// merging two buffers saves one packed-sequence header
	mergeHeaderOverhead = 11
)

// byte-size ceilings selected by fill values -1..-5
var optLevel = [...]int{4096, 8192, 16384, 32768, 65536}

type nodeEncoding uint8

const (
	encodingPlain nodeEncoding = iota + 1
	encodingCompressed
)

type containerKind uint8

const (
	// containerPacked nodes hold a packed sequence. A kind for single large
	// values kept outside any packed buffer is reserved but not implemented.
	containerPacked containerKind = iota + 2
)

type node struct {
	prev, next *node
	buf        []byte // packed sequence when plain, s2 blob when compressed
	size       int    // uncompressed byte size, mirrors the packed header
	count      int    // entries in this node
	encoding   nodeEncoding
	container  containerKind
	recompress bool // decompressed for use; compress again once released
}

func newNode() *node {
	return &node{encoding: encodingPlain, container: containerPacked}
}

func (n *node) updateSize() {
	n.size = packseq.BlobLen(n.buf)
}

func sizeMeetsOptimization(sz, fill int) bool {
	if fill >= 0 {
		return false
	}
	idx := -fill - 1
	if idx < len(optLevel) {
		return sz <= optLevel[idx]
	}
	return false
}

// allowInsert reports whether the fill policy lets a payload of sz bytes be
// spliced into n.
func (l *List) allowInsert(n *node, sz int) bool {
	if n == nil {
		return false
	}
	newSz := n.size + packseq.ProjectedEntrySize(sz)
	if sizeMeetsOptimization(newSz, l.fill) {
		return true
	}
	if newSz > sizeSafetyLimit {
		return false
	}
	return n.count < l.fill
}

// allowMerge reports whether a and b combined would still satisfy the fill
// policy.
func (l *List) allowMerge(a, b *node) bool {
	if a == nil || b == nil {
		return false
	}
	mergeSz := a.size + b.size - mergeHeaderOverhead
	if sizeMeetsOptimization(mergeSz, l.fill) {
		return true
	}
	if mergeSz > sizeSafetyLimit {
		return false
	}
	return a.count+b.count <= l.fill
}

// insertNode links nn into the chain before or after old. A nil old is only
// valid on an empty list.
func (l *List) insertNode(old, nn *node, after bool) {
	if after {
		nn.prev = old
		if old != nil {
			nn.next = old.next
			if old.next != nil {
				old.next.prev = nn
			}
			old.next = nn
		}
		if l.tail == old {
			l.tail = nn
		}
	} else {
		nn.next = old
		if old != nil {
			nn.prev = old.prev
			if old.prev != nil {
				old.prev.next = nn
			}
			old.prev = nn
		}
		if l.head == old {
			l.head = nn
		}
	}
	if l.head == nil {
		l.head = nn
	}
	if l.tail == nil {
		l.tail = nn
	}
	l.nodes++
	if old != nil {
		l.compress(old)
	}
}

// delNode unlinks n and repairs the compression window, which shifts when a
// node disappears.
func (l *List) delNode(n *node) {
	if n.next != nil {
		n.next.prev = n.prev
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n == l.tail {
		l.tail = n.prev
	}
	if n == l.head {
		l.head = n.next
	}
	l.nodes--
	l.count -= n.count
	n.prev, n.next = nil, nil
	l.compressWindow(nil)
}

// delPos removes the entry at byte position pos in n, dropping the node once
// it is empty. Reports whether the node itself was deleted.
func (l *List) delPos(n *node, pos int) bool {
	n.buf = packseq.Delete(n.buf, pos)
	n.count--
	deleted := false
	if n.count == 0 {
		l.delNode(n)
		deleted = true
	} else {
		n.updateSize()
	}
	l.count--
	return deleted
}

// splitNode splits n at the given entry offset. With after set, n keeps
// entries [0..offset] and the new node receives (offset..end]; otherwise n
// keeps [offset..end) and the new node receives [0..offset). The new node's
// buffer starts as a full copy of the donor's and is trimmed down, trading
// a transient over-allocation for one code path.
func (l *List) splitNode(n *node, offset int, after bool) *node {
	nn := newNode()
	nn.buf = append(make([]byte, 0, len(n.buf)), n.buf...)

	if after {
		n.buf = packseq.DeleteRange(n.buf, offset+1, -1)
		nn.buf = packseq.DeleteRange(nn.buf, 0, offset+1)
	} else {
		n.buf = packseq.DeleteRange(n.buf, 0, offset)
		nn.buf = packseq.DeleteRange(nn.buf, offset, -1)
	}
	n.count = packseq.Len(n.buf)
	n.updateSize()
	nn.count = packseq.Len(nn.buf)
	nn.updateSize()
	return nn
}

// mergePair folds b's entries into a and frees b. Both input handles are
// dead afterwards; only the returned node remains valid.
func (l *List) mergePair(a, b *node) *node {
	a.makePlain()
	b.makePlain()
	a.buf = packseq.Merge(a.buf, b.buf)
	a.count = packseq.Len(a.buf)
	a.updateSize()
	b.count = 0
	l.delNode(b)
	l.compress(a)
	return a
}

// mergeNodes coalesces eligible pairs around center, in a fixed order, until
// the neighborhood is merge-maximal again.
func (l *List) mergeNodes(center *node) {
	prev, next := center.prev, center.next
	var prevPrev, nextNext *node
	if prev != nil {
		prevPrev = prev.prev
	}
	if next != nil {
		nextNext = next.next
	}

	if l.allowMerge(prevPrev, prev) {
		l.mergePair(prevPrev, prev)
		prevPrev, prev = nil, nil
	}
	if l.allowMerge(next, nextNext) {
		l.mergePair(next, nextNext)
		next, nextNext = nil, nil
	}

	target := center
	if l.allowMerge(center.prev, center) {
		target = l.mergePair(center.prev, center)
	}
	if l.allowMerge(target, target.next) {
		l.mergePair(target, target.next)
	}
}

// mergeSweep walks the whole chain coalescing adjacent eligible pairs.
// Iterator-driven deletions shrink nodes at arbitrary points, so the local
// repair around one center is not enough there.
func (l *List) mergeSweep() {
	n := l.head
	for n != nil && n.next != nil {
		if l.allowMerge(n, n.next) {
			n = l.mergePair(n, n.next)
		} else {
			n = n.next
		}
	}
}
