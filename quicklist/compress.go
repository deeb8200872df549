package quicklist

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

const (
	// buffers below this size are not worth the codec call
	minCompressBytes = 48
	// keep the compressed form only if it wins at least this many bytes
	minCompressImprove = 8
)

// tryCompress attempts to convert the node to its compressed form. Declining
// to compress (too small, or the codec failed to win enough) is a normal
// outcome, not an error.
func (n *node) tryCompress() bool {
	if n.encoding != encodingPlain {
		return false
	}
	if n.size < minCompressBytes {
		return false
	}
	comp := s2.Encode(nil, n.buf)
	if len(comp) >= n.size-minCompressImprove {
		return false
	}
	n.buf = comp
	n.encoding = encodingCompressed
	n.recompress = false
	return true
}

// makePlain restores the plain form and clears the recompress flag.
func (n *node) makePlain() {
	if n.encoding != encodingCompressed {
		return
	}
	plain, err := s2.Decode(make([]byte, n.size), n.buf)
	if err != nil || len(plain) != n.size {
		panic(fmt.Errorf("quicklist: corrupt compressed node (%d bytes, want %d): %v", len(plain), n.size, err))
	}
	n.buf = plain
	n.encoding = encodingPlain
	n.recompress = false
}

// plainCopy returns the node's packed sequence as a fresh buffer, without
// changing the node's form.
func (n *node) plainCopy() []byte {
	if n.encoding == encodingCompressed {
		plain, err := s2.Decode(make([]byte, n.size), n.buf)
		if err != nil || len(plain) != n.size {
			panic(fmt.Errorf("quicklist: corrupt compressed node (%d bytes, want %d): %v", len(plain), n.size, err))
		}
		return plain
	}
	return append([]byte(nil), n.buf...)
}

// decompressForUse makes a node mutable and marks it for the cheap
// re-compression path, so a multi-step operation does not bounce the node
// through the codec at every step.
func (l *List) decompressForUse(n *node) {
	if n != nil && n.encoding == encodingCompressed {
		n.makePlain()
		n.recompress = true
	}
}

// borrowForUse decompresses a node for a multi-step mutation and returns a
// release func that restores its compression state exactly once, even on
// early-return paths.
func (l *List) borrowForUse(n *node) func() {
	l.decompressForUse(n)
	released := false
	return func() {
		if released {
			return
		}
		released = true
		l.recompressOnly(n)
	}
}

// recompressOnly undoes a decompressForUse without re-running the window
// walk.
func (l *List) recompressOnly(n *node) {
	if n != nil && n.recompress {
		n.tryCompress()
	}
}

// compress re-compresses a node after an operation: the cheap path when the
// node was merely borrowed, the full window walk otherwise.
func (l *List) compress(n *node) {
	if n != nil && n.recompress {
		n.tryCompress()
		return
	}
	l.compressWindow(n)
}

// compressWindow restores the compression invariant around a just-touched
// node (which may be nil): the depth nodes nearest each end stay plain,
// everything interior gets compressed. The walk decompresses every node it
// visits, since a previously interior node may have drifted inside the
// window.
func (l *List) compressWindow(n *node) {
	if l.depth == 0 || l.nodes < l.depth*2 {
		return
	}

	forward, reverse := l.head, l.tail
	inDepth := false
	for depth := 0; depth < l.depth; depth++ {
		forward.makePlain()
		reverse.makePlain()
		if forward == n || reverse == n {
			inDepth = true
		}
		if forward == reverse || forward.next == reverse {
			return
		}
		forward = forward.next
		reverse = reverse.prev
	}

	if !inDepth && n != nil {
		n.tryCompress()
	}
	// forward and reverse sit one node past the window on each side
	forward.tryCompress()
	reverse.tryCompress()
}
