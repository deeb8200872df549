package quicklist

import (
	"fmt"
	"strings"
)

// DebugString renders the chain structure, one node per line.
func (l *List) DebugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "list: count=%d nodes=%d fill=%d depth=%d\n", l.count, l.nodes, l.fill, l.depth)
	i := 0
	for n := l.head; n != nil; n = n.next {
		form := "plain"
		if n.encoding == encodingCompressed {
			form = fmt.Sprintf("compressed(%d)", len(n.buf))
		}
		fmt.Fprintf(&buf, "  node %d: count=%d size=%d %s\n", i, n.count, n.size, form)
		i++
	}
	return buf.String()
}
