package quicklist

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorForward(t *testing.T) {
	l := New(3, 0)
	var want []string
	for i := 0; i < 11; i++ {
		v := strconv.Itoa(i * 7)
		l.PushTail([]byte(v))
		want = append(want, v)
	}
	assert.Equal(t, want, listValues(l))
}

func TestIteratorBackward(t *testing.T) {
	l := New(3, 0)
	for i := 0; i < 11; i++ {
		l.PushTail([]byte(strconv.Itoa(i)))
	}
	it := l.Iterator(false)
	defer it.Close()
	var got []string
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		got = append(got, e.Value.String())
	}
	require.Len(t, got, 11)
	for i, v := range got {
		assert.Equal(t, strconv.Itoa(10-i), v)
	}
}

func TestIteratorAt(t *testing.T) {
	l := New(3, 0)
	for i := 0; i < 10; i++ {
		l.PushTail([]byte(strconv.Itoa(i)))
	}

	it, ok := l.IteratorAt(4, true)
	require.True(t, ok)
	e, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "4", e.Value.String())
	e, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, "5", e.Value.String())
	it.Close()

	it, ok = l.IteratorAt(-2, false)
	require.True(t, ok)
	e, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, "8", e.Value.String())
	e, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, "7", e.Value.String())
	it.Close()

	_, ok = l.IteratorAt(10, true)
	assert.False(t, ok)
}

func TestIteratorDelEntryForward(t *testing.T) {
	l := New(3, 0)
	for _, v := range []string{"keep", "drop", "drop", "keep", "drop", "keep", "drop"} {
		l.PushTail([]byte(v))
	}

	it := l.Iterator(true)
	removed := 0
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		if e.Value.String() == "drop" {
			it.DelEntry(e)
			removed++
		}
	}
	it.Close()

	assert.Equal(t, 4, removed)
	assert.Equal(t, []string{"keep", "keep", "keep"}, listValues(l))
	// the end of the walk re-coalesces the nodes the deletions left undersized
	assert.Equal(t, 1, l.Nodes())
	checkConsistent(t, l)
	checkMergeMaximal(t, l)
}

func TestIteratorDelEntryBackward(t *testing.T) {
	l := New(3, 0)
	for _, v := range []string{"drop", "keep", "drop", "keep", "drop"} {
		l.PushTail([]byte(v))
	}

	it := l.Iterator(false)
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		if e.Value.String() == "drop" {
			it.DelEntry(e)
		}
	}
	it.Close()

	assert.Equal(t, []string{"keep", "keep"}, listValues(l))
	assert.Equal(t, 1, l.Nodes())
	checkConsistent(t, l)
	checkMergeMaximal(t, l)
}

func TestIteratorDelEverything(t *testing.T) {
	l := New(2, 0)
	for i := 0; i < 9; i++ {
		l.PushTail([]byte(strconv.Itoa(i)))
	}

	it := l.Iterator(true)
	for e, ok := it.Next(); ok; e, ok = it.Next() {
		it.DelEntry(e)
	}
	it.Close()

	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.Nodes())
}

func TestIteratorAcrossCompressedNodes(t *testing.T) {
	l := New(1, 1)
	var want []string
	for i := 0; i < 7; i++ {
		v := string(repeated(byte('a'+i), 64))
		l.PushTail([]byte(v))
		want = append(want, v)
	}
	assert.Equal(t, want, listValues(l))

	// interior nodes are back in compressed form once the walk passes them
	interiorCompressed := 0
	for n := l.head.next; n != nil && n != l.tail; n = n.next {
		if n.encoding == encodingCompressed {
			interiorCompressed++
		}
	}
	assert.Greater(t, interiorCompressed, 0)
}
