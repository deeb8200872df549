package quicklist

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/packd/packseq"
)

func repeated(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func nodeForms(l *List) []nodeEncoding {
	var out []nodeEncoding
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.encoding)
	}
	return out
}

func TestNodeCompressRoundTrip(t *testing.T) {
	n := newNode()
	n.buf = pushAll(repeated('x', 64))
	n.count = 1
	n.updateSize()
	orig := append([]byte(nil), n.buf...)

	require.True(t, n.tryCompress())
	assert.Equal(t, encodingCompressed, n.encoding)
	assert.Less(t, len(n.buf), n.size)

	n.makePlain()
	assert.Equal(t, encodingPlain, n.encoding)
	assert.Equal(t, orig, n.buf)
}

func TestCompressDeclinesSmallNode(t *testing.T) {
	n := newNode()
	n.buf = pushAll([]byte("tiny"))
	n.count = 1
	n.updateSize()
	assert.False(t, n.tryCompress())
	assert.Equal(t, encodingPlain, n.encoding)
}

func TestCompressDeclinesIncompressible(t *testing.T) {
	// high-entropy payload: the codec cannot win the required margin
	payload := make([]byte, 200)
	state := uint32(0x9E3779B9)
	for i := range payload {
		state = state*1664525 + 1013904223
		payload[i] = byte(state >> 24)
	}
	n := newNode()
	n.buf = pushAll(payload)
	n.count = 1
	n.updateSize()
	assert.False(t, n.tryCompress())
	assert.Equal(t, encodingPlain, n.encoding)
}

func TestCompressionWindow(t *testing.T) {
	l := New(1, 2)
	const nodes = 8
	for i := 0; i < nodes; i++ {
		l.PushTail(repeated(byte('a'+i), 64))
	}
	require.Equal(t, nodes, l.Nodes())

	forms := nodeForms(l)
	for i, form := range forms {
		if i < 2 || i >= nodes-2 {
			assert.Equal(t, encodingPlain, form, "node %d inside the window", i)
		} else {
			assert.Equal(t, encodingCompressed, form, "node %d outside the window", i)
		}
	}

	// reads restore every interior value intact
	for i := 0; i < nodes; i++ {
		e, ok := l.Index(i)
		require.True(t, ok)
		assert.Equal(t, repeated(byte('a'+i), 64), e.Value.Bytes(), "node %d", i)
	}
	checkConsistent(t, l)
}

func TestCompressionBelowWindowThreshold(t *testing.T) {
	// fewer than depth*2 nodes: nothing is ever compressed
	l := New(1, 3)
	for i := 0; i < 5; i++ {
		l.PushTail(repeated(byte('a'+i), 64))
	}
	for _, form := range nodeForms(l) {
		assert.Equal(t, encodingPlain, form)
	}
}

func TestCompressionSurvivesDelRange(t *testing.T) {
	l := New(1, 1)
	const nodes = 10
	for i := 0; i < nodes; i++ {
		l.PushTail(repeated(byte('a'+i), 64))
	}
	l.DelRange(3, 4)
	assert.Equal(t, nodes-4, l.Len())
	checkConsistent(t, l)

	var want [][]byte
	for i := 0; i < nodes; i++ {
		if i < 3 || i >= 7 {
			want = append(want, repeated(byte('a'+i), 64))
		}
	}
	got := listValues(l)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, string(want[i]), got[i])
	}
}

func TestDupPreservesCompression(t *testing.T) {
	l := New(1, 1)
	for i := 0; i < 6; i++ {
		l.PushTail(repeated(byte('a'+i), 64))
	}
	d := l.Dup()
	assert.Equal(t, nodeForms(l), nodeForms(d))
	assert.Equal(t, listValues(l), listValues(d))
	checkConsistent(t, d)
}

func TestMergeCombinesNodes(t *testing.T) {
	a := New(64, 1)
	b := New(64, 1)
	for i := 0; i < 6; i++ {
		a.PushTail(repeated('p', 64))
		b.PushTail(repeated('q', 64))
	}
	m := Merge(a, b)
	assert.Equal(t, 12, m.Len())
	checkConsistent(t, m)
	for i := 0; i < 12; i++ {
		e, ok := m.Index(i)
		require.True(t, ok)
		want := byte('p')
		if i >= 6 {
			want = 'q'
		}
		assert.Equal(t, repeated(want, 64), e.Value.Bytes())
	}
	assert.Equal(t, 1, m.Nodes())
}

func pushAll(values ...[]byte) []byte {
	pq := packseq.New()
	for _, v := range values {
		pq = packseq.Push(pq, v, false)
	}
	return pq
}

func TestPackedRoundTrip(t *testing.T) {
	l := New(3, 0)
	var want []string
	for i := 0; i < 10; i++ {
		v := fmt.Sprintf("val-%d", i)
		l.PushTail([]byte(v))
		want = append(want, v)
	}

	flat := l.Packed()
	back, err := FromPacked(3, 0, flat)
	require.NoError(t, err)
	assert.Equal(t, want, listValues(back))
	assert.Equal(t, l.Nodes(), back.Nodes())
	checkConsistent(t, back)
}

func TestFromPackedRejectsCorrupt(t *testing.T) {
	flat := pushAll([]byte("a"), []byte("b"))
	flat[len(flat)-1] = 0x00
	_, err := FromPacked(3, 0, flat)
	assert.Error(t, err)
}

func TestAppendPacked(t *testing.T) {
	l := New(3, 0)
	require.NoError(t, l.AppendPacked(pushAll([]byte("a"), []byte("b"))))
	require.NoError(t, l.AppendPacked(pushAll([]byte("c"))))
	require.NoError(t, l.AppendPacked(packseq.New())) // empty buffers are skipped
	assert.Equal(t, []string{"a", "b", "c"}, listValues(l))
	assert.Equal(t, 2, l.Nodes())
	checkConsistent(t, l)

	bad := pushAll([]byte("x"))
	bad[0] = 0xEE
	assert.Error(t, l.AppendPacked(bad))
}

func TestNodeBuffers(t *testing.T) {
	l := New(1, 1)
	for i := 0; i < 6; i++ {
		l.PushTail(repeated(byte('a'+i), 64))
	}
	formsBefore := nodeForms(l)

	bufs := l.NodeBuffers()
	require.Len(t, bufs, 6)
	assert.Equal(t, formsBefore, nodeForms(l), "NodeBuffers must not disturb compression state")

	back := New(1, 1)
	for _, b := range bufs {
		require.NoError(t, back.AppendPacked(b))
	}
	assert.Equal(t, listValues(l), listValues(back))
}
