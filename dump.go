package packd

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/andreyvit/packd/packseq"
	"github.com/andreyvit/packd/quicklist"
)

// dumpValue is the msgpack wire form of one stored value.
type dumpValue struct {
	Kind  uint8    `msgpack:"k"`
	Enc   uint8    `msgpack:"e"`
	Raw   []byte   `msgpack:"r,omitempty"`
	Num   int64    `msgpack:"n,omitempty"`
	Fill  int      `msgpack:"f,omitempty"`
	Depth int      `msgpack:"d,omitempty"`
	Nodes [][]byte `msgpack:"b,omitempty"`
}

var dumpBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 4096)
	},
}

type bytesBuilder struct {
	Buf []byte
}

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	bb.Buf = append(bb.Buf, b...)
	return len(b), nil
}

// Dump serializes the value at key into a self-contained payload that
// Restore accepts. The returned slice is freshly allocated.
func (s *Store) Dump(key string) ([]byte, error) {
	s.ReadCount.Add(1)
	obj, ok := s.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}

	dv := dumpValue{Kind: uint8(obj.kind), Enc: uint8(obj.enc)}
	switch obj.enc {
	case encRaw:
		dv.Raw = obj.raw
	case encInt:
		dv.Num = obj.num
	case encPacked:
		dv.Nodes = [][]byte{obj.packed}
	case encChain:
		dv.Fill = obj.list.Fill()
		dv.Depth = obj.list.Depth()
		dv.Nodes = obj.list.NodeBuffers()
	}

	bb := bytesBuilder{dumpBytesPool.Get().([]byte)}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	err := enc.Encode(&dv)
	msgpack.PutEncoder(enc)
	if err != nil {
		dumpBytesPool.Put(bb.Buf[:0])
		return nil, keyErr(key, fmt.Errorf("failed to encode dump: %w", err))
	}
	out := append([]byte(nil), bb.Buf...)
	dumpBytesPool.Put(bb.Buf[:0])
	return out, nil
}

// Restore creates key from a Dump payload. The target key must not exist.
// List node buffers are structurally validated before they are accepted.
func (s *Store) Restore(key string, payload []byte) error {
	s.WriteCount.Add(1)
	if _, ok := s.lookup(key); ok {
		return keyErr(key, ErrExists)
	}

	var dv dumpValue
	var r bytes.Reader
	r.Reset(payload)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	err := dec.Decode(&dv)
	msgpack.PutDecoder(dec)
	if err != nil {
		return keyErr(key, fmt.Errorf("bad dump payload: %w", err))
	}

	obj := &object{kind: Kind(dv.Kind), enc: encoding(dv.Enc)}
	switch obj.enc {
	case encRaw:
		if obj.kind != KindString {
			return badDump(key, "raw payload on %v value", obj.kind)
		}
		obj.raw = append([]byte(nil), dv.Raw...)

	case encInt:
		if obj.kind != KindString {
			return badDump(key, "integer payload on %v value", obj.kind)
		}
		obj.num = dv.Num

	case encPacked:
		if obj.kind != KindList {
			return badDump(key, "packed payload on %v value", obj.kind)
		}
		if len(dv.Nodes) != 1 {
			return badDump(key, "packed payload with %d buffers", len(dv.Nodes))
		}
		if err := packseq.Validate(dv.Nodes[0]); err != nil {
			return keyErr(key, fmt.Errorf("bad dump payload: %w", err))
		}
		obj.packed = append([]byte(nil), dv.Nodes[0]...)

	case encChain:
		if obj.kind != KindList {
			return badDump(key, "chain payload on %v value", obj.kind)
		}
		l := quicklist.New(dv.Fill, dv.Depth)
		for _, nb := range dv.Nodes {
			if err := l.AppendPacked(append([]byte(nil), nb...)); err != nil {
				return keyErr(key, fmt.Errorf("bad dump payload: %w", err))
			}
		}
		if l.Len() == 0 {
			return badDump(key, "chain payload with no entries")
		}
		obj.list = l

	default:
		return badDump(key, "unknown encoding %d", dv.Enc)
	}

	s.keys.Set(key, obj)
	return nil
}

func badDump(key, format string, args ...any) error {
	return keyErr(key, fmt.Errorf("bad dump payload: "+format, args...))
}
