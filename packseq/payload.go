package packseq

import (
	"bytes"
	"strconv"
)

// Payload is the decoded value of one entry: either a byte string or an
// integer. A byte string obtained from a live buffer is borrowed; callers
// that need it across further mutation must copy it out.
type Payload struct {
	b     []byte
	i     int64
	isInt bool
}

func Str(b []byte) Payload { return Payload{b: b} }
func Int(v int64) Payload  { return Payload{i: v, isInt: true} }

func (p Payload) IsInt() bool   { return p.isInt }
func (p Payload) Int() int64    { return p.i }
func (p Payload) Bytes() []byte { return p.b }

// Append appends the value in byte-string form, formatting integers in
// base 10.
func (p Payload) Append(buf []byte) []byte {
	if p.isInt {
		return strconv.AppendInt(buf, p.i, 10)
	}
	return append(buf, p.b...)
}

// Copy returns a payload that does not alias the source buffer.
func (p Payload) Copy() Payload {
	if p.isInt {
		return p
	}
	return Payload{b: append([]byte(nil), p.b...)}
}

func (p Payload) String() string {
	if p.isInt {
		return strconv.FormatInt(p.i, 10)
	}
	return string(p.b)
}

// EqualBytes compares the payload against a raw value the way entries are
// compared on insert: the value matches an integer entry only if it is the
// canonical base-10 form of the same number.
func (p Payload) EqualBytes(v []byte) bool {
	if p.isInt {
		iv, ok := TryInteger(v)
		return ok && iv == p.i
	}
	return bytes.Equal(p.b, v)
}

func (p Payload) Equal(q Payload) bool {
	if p.isInt != q.isInt {
		return false
	}
	if p.isInt {
		return p.i == q.i
	}
	return bytes.Equal(p.b, q.b)
}
