package packd

import (
	"strconv"

	"github.com/andreyvit/packd/packseq"
	"github.com/andreyvit/packd/quicklist"
)

// Kind is the user-visible type of a stored value.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// encoding is the internal representation chosen for a value of a given Kind.
type encoding uint8

const (
	encRaw    encoding = iota + 1 // string: raw bytes
	encInt                        // string: canonical integer
	encPacked                     // list: single packed-sequence buffer
	encChain                      // list: chain of packed-sequence nodes
)

func (e encoding) String() string {
	switch e {
	case encRaw:
		return "raw"
	case encInt:
		return "int"
	case encPacked:
		return "packed"
	case encChain:
		return "chain"
	default:
		return "invalid"
	}
}

// object is the typed wrapper stored in the keyspace.
type object struct {
	kind   Kind
	enc    encoding
	raw    []byte
	num    int64
	packed []byte
	list   *quicklist.List
}

func newStringObject(value []byte) *object {
	if v, ok := packseq.TryInteger(value); ok {
		return &object{kind: KindString, enc: encInt, num: v}
	}
	return &object{kind: KindString, enc: encRaw, raw: append([]byte(nil), value...)}
}

func (o *object) stringBytes() []byte {
	if o.enc == encInt {
		return strconv.AppendInt(nil, o.num, 10)
	}
	return append([]byte(nil), o.raw...)
}

func (o *object) listLen() int {
	if o.enc == encPacked {
		return packseq.Len(o.packed)
	}
	return o.list.Len()
}
