package packseq

import (
	"encoding/binary"
	"math"
	"strconv"
)

const (
	headerSize = 11
	endSize    = 1
	endByte    = 0xFF

	// a prev-len field holds the length in its single byte below this value,
	// and as a marker byte plus u32 otherwise
	prevLenMarker = 0xFE

	countUnknown = math.MaxUint16
)

const (
	encStr6B  = 0x00
	encStr14B = 0x40
	encStr32B = 0x80
	strMask   = 0xC0

	encInt16 = 0xC0
	encInt32 = 0xD0
	encInt64 = 0xE0
	encInt24 = 0xF0
	encInt8  = 0xFE

	// immediates 0..12 live entirely in the header byte
	encImmMin = 0xF1
	encImmMax = 0xFD
)

func isStringEnc(encoding byte) bool {
	return encoding&strMask != strMask
}

func prevLenSize(length int) int {
	if length < prevLenMarker {
		return 1
	}
	return 5
}

func writePrevLen(pq []byte, pos, length int) int {
	if length < prevLenMarker {
		pq[pos] = byte(length)
		return 1
	}
	return writePrevLenLarge(pq, pos, length)
}

// writePrevLenLarge writes the 5-byte form regardless of the value, used when
// an existing oversized field must keep its width.
func writePrevLenLarge(pq []byte, pos, length int) int {
	pq[pos] = prevLenMarker
	binary.LittleEndian.PutUint32(pq[pos+1:], uint32(length))
	return 5
}

func readPrevLen(pq []byte, pos int) (size, length int) {
	if pq[pos] < prevLenMarker {
		return 1, int(pq[pos])
	}
	return 5, int(binary.LittleEndian.Uint32(pq[pos+1:]))
}

func typeLenSize(encoding byte, payloadLen int) int {
	if !isStringEnc(encoding) {
		return 1
	}
	if payloadLen <= 0x3F {
		return 1
	}
	if payloadLen <= 0x3FFF {
		return 2
	}
	return 5
}

func writeTypeLen(pq []byte, pos int, encoding byte, payloadLen int) int {
	if !isStringEnc(encoding) {
		pq[pos] = encoding
		return 1
	}
	if payloadLen <= 0x3F {
		pq[pos] = encStr6B | byte(payloadLen)
		return 1
	}
	if payloadLen <= 0x3FFF {
		pq[pos] = encStr14B | byte(payloadLen>>8)
		pq[pos+1] = byte(payloadLen)
		return 2
	}
	pq[pos] = encStr32B
	binary.BigEndian.PutUint32(pq[pos+1:], uint32(payloadLen))
	return 5
}

func readTypeLen(pq []byte, pos int) (encoding byte, headerLen, payloadLen int) {
	b := pq[pos]
	if b&strMask != strMask {
		switch b & strMask {
		case encStr6B:
			return encStr6B, 1, int(b & 0x3F)
		case encStr14B:
			return encStr14B, 2, int(b&0x3F)<<8 | int(pq[pos+1])
		default:
			if b != encStr32B {
				panic(corruptf("invalid string encoding byte %#02x", b))
			}
			return encStr32B, 5, int(binary.BigEndian.Uint32(pq[pos+1:]))
		}
	}
	return b, 1, intPayloadSize(b)
}

func intPayloadSize(encoding byte) int {
	switch encoding {
	case encInt8:
		return 1
	case encInt16:
		return 2
	case encInt24:
		return 3
	case encInt32:
		return 4
	case encInt64:
		return 8
	}
	if encoding >= encImmMin && encoding <= encImmMax {
		return 0
	}
	panic(corruptf("invalid integer encoding byte %#02x", encoding))
}

// intEncoding picks the narrowest integer sub-encoding able to hold v.
func intEncoding(v int64) byte {
	switch {
	case v >= 0 && v <= 12:
		return encImmMin + byte(v)
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return encInt8
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return encInt16
	case v >= -0x800000 && v <= 0x7FFFFF:
		return encInt24
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return encInt32
	default:
		return encInt64
	}
}

func writeInt(pq []byte, pos int, v int64, encoding byte) {
	switch encoding {
	case encInt8:
		pq[pos] = byte(v)
	case encInt16:
		binary.LittleEndian.PutUint16(pq[pos:], uint16(v))
	case encInt24:
		pq[pos] = byte(v)
		pq[pos+1] = byte(v >> 8)
		pq[pos+2] = byte(v >> 16)
	case encInt32:
		binary.LittleEndian.PutUint32(pq[pos:], uint32(v))
	case encInt64:
		binary.LittleEndian.PutUint64(pq[pos:], uint64(v))
	}
	// immediates carry the value in the encoding byte itself
}

func readInt(pq []byte, pos int, encoding byte) int64 {
	switch encoding {
	case encInt8:
		return int64(int8(pq[pos]))
	case encInt16:
		return int64(int16(binary.LittleEndian.Uint16(pq[pos:])))
	case encInt24:
		u := uint32(pq[pos]) | uint32(pq[pos+1])<<8 | uint32(pq[pos+2])<<16
		return int64(int32(u<<8) >> 8)
	case encInt32:
		return int64(int32(binary.LittleEndian.Uint32(pq[pos:])))
	case encInt64:
		return int64(binary.LittleEndian.Uint64(pq[pos:]))
	}
	if encoding >= encImmMin && encoding <= encImmMax {
		return int64(encoding - encImmMin)
	}
	panic(corruptf("invalid integer encoding byte %#02x", encoding))
}

// ProjectedEntrySize estimates the encoded size of a new entry holding an
// n-byte payload: the payload, a string header for it, and a prev-len field
// sized as if the preceding entry were about as long. Size policies use this
// projection before committing to an insert.
func ProjectedEntrySize(n int) int {
	sz := n
	if n < prevLenMarker {
		sz++
	} else {
		sz += 5
	}
	switch {
	case n <= 0x3F:
		sz++
	case n <= 0x3FFF:
		sz += 2
	default:
		sz += 5
	}
	return sz
}

// TryInteger reports whether value is the canonical base-10 form of a 64-bit
// signed integer, and returns it. Forms that do not round-trip exactly
// ("007", "+1", "-0", " 1", "") stay strings.
func TryInteger(value []byte) (int64, bool) {
	if len(value) == 0 || len(value) > 20 {
		return 0, false
	}
	s := string(value)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if s != strconv.FormatInt(v, 10) {
		return 0, false
	}
	return v, true
}

// entry is a decoded view of one entry's framing at a byte position.
type entry struct {
	pos         int
	prevLenSize int // bytes taken by the prev-len field
	prevLen     int // byte length of the preceding entry
	headerLen   int // bytes taken by the type/len header
	payloadLen  int
	encoding    byte
}

func decodeEntry(pq []byte, pos int) entry {
	var e entry
	e.pos = pos
	e.prevLenSize, e.prevLen = readPrevLen(pq, pos)
	e.encoding, e.headerLen, e.payloadLen = readTypeLen(pq, pos+e.prevLenSize)
	return e
}

func (e entry) headerSize() int { return e.prevLenSize + e.headerLen }
func (e entry) rawLen() int     { return e.prevLenSize + e.headerLen + e.payloadLen }
func (e entry) payloadPos() int { return e.pos + e.prevLenSize + e.headerLen }
