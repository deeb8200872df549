package packseq

import (
	"encoding/binary"
	"math"
)

// New returns an empty packed sequence.
func New() []byte {
	pq := make([]byte, headerSize+endSize)
	setBlobLen(pq, headerSize+endSize)
	setTailPos(pq, headerSize)
	pq[headerSize] = endByte
	return pq
}

// BlobLen returns the total byte length recorded in the header.
func BlobLen(pq []byte) int {
	return int(binary.LittleEndian.Uint32(pq))
}

func setBlobLen(pq []byte, n int) {
	binary.LittleEndian.PutUint32(pq, uint32(n))
}

func tailPos(pq []byte) int {
	return int(binary.LittleEndian.Uint32(pq[4:]))
}

func setTailPos(pq []byte, pos int) {
	binary.LittleEndian.PutUint32(pq[4:], uint32(pos))
}

func storedCount(pq []byte) int {
	return int(binary.LittleEndian.Uint16(pq[8:]))
}

func setStoredCount(pq []byte, n int) {
	if n > countUnknown {
		n = countUnknown
	}
	binary.LittleEndian.PutUint16(pq[8:], uint16(n))
}

// incrStoredCount adjusts the entry count. Once the count has saturated it
// stays saturated; Len recovers the exact value by scanning.
func incrStoredCount(pq []byte, delta int) {
	n := storedCount(pq)
	if n < countUnknown {
		setStoredCount(pq, n+delta)
	}
}

// Len returns the number of entries: O(1) while the stored count is exact,
// one full scan after it has saturated.
func Len(pq []byte) int {
	if n := storedCount(pq); n < countUnknown {
		return n
	}
	count := 0
	for pos := headerSize; pq[pos] != endByte; count++ {
		pos += decodeEntry(pq, pos).rawLen()
	}
	if count < countUnknown {
		setStoredCount(pq, count)
	}
	return count
}

// Push appends value at the head or the tail.
func Push(pq []byte, value []byte, head bool) []byte {
	if head {
		return insert(pq, headerSize, value)
	}
	return insert(pq, BlobLen(pq)-1, value)
}

// Insert places value immediately before the entry at pos. Inserting at the
// end-marker position appends.
func Insert(pq []byte, pos int, value []byte) []byte {
	return insert(pq, pos, value)
}

// Delete removes the entry at pos. The same pos then addresses the following
// entry, or the end marker if the tail was deleted.
func Delete(pq []byte, pos int) []byte {
	return deleteAt(pq, pos, 1)
}

// DeleteRange removes up to count entries starting at the given index.
// A negative count removes everything from index onward.
func DeleteRange(pq []byte, index, count int) []byte {
	pos, ok := Index(pq, index)
	if !ok {
		return pq
	}
	if count < 0 {
		count = math.MaxInt
	}
	return deleteAt(pq, pos, count)
}

// Index returns the byte position of the entry with the given index,
// negative values counting back from the tail (-1 is the last entry).
func Index(pq []byte, index int) (int, bool) {
	if index < 0 {
		index = -index - 1
		pos := tailPos(pq)
		if pq[pos] == endByte {
			return 0, false
		}
		for index > 0 {
			e := decodeEntry(pq, pos)
			if e.prevLen == 0 {
				return 0, false
			}
			pos -= e.prevLen
			index--
		}
		return pos, true
	}
	pos := headerSize
	for index > 0 {
		if pq[pos] == endByte {
			return 0, false
		}
		pos += decodeEntry(pq, pos).rawLen()
		index--
	}
	if pq[pos] == endByte {
		return 0, false
	}
	return pos, true
}

// Next returns the position of the entry after pos.
func Next(pq []byte, pos int) (int, bool) {
	if pq[pos] == endByte {
		return 0, false
	}
	pos += decodeEntry(pq, pos).rawLen()
	if pq[pos] == endByte {
		return 0, false
	}
	return pos, true
}

// Prev returns the position of the entry before pos. Passing the end-marker
// position yields the tail entry.
func Prev(pq []byte, pos int) (int, bool) {
	if pq[pos] == endByte {
		tp := tailPos(pq)
		if pq[tp] == endByte {
			return 0, false
		}
		return tp, true
	}
	if pos == headerSize {
		return 0, false
	}
	e := decodeEntry(pq, pos)
	if e.prevLen == 0 {
		return 0, false
	}
	return pos - e.prevLen, true
}

// Get decodes the entry at pos. String payloads are borrowed from pq.
func Get(pq []byte, pos int) Payload {
	e := decodeEntry(pq, pos)
	if isStringEnc(e.encoding) {
		return Payload{b: pq[e.payloadPos() : e.payloadPos()+e.payloadLen]}
	}
	return Payload{i: readInt(pq, e.payloadPos(), e.encoding), isInt: true}
}

// RawLen returns the total byte length of the entry at pos.
func RawLen(pq []byte, pos int) int {
	return decodeEntry(pq, pos).rawLen()
}

// Compare reports whether the entry at pos equals the raw value.
func Compare(pq []byte, pos int, value []byte) bool {
	return Get(pq, pos).EqualBytes(value)
}

// Find looks for value starting at pos, checking one entry out of skip+1.
func Find(pq []byte, pos int, value []byte, skip int) (int, bool) {
	skipcnt := 0
	for pq[pos] != endByte {
		if skipcnt == 0 {
			if Compare(pq, pos, value) {
				return pos, true
			}
			skipcnt = skip
		} else {
			skipcnt--
		}
		pos += decodeEntry(pq, pos).rawLen()
	}
	return 0, false
}

// insert splices value in before the entry at pos, growing the buffer and
// repairing the next entry's prev-len field (and any follow-on fields, via
// the cascade) as needed.
func insert(pq []byte, pos int, value []byte) []byte {
	curLen := BlobLen(pq)

	var prevLen, prevLenFieldSize int
	if pq[pos] != endByte {
		prevLenFieldSize, prevLen = readPrevLen(pq, pos)
	} else {
		tp := tailPos(pq)
		if pq[tp] != endByte {
			prevLen = decodeEntry(pq, tp).rawLen()
		}
	}

	var ival int64
	encoding := byte(encStr6B)
	payloadLen := len(value)
	if v, ok := TryInteger(value); ok {
		ival = v
		encoding = intEncoding(v)
		payloadLen = intPayloadSize(encoding)
	}
	reqLen := prevLenSize(prevLen) + typeLenSize(encoding, len(value)) + payloadLen

	// nextDiff is how much the entry at pos must grow or shrink its prev-len
	// field to describe the new entry. The -4 shrink is suppressed for tiny
	// entries: the relocation could not free the room the 5-byte field
	// occupies, so the oversized field stays (and holds a small value).
	nextDiff := 0
	forceLarge := false
	if pq[pos] != endByte {
		nextDiff = prevLenSize(reqLen) - prevLenFieldSize
		if nextDiff == -4 && reqLen < 4 {
			nextDiff = 0
			forceLarge = true
		}
	}

	pq = resize(pq, curLen+reqLen+nextDiff)

	if pq[pos] != endByte {
		copy(pq[pos+reqLen:], pq[pos-nextDiff:curLen-1])
		if forceLarge {
			writePrevLenLarge(pq, pos+reqLen, reqLen)
		} else {
			writePrevLen(pq, pos+reqLen, reqLen)
		}
		setTailPos(pq, tailPos(pq)+reqLen)
		moved := decodeEntry(pq, pos+reqLen)
		if pq[pos+reqLen+moved.rawLen()] != endByte {
			setTailPos(pq, tailPos(pq)+nextDiff)
		}
	} else {
		setTailPos(pq, pos)
	}

	if nextDiff != 0 {
		pq = cascadeUpdate(pq, pos+reqLen)
	}

	off := pos
	off += writePrevLen(pq, off, prevLen)
	off += writeTypeLen(pq, off, encoding, len(value))
	if isStringEnc(encoding) {
		copy(pq[off:], value)
	} else {
		writeInt(pq, off, ival, encoding)
	}
	incrStoredCount(pq, 1)
	return pq
}

// deleteAt removes up to num entries starting at the entry at pos.
func deleteAt(pq []byte, pos, num int) []byte {
	curLen := BlobLen(pq)
	first := decodeEntry(pq, pos)

	deleted := 0
	p := pos
	for deleted < num && pq[p] != endByte {
		p += decodeEntry(pq, p).rawLen()
		deleted++
	}
	totLen := p - pos
	if totLen <= 0 {
		return pq
	}

	nextDiff := 0
	if pq[p] != endByte {
		cur := decodeEntry(pq, p)
		nextDiff = prevLenSize(first.prevLen) - cur.prevLenSize
		p -= nextDiff
		writePrevLen(pq, p, first.prevLen)

		setTailPos(pq, tailPos(pq)-totLen)
		tail := decodeEntry(pq, p)
		if pq[p+tail.rawLen()] != endByte {
			setTailPos(pq, tailPos(pq)+nextDiff)
		}
		copy(pq[pos:], pq[p:curLen-1])
	} else {
		// the whole tail went away
		setTailPos(pq, pos-first.prevLen)
	}

	pq = resize(pq, curLen-totLen+nextDiff)
	incrStoredCount(pq, -deleted)

	if nextDiff != 0 {
		pq = cascadeUpdate(pq, pos)
	}
	return pq
}

// cascadeUpdate walks forward from the entry at pos, whose framing is known
// to be consistent, re-deriving each following entry's prev-len field. Growth
// relocates the rest of the buffer and continues; once a field needs no
// resize the walk stops, since that entry's own length did not change. A
// field wider than needed is rewritten in its large form rather than shrunk,
// so alternating inserts and deletes of the same values cannot flap a field
// between widths.
func cascadeUpdate(pq []byte, pos int) []byte {
	curLen := BlobLen(pq)
	for pq[pos] != endByte {
		cur := decodeEntry(pq, pos)
		rawLen := cur.rawLen()
		rawLenSize := prevLenSize(rawLen)

		np := pos + rawLen
		if pq[np] == endByte {
			break
		}
		next := decodeEntry(pq, np)
		if next.prevLen == rawLen {
			break
		}

		if next.prevLenSize < rawLenSize {
			extra := rawLenSize - next.prevLenSize
			pq = resize(pq, curLen+extra)
			if tailPos(pq) != np {
				setTailPos(pq, tailPos(pq)+extra)
			}
			copy(pq[np+rawLenSize:], pq[np+next.prevLenSize:curLen-1])
			writePrevLen(pq, np, rawLen)
			pos = np
			curLen += extra
		} else {
			if next.prevLenSize > rawLenSize {
				writePrevLenLarge(pq, np, rawLen)
			} else {
				writePrevLen(pq, np, rawLen)
			}
			break
		}
	}
	return pq
}

// Merge returns a fresh buffer holding first's entries followed by second's.
// Neither input is modified.
func Merge(first, second []byte) []byte {
	fLen, sLen := BlobLen(first), BlobLen(second)
	fCount, sCount := Len(first), Len(second)

	out := make([]byte, 0, fLen+sLen-headerSize-endSize)
	out = append(out, first[:fLen-endSize]...)
	out = append(out, second[headerSize:sLen]...)
	setBlobLen(out, len(out))
	if sCount > 0 {
		setTailPos(out, fLen-endSize+tailPos(second)-headerSize)
	}
	setStoredCount(out, fCount+sCount)

	if fCount > 0 && sCount > 0 {
		// the first entry of second still claims a zero-length predecessor
		out = cascadeUpdate(out, tailPos(first))
	}
	return out
}
