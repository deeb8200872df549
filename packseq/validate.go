package packseq

// Validate checks the structural integrity of an externally produced buffer:
// header fields, entry framing, the prev-len chain, the tail offset and the
// entry count. Buffers the engine produced itself are trusted and never pass
// through here; a violation found in one of those is a bug and panics at the
// point of detection instead.
func Validate(pq []byte) error {
	if len(pq) < headerSize+endSize {
		return dataErrf(pq, 0, "buffer shorter than header")
	}
	if BlobLen(pq) != len(pq) {
		return dataErrf(pq, 0, "recorded length %d does not match buffer length %d", BlobLen(pq), len(pq))
	}
	if pq[len(pq)-1] != endByte {
		return dataErrf(pq, len(pq)-1, "missing end marker")
	}
	tp := tailPos(pq)
	if tp < headerSize || tp >= len(pq) {
		return dataErrf(pq, 4, "tail offset %d out of bounds", tp)
	}

	count := 0
	prevRaw := 0
	lastPos := headerSize
	pos := headerSize
	for pq[pos] != endByte {
		e, err := decodeEntrySafe(pq, pos)
		if err != nil {
			return err
		}
		if e.prevLen != prevRaw {
			return dataErrf(pq, pos, "prev-len %d does not match preceding entry length %d", e.prevLen, prevRaw)
		}
		prevRaw = e.rawLen()
		lastPos = pos
		pos += prevRaw
		if pos >= len(pq) {
			return dataErrf(pq, e.pos, "entry overruns buffer")
		}
		count++
	}

	if count == 0 {
		if tp != headerSize {
			return dataErrf(pq, 4, "tail offset %d in empty sequence", tp)
		}
	} else if tp != lastPos {
		return dataErrf(pq, 4, "tail offset %d does not match last entry at %d", tp, lastPos)
	}
	if sc := storedCount(pq); sc != countUnknown && sc != count {
		return dataErrf(pq, 8, "recorded count %d does not match %d entries", sc, count)
	} else if sc == countUnknown && count < countUnknown {
		return dataErrf(pq, 8, "count marked unknown with only %d entries", count)
	}
	return nil
}

// decodeEntrySafe is the bounds-checked twin of decodeEntry for untrusted
// buffers.
func decodeEntrySafe(pq []byte, pos int) (entry, error) {
	var e entry
	e.pos = pos
	if pq[pos] == prevLenMarker {
		if pos+5 >= len(pq) {
			return e, dataErrf(pq, pos, "prev-len field overruns buffer")
		}
		e.prevLenSize, e.prevLen = readPrevLen(pq, pos)
	} else {
		e.prevLenSize, e.prevLen = 1, int(pq[pos])
	}

	hp := pos + e.prevLenSize
	if hp >= len(pq)-1 {
		return e, dataErrf(pq, pos, "entry header overruns buffer")
	}
	b := pq[hp]
	switch {
	case b&strMask == encStr6B:
		e.encoding, e.headerLen, e.payloadLen = encStr6B, 1, int(b&0x3F)
	case b&strMask == encStr14B:
		if hp+1 >= len(pq)-1 {
			return e, dataErrf(pq, hp, "14-bit length header overruns buffer")
		}
		e.encoding, e.headerLen, e.payloadLen = encStr14B, 2, int(b&0x3F)<<8|int(pq[hp+1])
	case b == encStr32B:
		if hp+4 >= len(pq)-1 {
			return e, dataErrf(pq, hp, "32-bit length header overruns buffer")
		}
		e.encoding, e.headerLen, e.payloadLen = encStr32B, 5, int(uint32(pq[hp+1])<<24|uint32(pq[hp+2])<<16|uint32(pq[hp+3])<<8|uint32(pq[hp+4]))
	case b&strMask != strMask:
		return e, dataErrf(pq, hp, "invalid string encoding byte %#02x", b)
	case b == encInt8 || b == encInt16 || b == encInt24 || b == encInt32 || b == encInt64:
		e.encoding, e.headerLen, e.payloadLen = b, 1, intPayloadSize(b)
	case b >= encImmMin && b <= encImmMax:
		e.encoding, e.headerLen, e.payloadLen = b, 1, 0
	default:
		return e, dataErrf(pq, hp, "invalid encoding byte %#02x", b)
	}

	if e.payloadPos()+e.payloadLen >= len(pq) {
		return e, dataErrf(pq, pos, "payload overruns buffer")
	}
	return e, nil
}
