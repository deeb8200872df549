package packseq

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

// resize grows or shrinks the buffer to n bytes, updates the total-length
// header field and restores the end marker. Entry data between the old and
// new end is left for the caller to fix up.
func resize(pq []byte, n int) []byte {
	if n <= cap(pq) {
		pq = pq[:n]
	} else {
		pq = ensureCapacity(pq, n)[:n]
	}
	setBlobLen(pq, n)
	pq[n-1] = endByte
	return pq
}
