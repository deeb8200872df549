package packseq

import (
	"bytes"
	"fmt"
	"testing"
)

// entries of exactly 253 raw bytes sit right below the small prev-len limit,
// so growing any one of them ripples a field-width change through every
// following entry.
func chainValue(i int) []byte {
	return bytes.Repeat([]byte{'a' + byte(i)}, 250)
}

func buildChain(n int) []byte {
	pq := New()
	for i := 0; i < n; i++ {
		pq = Push(pq, chainValue(i), false)
	}
	return pq
}

func TestCascadeGrow(t *testing.T) {
	const n = 10
	pq := buildChain(n)
	for i := 0; i < n; i++ {
		pos, _ := Index(pq, i)
		if e := decodeEntry(pq, pos); e.prevLenSize != 1 {
			t.Fatalf("** before: entry %d prev-len size = %d, wanted 1", i, e.prevLenSize)
		}
	}

	// a 254-byte head entry encodes to 257 raw bytes, pushing every
	// following prev-len field into the 5-byte form one after another
	big := bytes.Repeat([]byte{'Z'}, 254)
	pq = Push(pq, big, true)
	if err := Validate(pq); err != nil {
		t.Fatalf("** Validate after cascade: %v", err)
	}
	if got := Len(pq); got != n+1 {
		t.Fatalf("** Len = %d, wanted %d", got, n+1)
	}
	for i := 1; i <= n; i++ {
		pos, _ := Index(pq, i)
		e := decodeEntry(pq, pos)
		if e.prevLenSize != 5 {
			t.Errorf("** after: entry %d prev-len size = %d, wanted 5", i, e.prevLenSize)
		}
		if !Compare(pq, pos, chainValue(i-1)) {
			t.Errorf("** after: entry %d payload corrupted", i)
		}
	}
}

func TestCascadeShrinkSuppressed(t *testing.T) {
	const n = 6
	pq := buildChain(n)
	pq = Push(pq, bytes.Repeat([]byte{'Z'}, 254), true)
	if err := Validate(pq); err != nil {
		t.Fatalf("** Validate: %v", err)
	}

	// deleting the big head leaves entry 0 with prevLen 0, but the chain
	// behind it keeps its widened 5-byte fields: shrinking never cascades
	pos, _ := Index(pq, 0)
	pq = Delete(pq, pos)
	if err := Validate(pq); err != nil {
		t.Fatalf("** Validate after delete: %v", err)
	}
	for i := 1; i < n; i++ {
		pos, _ := Index(pq, i)
		if e := decodeEntry(pq, pos); e.prevLenSize != 5 {
			t.Errorf("** entry %d prev-len size = %d, wanted 5 to stay", i, e.prevLenSize)
		}
	}
	for i := 0; i < n; i++ {
		pos, _ := Index(pq, i)
		if !Compare(pq, pos, chainValue(i)) {
			t.Errorf("** entry %d payload corrupted", i)
		}
	}
}

func TestForwardBackwardAgree(t *testing.T) {
	pq := buildChain(8)
	pq = Push(pq, bytes.Repeat([]byte{'Z'}, 254), true)
	pq = Push(pq, []byte("tiny"), false)
	if err := Validate(pq); err != nil {
		t.Fatalf("** Validate: %v", err)
	}

	n := Len(pq)
	forward := make([]int, 0, n)
	pos, ok := Index(pq, 0)
	for ok {
		forward = append(forward, pos)
		pos, ok = Next(pq, pos)
	}
	backward := make([]int, 0, n)
	pos, ok = Index(pq, -1)
	for ok {
		backward = append(backward, pos)
		pos, ok = Prev(pq, pos)
	}
	if len(forward) != n || len(backward) != n {
		t.Fatalf("** walk lengths %d/%d, wanted %d", len(forward), len(backward), n)
	}
	for i := range forward {
		if forward[i] != backward[n-1-i] {
			t.Fatalf("** walks disagree at %d: %v vs %v", i, forward, backward)
		}
	}
}

func TestValidateRejectsCorruption(t *testing.T) {
	valid := buildChain(3)

	corrupt := func(name string, mutate func(pq []byte)) {
		pq := append([]byte(nil), valid...)
		mutate(pq)
		if err := Validate(pq); err == nil {
			t.Errorf("** %s: Validate accepted a corrupt buffer", name)
		} else {
			t.Logf("✓ %s: %v", name, err)
		}
	}

	corrupt("short total length", func(pq []byte) { setBlobLen(pq, len(pq)-1) })
	corrupt("missing end marker", func(pq []byte) { pq[len(pq)-1] = 0x00 })
	corrupt("tail offset out of bounds", func(pq []byte) { setTailPos(pq, len(pq)+5) })
	corrupt("tail offset at wrong entry", func(pq []byte) { setTailPos(pq, headerSize) })
	corrupt("wrong count", func(pq []byte) { setStoredCount(pq, 7) })
	corrupt("broken prev-len chain", func(pq []byte) {
		pos, _ := Index(pq, 1)
		pq[pos] = 13
	})
	corrupt("truncated payload", func(pq []byte) {
		pos, _ := Index(pq, 2)
		// claim a payload running past the buffer
		pq[pos+1] = 0x40 | 0x3F
		pq[pos+2] = 0xFF
	})

	if err := Validate(nil); err == nil {
		t.Errorf("** Validate accepted nil")
	}
	if err := Validate([]byte{0x01, 0x02}); err == nil {
		t.Errorf("** Validate accepted a truncated header")
	}
}

func TestValidateHugeSequence(t *testing.T) {
	pq := New()
	for i := 0; i < 100; i++ {
		pq = Push(pq, []byte(fmt.Sprintf("value-%04d", i)), false)
	}
	if err := Validate(pq); err != nil {
		t.Fatalf("** Validate: %v", err)
	}
}
