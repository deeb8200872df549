package packd

import (
	"fmt"

	"github.com/andreyvit/packd/packseq"
	"github.com/andreyvit/packd/quicklist"
)

func (s *Store) listObject(key string, create bool) (*object, error) {
	obj, ok := s.lookup(key)
	if !ok {
		if !create {
			return nil, ErrNotFound
		}
		obj = &object{kind: KindList, enc: encPacked, packed: packseq.New()}
		s.keys.Set(key, obj)
		return obj, nil
	}
	if obj.kind != KindList {
		return nil, ErrWrongType
	}
	return obj, nil
}

// packedFits reports whether one more element of the given size keeps the
// list within its single-buffer limits.
func (s *Store) packedFits(obj *object, value []byte) bool {
	if len(value) > s.opt.MaxPackedValue {
		return false
	}
	return packseq.Len(obj.packed) < s.opt.MaxPackedEntries
}

// upgradeList converts a single-buffer list into a chain. The conversion is
// one-way; a list never shrinks back to the packed form.
func (s *Store) upgradeList(obj *object) {
	if obj.enc != encPacked {
		return
	}
	l, err := quicklist.FromPacked(s.opt.Fill, s.opt.CompressDepth, obj.packed)
	if err != nil {
		// the buffer was produced by this engine and cannot be invalid
		panic(fmt.Errorf("packd: list upgrade failed: %w", err))
	}
	obj.list = l
	obj.packed = nil
	obj.enc = encChain
	if s.verbose {
		s.logger.Debug("list upgraded to chain", "entries", l.Len())
	}
}

func (s *Store) listPush(obj *object, value []byte, head bool) {
	if obj.enc == encPacked {
		if s.packedFits(obj, value) {
			obj.packed = packseq.Push(obj.packed, value, head)
			return
		}
		s.upgradeList(obj)
	}
	if head {
		obj.list.PushHead(value)
	} else {
		obj.list.PushTail(value)
	}
}

// LPush prepends values to the list at key, creating it if needed, and
// returns the resulting length. Values are prepended one by one, so the last
// argument ends up first.
func (s *Store) LPush(key string, values ...[]byte) (int, error) {
	return s.push(key, values, true)
}

// RPush appends values to the list at key, creating it if needed, and
// returns the resulting length.
func (s *Store) RPush(key string, values ...[]byte) (int, error) {
	return s.push(key, values, false)
}

func (s *Store) push(key string, values [][]byte, head bool) (int, error) {
	s.WriteCount.Add(1)
	obj, err := s.listObject(key, true)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		s.listPush(obj, v, head)
	}
	return obj.listLen(), nil
}

// LPop removes and returns the first element of the list at key.
func (s *Store) LPop(key string) ([]byte, error) {
	return s.pop(key, true)
}

// RPop removes and returns the last element of the list at key.
func (s *Store) RPop(key string) ([]byte, error) {
	return s.pop(key, false)
}

func (s *Store) pop(key string, head bool) ([]byte, error) {
	s.WriteCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		return nil, err
	}
	var out []byte
	if obj.enc == encPacked {
		idx := 0
		if !head {
			idx = -1
		}
		pos, ok := packseq.Index(obj.packed, idx)
		if !ok {
			return nil, ErrNotFound
		}
		out = packseq.Get(obj.packed, pos).Append(nil)
		obj.packed = packseq.Delete(obj.packed, pos)
	} else {
		var v packseq.Payload
		var ok bool
		if head {
			v, ok = obj.list.PopHead()
		} else {
			v, ok = obj.list.PopTail()
		}
		if !ok {
			return nil, ErrNotFound
		}
		out = v.Append(nil)
	}
	if obj.listLen() == 0 {
		s.dropKey(key)
	}
	return out, nil
}

// LLen returns the length of the list at key; 0 if the key does not exist.
func (s *Store) LLen(key string) (int, error) {
	s.ReadCount.Add(1)
	obj, ok := s.lookup(key)
	if !ok {
		return 0, nil
	}
	if obj.kind != KindList {
		return 0, ErrWrongType
	}
	return obj.listLen(), nil
}

// LIndex returns a copy of the element at index; negative indices count from
// the tail.
func (s *Store) LIndex(key string, index int) ([]byte, error) {
	s.ReadCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		return nil, err
	}
	if obj.enc == encPacked {
		pos, ok := packseq.Index(obj.packed, index)
		if !ok {
			return nil, ErrIndexRange
		}
		return packseq.Get(obj.packed, pos).Append(nil), nil
	}
	e, ok := obj.list.Index(index)
	if !ok {
		return nil, ErrIndexRange
	}
	return e.Value.Append(nil), nil
}

// LRange returns copies of the elements between start and stop inclusive,
// with negative indices counting from the tail. Out-of-range bounds are
// clamped; an empty range yields nil.
func (s *Store) LRange(key string, start, stop int) ([][]byte, error) {
	s.ReadCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	n := obj.listLen()
	start, stop, empty := clampRange(start, stop, n)
	if empty {
		return nil, nil
	}
	count := stop - start + 1
	out := make([][]byte, 0, count)

	if obj.enc == encPacked {
		pos, ok := packseq.Index(obj.packed, start)
		for i := 0; i < count && ok; i++ {
			out = append(out, packseq.Get(obj.packed, pos).Append(nil))
			pos, ok = packseq.Next(obj.packed, pos)
		}
		return out, nil
	}

	it, ok := obj.list.IteratorAt(start, true)
	if !ok {
		return nil, nil
	}
	for i := 0; i < count; i++ {
		e, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, e.Value.Append(nil))
	}
	it.Close()
	return out, nil
}

func clampRange(start, stop, n int) (int, int, bool) {
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, true
	}
	return start, stop, false
}

// LSet replaces the element at index.
func (s *Store) LSet(key string, index int, value []byte) error {
	s.WriteCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		return err
	}
	if obj.enc == encPacked {
		if len(value) > s.opt.MaxPackedValue {
			s.upgradeList(obj)
		} else {
			pos, ok := packseq.Index(obj.packed, index)
			if !ok {
				return ErrIndexRange
			}
			obj.packed = packseq.Delete(obj.packed, pos)
			obj.packed = packseq.Insert(obj.packed, pos, value)
			return nil
		}
	}
	if !obj.list.ReplaceAtIndex(index, value) {
		return ErrIndexRange
	}
	return nil
}

// LInsert inserts value next to the first element equal to pivot, returning
// the new length, or -1 when the pivot is not present.
func (s *Store) LInsert(key string, before bool, pivot, value []byte) (int, error) {
	s.WriteCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		return 0, err
	}
	if obj.enc == encPacked && !s.packedFits(obj, value) {
		s.upgradeList(obj)
	}

	if obj.enc == encPacked {
		pos, ok := packseq.Index(obj.packed, 0)
		if ok {
			pos, ok = packseq.Find(obj.packed, pos, pivot, 0)
		}
		if !ok {
			return -1, nil
		}
		if before {
			obj.packed = packseq.Insert(obj.packed, pos, value)
		} else if next, ok := packseq.Next(obj.packed, pos); ok {
			obj.packed = packseq.Insert(obj.packed, next, value)
		} else {
			obj.packed = packseq.Push(obj.packed, value, false)
		}
		return obj.listLen(), nil
	}

	it := obj.list.Iterator(true)
	var target quicklist.Entry
	found := false
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		if e.Value.EqualBytes(pivot) {
			target = e
			found = true
			break
		}
	}
	it.Close()
	if !found {
		return -1, nil
	}
	if before {
		obj.list.InsertBefore(target, value)
	} else {
		obj.list.InsertAfter(target, value)
	}
	return obj.listLen(), nil
}

// LRem removes up to count elements equal to value: count > 0 scans from the
// head, count < 0 from the tail, count == 0 removes all. Returns how many
// were removed.
func (s *Store) LRem(key string, count int, value []byte) (int, error) {
	s.WriteCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		if err == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	forward := count >= 0
	limit := count
	if limit < 0 {
		limit = -limit
	}
	var removed int

	if obj.enc == encPacked {
		obj.packed, removed = packedRemove(obj.packed, value, forward, limit)
	} else {
		it := obj.list.Iterator(forward)
		for {
			e, ok := it.Next()
			if !ok {
				break
			}
			if e.Value.EqualBytes(value) {
				it.DelEntry(e)
				removed++
				if limit > 0 && removed == limit {
					break
				}
			}
		}
		it.Close()
	}
	if obj.listLen() == 0 {
		s.dropKey(key)
	}
	return removed, nil
}

func packedRemove(pq []byte, value []byte, forward bool, limit int) ([]byte, int) {
	var removed int
	idx := 0
	if !forward {
		idx = -1
	}
	pos, ok := packseq.Index(pq, idx)
	for ok {
		if packseq.Compare(pq, pos, value) {
			pq = packseq.Delete(pq, pos)
			removed++
			if limit > 0 && removed == limit {
				break
			}
			// pos now addresses the entry after the deleted one
			if forward {
				ok = pos < packseq.BlobLen(pq)-1
			} else {
				pos, ok = packseq.Prev(pq, pos)
			}
			continue
		}
		if forward {
			pos, ok = packseq.Next(pq, pos)
		} else {
			pos, ok = packseq.Prev(pq, pos)
		}
	}
	return pq, removed
}

// LTrim keeps only the elements between start and stop inclusive, with
// negative indices counting from the tail. The key is removed when nothing
// remains.
func (s *Store) LTrim(key string, start, stop int) error {
	s.WriteCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	n := obj.listLen()
	start, stop, empty := clampRange(start, stop, n)
	if empty {
		s.dropKey(key)
		return nil
	}
	keep := stop - start + 1
	if obj.enc == encPacked {
		obj.packed = packseq.DeleteRange(obj.packed, 0, start)
		obj.packed = packseq.DeleteRange(obj.packed, keep, -1)
	} else {
		obj.list.DelRange(0, start)
		obj.list.DelRange(keep, obj.list.Len())
	}
	if obj.listLen() == 0 {
		s.dropKey(key)
	}
	return nil
}

// RotateList moves the last element of the list to the front.
func (s *Store) RotateList(key string) error {
	s.WriteCount.Add(1)
	obj, err := s.listObject(key, false)
	if err != nil {
		return err
	}
	if obj.enc == encPacked {
		pos, ok := packseq.Index(obj.packed, -1)
		if !ok {
			return ErrNotFound
		}
		v := packseq.Get(obj.packed, pos).Append(nil)
		obj.packed = packseq.Delete(obj.packed, pos)
		obj.packed = packseq.Push(obj.packed, v, true)
		return nil
	}
	obj.list.Rotate()
	return nil
}
