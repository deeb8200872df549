/*
Package quicklist implements a doubly-linked chain of packed sequences
(package packseq) that behaves as one logical list.

Each node owns a single packed-sequence buffer. A fill policy bounds node
growth either by entry count or by encoded byte size, so every buffer stays
small enough to copy around cheaply; adjacent nodes that shrink below the
policy are coalesced back together, so the chain stays locally merge-maximal.
Interior nodes can additionally be held in compressed form, with a
configurable window of plain nodes kept at each end for fast push/pop.

The list is single-writer: no operation blocks or suspends, and the caller is
responsible for serializing access. Inserting while an iterator is live is not
supported; deleting the iterator's current entry through Iterator.DelEntry is,
and keeps the iterator's position valid.
*/
package quicklist
