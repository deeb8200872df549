/*
Package packd implements an in-memory key-value store whose values are built
from compact collection encodings.

We implement:

1. A keyspace: a hash table with incremental rehashing, so that growing the
table never stalls a single operation on a full-table move.

2. String values, stored raw or, when the value is the canonical base-10 form
of an integer, as the integer itself.

3. List values. A small list lives in a single packed-sequence buffer
(package packseq); once it outgrows the configured limits it is upgraded to a
chain of such buffers (package quicklist) with per-node size policies and
optional interior compression.

4. Per-key expiration, applied lazily on access.

5. Dump/Restore, a self-contained byte-string serialization of one value,
usable to move values between stores.

# Technical Details

**Keyspace.** Keys are strings; values are typed objects. Lookup of an
expired key deletes it and reports a miss. Expiration deadlines live in a
second hash table keyed by the same strings, holding unix nanoseconds.

**Incremental rehash.** The keyspace keeps up to two bucket arrays. When load
reaches 1.0, a larger second array is allocated and every subsequent
operation migrates one bucket from the old array to the new one. While the
migration is in progress, lookups consult both arrays and new keys go into
the new one, so the old array only ever drains.

**Dump encoding.** A msgpack map holding the value kind and encoding, plus
the payload: raw bytes or an integer for strings, and the packed-sequence
buffer of every chain node for lists, together with the list's fill and
compression settings. List buffers are validated structurally on Restore,
so a corrupt payload is rejected rather than trusted.

**Concurrency.** A Store is single-writer: the caller serializes access.
Nothing inside blocks or suspends.
*/
package packd
