/*
Package packseq implements a packed sequence: a single contiguous byte buffer
encoding an ordered list of entries, each a byte string or a 64-bit integer.

The buffer is self-contained and length-prefixed, so a packed sequence can be
handed around, stored and reloaded as one blob.

# Layout

	<total u32> <tail u32> <count u16> <entry>* <end 0xFF>

**Header** (11 bytes, little-endian):

 1. Total byte length of the buffer, including the header and the end marker.
    Always equals the buffer's real length.
 2. Byte offset of the last entry's first byte, giving O(1) access to the tail
    without a scan.
 3. Entry count. Saturates at 0xFFFF; once saturated, the exact count can only
    be recovered by a full scan.

**Entry**: prev-len field, type/len header, payload.

The prev-len field stores the byte length of the preceding entry (0 for the
first one), which is what makes backward traversal possible. Lengths below 254
take one byte; longer ones take a 0xFE marker byte plus a u32.

The type/len header discriminates strings from integers:

	00pppppp                   string, 6-bit length
	01pppppp qqqqqqqq          string, 14-bit length (big-endian)
	10000000 <u32 big-endian>  string, 32-bit length
	11000000                   int16
	11010000                   int32
	11100000                   int64
	11110000                   int24
	11111110                   int8
	1111xxxx                   immediate 0..12, no payload (xxxx in 0001..1101,
	                           value is xxxx minus one)
	11111111                   end of buffer

Integer payloads are little-endian. A value put into the sequence is stored as
an integer only when its byte string round-trips exactly through base-10
("007" or "+1" stay strings).

# Invariant

For every entry i, the total byte length of entry i equals the value in entry
i+1's prev-len field, and the last entry's offset equals the tail header
field. Every mutation restores this invariant before returning; growing a
prev-len field propagates forward as far as needed, but an oversized field is
never shrunk back (this avoids width flapping on alternating inserts and
deletes of the same values).

Mutating functions follow the append-style convention of the standard library:
they take the buffer and return the new buffer, which may or may not share
storage with the input.
*/
package packseq
