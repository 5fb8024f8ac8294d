package msgstore

import (
	"encoding/binary"
	"hash/crc32"
)

// Header encoding: uvarint segments | uvarint payloadLen | crc32c(payload) BE4

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Header describes how a stored payload is split.
type Header struct {
	Segments int
	Length   int
	CRC      uint32
}

// EncodeHeader builds the header record for payload stored in n segments.
func EncodeHeader(n int, payload []byte) []byte {
	out := make([]byte, 0, 2*binary.MaxVarintLen64+4)
	out = binary.AppendUvarint(out, uint64(n))
	out = binary.AppendUvarint(out, uint64(len(payload)))
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(payload, castagnoli))
	return append(out, crcb[:]...)
}

// DecodeHeader parses a header record.
func DecodeHeader(b []byte) (Header, bool) {
	segs, n := binary.Uvarint(b)
	if n <= 0 {
		return Header{}, false
	}
	length, m := binary.Uvarint(b[n:])
	if m <= 0 {
		return Header{}, false
	}
	rest := b[n+m:]
	if len(rest) != 4 {
		return Header{}, false
	}
	if segs == 0 || segs > 1<<20 || length < segs {
		return Header{}, false
	}
	return Header{Segments: int(segs), Length: int(length), CRC: binary.BigEndian.Uint32(rest)}, true
}

// Verify reports whether buffers reassemble to the payload the header describes.
func (h Header) Verify(buffers [][]byte) bool {
	if len(buffers) != h.Segments {
		return false
	}
	total := 0
	var crc uint32
	for _, b := range buffers {
		total += len(b)
		crc = crc32.Update(crc, castagnoli, b)
	}
	return total == h.Length && crc == h.CRC
}

// splitSegments slices payload into chunks of at most size bytes without copying.
func splitSegments(payload []byte, size int) [][]byte {
	n := (len(payload) + size - 1) / size
	out := make([][]byte, 0, n)
	for off := 0; off < len(payload); off += size {
		end := off + size
		if end > len(payload) {
			end = len(payload)
		}
		out = append(out, payload[off:end])
	}
	return out
}
