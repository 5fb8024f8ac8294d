package query

import (
	"encoding/binary"
	"io"
)

// FrameHeaderSize is the length of the sequence prefix of every frame.
const FrameHeaderSize = 8

// WriteFrame writes the big-endian sequence followed by each buffer in
// order. It returns the number of bytes written and the first write error.
func WriteFrame(w io.Writer, sequence uint64, buffers [][]byte) (int, error) {
	var hdr [FrameHeaderSize]byte
	binary.BigEndian.PutUint64(hdr[:], sequence)
	total, err := w.Write(hdr[:])
	if err != nil {
		return total, err
	}
	for _, b := range buffers {
		if len(b) == 0 {
			continue
		}
		n, err := w.Write(b)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
