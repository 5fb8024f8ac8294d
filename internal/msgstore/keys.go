package msgstore

import (
	"encoding/binary"
)

// Keyspace helpers shared by both engines.
//
// Layout (byte-wise, lexicographically sortable):
// - subj/{subject}/m                          last assigned sequence (8B BE)
// - subj/{subject}/e/{seq_be8}                message header
// - subj/{subject}/e/{seq_be8}/s/{idx_be4}    payload segment idx

var (
	subjPrefix = []byte("subj/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
	segmentSeg = []byte("/s/")
)

func appendBE4(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyMeta builds the subject metadata key.
func KeyMeta(subject string) []byte {
	k := make([]byte, 0, len(subjPrefix)+len(subject)+len(metaSuffix))
	k = append(k, subjPrefix...)
	k = append(k, subject...)
	k = append(k, metaSuffix...)
	return k
}

// KeyHeader builds the header key of one message.
func KeyHeader(subject string, seq uint64) []byte {
	k := make([]byte, 0, len(subjPrefix)+len(subject)+len(entrySeg)+8+len(segmentSeg)+4)
	k = append(k, subjPrefix...)
	k = append(k, subject...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

// KeySegment builds the key of payload segment idx of one message. It shares
// the header key as prefix so a message's keys are contiguous.
func KeySegment(subject string, seq uint64, idx uint32) []byte {
	k := KeyHeader(subject, seq)
	k = append(k, segmentSeg...)
	k = appendBE4(k, idx)
	return k
}

func encodeSeq(seq uint64) []byte {
	return appendBE8(make([]byte, 0, 8), seq)
}

func decodeSeq(b []byte) (uint64, bool) {
	if len(b) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b[:8]), true
}
