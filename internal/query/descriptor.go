package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MessageKey addresses one message within the descriptor's subject.
type MessageKey struct {
	Sequence Sequence `json:"sequence"`
}

// Sequence is a uint64 carried as a JSON string. Bare JSON numbers are
// accepted on input.
type Sequence uint64

func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(s), 10))
}

func (s *Sequence) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		b = []byte(str)
	}
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("query: invalid sequence %q", string(b))
	}
	*s = Sequence(v)
	return nil
}

// Descriptor is one batch lookup request. It is not modified after decoding.
type Descriptor struct {
	Subject string       `json:"subject"`
	Keys    []MessageKey `json:"keys"`
}

// Decode parses the JSON query envelope. It returns a nil descriptor and a
// nil error for an empty input or a JSON null, and a nil descriptor with the
// parse error for malformed input. Callers treat both as a no-op.
func Decode(raw string) (*Descriptor, error) {
	if len(bytes.TrimSpace([]byte(raw))) == 0 {
		return nil, nil
	}
	var d *Descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("query: decode descriptor: %w", err)
	}
	return d, nil
}

// Empty reports whether the descriptor completes without touching storage.
func (d *Descriptor) Empty() bool {
	return d == nil || d.Subject == ""
}

// String renders the descriptor for logs.
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf("subject=%s keys=%d", d.Subject, len(d.Keys))
	}
	return string(b)
}
