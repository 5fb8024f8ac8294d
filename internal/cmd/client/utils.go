package client

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	transports "github.com/rzbill/msgquery/internal/cmd/client/transports"
	"github.com/rzbill/msgquery/internal/query"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// BaseURLFromEnv returns MSGQ_HTTP or http://127.0.0.1:8080.
func BaseURLFromEnv() string {
	if v := os.Getenv("MSGQ_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

func getTransport(baseURL BaseURLFunc) transports.MessagesTransport {
	return transports.NewHTTPTransport(baseURL, nil, os.Getenv("MSGQ_QUERY_PARAM"))
}

// decodedMessage returns a map with seq and one of payload_json, payload_text, or payload_b64.
func decodedMessage(seq uint64, payload []byte) map[string]any {
	out := map[string]any{
		"seq": fmt.Sprintf("%d", seq),
	}
	// Try JSON first if it looks like JSON
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		var v any
		if json.Unmarshal(payload, &v) == nil {
			out["payload_json"] = v
			return out
		}
	}
	if utf8.Valid(payload) {
		out["payload_text"] = string(payload)
		return out
	}
	out["payload_b64"] = base64.StdEncoding.EncodeToString(payload)
	return out
}

// splitSingleFrame parses a response that carries at most one frame.
func splitSingleFrame(b []byte) (seq uint64, payload []byte, ok bool) {
	if len(b) < query.FrameHeaderSize {
		return 0, nil, false
	}
	return binary.BigEndian.Uint64(b[:query.FrameHeaderSize]), b[query.FrameHeaderSize:], true
}
