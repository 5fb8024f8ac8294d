// Package transports provides the transport used by the CLI to reach a
// msgquery server.
package transports

import (
	"context"
	"encoding/json"
	"io"
)

// MessagesTransport abstracts the transport used by the CLI.
type MessagesTransport interface {
	Append(ctx context.Context, subject string, payload []byte) (uint64, error)
	// Query streams the raw frame bytes for seqs into w and returns the byte count.
	Query(ctx context.Context, subject string, seqs []uint64, w io.Writer) (int64, error)
	Last(ctx context.Context, subject string) (uint64, error)
	Stats(ctx context.Context) (json.RawMessage, error)
}
