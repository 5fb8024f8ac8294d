// Package client provides the `msgquery` command-line client.
//
// The CLI talks to the msgquery HTTP endpoints to append and fetch messages
// from a terminal. It is primarily intended for developers and operators.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. The standalone binary reads MSGQ_HTTP and
// defaults to http://127.0.0.1:8080. MSGQ_QUERY_PARAM overrides the query
// parameter name when the server was configured with a non-default one.
//
// Usage
//
//	msgquery message append --subject orders --data '{"id":1}'
//	msgquery message append --subject orders --file ./payload.bin
//
//	# Raw frame stream for several keys, in the order given
//	msgquery message query --subject orders --seq 1 --seq 2 --seq 5 --out frames.bin
//	msgquery message query --subject orders --seq 1,2 --hex
//
//	# One message decoded as JSON
//	msgquery message get --subject orders --seq 1
//
//	msgquery message last --subject orders
//	msgquery stats
//
// Notes
//
//   - Frames carry no length, so `query` output for several keys can only be
//     split by a reader that knows the payload sizes. `get` fetches a single
//     key, where the frame is the whole response.
//   - Missing keys produce no bytes; `get` reports them as not found.
package client
