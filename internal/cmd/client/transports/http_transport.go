package transports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rzbill/msgquery/internal/query"
)

// DefaultQueryParam is the URL parameter the server reads query envelopes from.
const DefaultQueryParam = "backupQuery"

// HTTPTransport implements MessagesTransport over the HTTP API.
type HTTPTransport struct {
	baseURL func() string
	client  *http.Client
	param   string
}

// NewHTTPTransport constructs an HTTPTransport. A nil client uses http.DefaultClient;
// an empty param uses DefaultQueryParam.
func NewHTTPTransport(baseURL func() string, client *http.Client, param string) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	if param == "" {
		param = DefaultQueryParam
	}
	return &HTTPTransport{baseURL: baseURL, client: client, param: param}
}

type sequenceBody struct {
	Subject  string `json:"subject"`
	Sequence string `json:"sequence"`
}

func (t *HTTPTransport) do(req *http.Request, wantStatus int) (*http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		defer resp.Body.Close()
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, e.Error)
		}
		return nil, fmt.Errorf("%s", resp.Status)
	}
	return resp, nil
}

func decodeSequence(r io.Reader) (uint64, error) {
	var body sequenceBody
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return strconv.ParseUint(body.Sequence, 10, 64)
}

// Append stores payload under subject and returns its sequence.
func (t *HTTPTransport) Append(ctx context.Context, subject string, payload []byte) (uint64, error) {
	b, err := json.Marshal(map[string]any{"subject": subject, "payload": payload})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL()+"/v1/messages/append", bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.do(req, http.StatusCreated)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return decodeSequence(resp.Body)
}

// Query requests seqs of subject and copies the response body into w.
func (t *HTTPTransport) Query(ctx context.Context, subject string, seqs []uint64, w io.Writer) (int64, error) {
	desc := query.Descriptor{Subject: subject, Keys: make([]query.MessageKey, len(seqs))}
	for i, s := range seqs {
		desc.Keys[i] = query.MessageKey{Sequence: query.Sequence(s)}
	}
	env, err := json.Marshal(desc)
	if err != nil {
		return 0, err
	}
	u := t.baseURL() + "/v1/messages/query?" + url.Values{t.param: {string(env)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := t.do(req, http.StatusOK)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(w, resp.Body)
}

// Last returns the last sequence of subject, 0 if it has none.
func (t *HTTPTransport) Last(ctx context.Context, subject string) (uint64, error) {
	u := t.baseURL() + "/v1/messages/last?" + url.Values{"subject": {subject}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := t.do(req, http.StatusOK)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return decodeSequence(resp.Body)
}

// Stats returns the server's query stats document.
func (t *HTTPTransport) Stats(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL()+"/v1/query/stats", nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.do(req, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

var _ MessagesTransport = (*HTTPTransport)(nil)
