package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rzbill/msgquery/internal/query"
	logpkg "github.com/rzbill/msgquery/pkg/log"
)

// QueryController serves bulk message lookups as a binary frame stream.
type QueryController struct {
	disp   *query.Dispatcher
	param  string
	logger logpkg.Logger
}

// NewQueryController creates a query controller reading the envelope from
// the given URL parameter.
func NewQueryController(disp *query.Dispatcher, param string, logger logpkg.Logger) *QueryController {
	if param == "" {
		param = "backupQuery"
	}
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &QueryController{disp: disp, param: param, logger: logger.WithComponent("http.query")}
}

// RegisterRoutes registers the query route with the given mux.
func (c *QueryController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/messages/query", c.handleQuery)
}

// handleQuery always answers 200 with application/octet-stream. Malformed or
// empty envelopes produce an empty body; failures truncate the body and are
// only logged.
func (c *QueryController) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	reqID := uuid.NewString()
	logger := c.logger.WithContext(logpkg.ContextWithRequestID(r.Context(), reqID))

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Request-Id", reqID)

	desc, err := query.Decode(r.URL.Query().Get(c.param))
	if err != nil {
		logger.Debug("query.decode_failed", logpkg.Err(err))
	}
	w.WriteHeader(http.StatusOK)
	if desc.Empty() {
		return
	}

	ex := newExchange()
	sink := newResponseSink(w)
	c.disp.Dispatch(desc, sink).OnComplete(func(err error) {
		if err != nil {
			logger.Error("query.failed", logpkg.Str("descriptor", desc.String()), logpkg.Err(err))
		} else {
			logger.Debug("query.done", logpkg.Str("subject", desc.Subject), logpkg.Int("keys", len(desc.Keys)))
		}
		ex.Complete()
	})

	select {
	case <-ex.Done():
	case <-r.Context().Done():
		sink.abort()
		logger.Debug("query.client_gone", logpkg.Str("subject", desc.Subject), logpkg.Err(r.Context().Err()))
	}
}
