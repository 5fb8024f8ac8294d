package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rzbill/msgquery/internal/msgstore"
	"github.com/rzbill/msgquery/internal/runtime"
)

// MessagesController appends messages and reports subject positions.
type MessagesController struct {
	rt *runtime.Runtime
}

// NewMessagesController creates a new messages controller.
func NewMessagesController(rt *runtime.Runtime) *MessagesController {
	return &MessagesController{rt: rt}
}

// RegisterRoutes registers message routes with the given mux.
func (c *MessagesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/messages/append", c.handleAppend)
	mux.HandleFunc("/v1/messages/last", c.handleLast)
}

// handleAppend stores one message and returns its sequence with 201 Created.
func (c *MessagesController) handleAppend(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	// base64 inflates the payload by 4/3; leave room for the envelope.
	limit := int64(c.rt.Config().Store.PayloadMaxBytes)*2 + 4096
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req appendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	seq, err := c.rt.Store().Append(r.Context(), req.Subject, req.Payload)
	switch {
	case err == nil:
	case errors.Is(err, msgstore.ErrInvalidSubject), errors.Is(err, msgstore.ErrEmptyPayload):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, msgstore.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, "Failed to append message")
		return
	}
	writeCreated(w, sequenceResp{Subject: req.Subject, Sequence: formatSeq(seq)})
}

// handleLast returns the last assigned sequence of a subject, "0" if none.
func (c *MessagesController) handleLast(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}
	seq, err := c.rt.Store().LastSequence(subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read subject")
		return
	}
	writeJSON(w, sequenceResp{Subject: subject, Sequence: formatSeq(seq)})
}
