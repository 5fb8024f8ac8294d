package controllers

// Common request/response types for HTTP controllers

// appendReq represents a request to append a message to a subject.
// Payload is base64 in JSON.
type appendReq struct {
	Subject string `json:"subject"`
	Payload []byte `json:"payload"`
}

// sequenceResp reports a sequence for a subject.
type sequenceResp struct {
	Subject  string `json:"subject"`
	Sequence string `json:"sequence"`
}
