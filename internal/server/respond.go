package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/kapu/repfinder-go/pkg/errors"
)

type errorBody struct {
	Error             string `json:"error"`
	Code              string `json:"code,omitempty"`
	Reason            string `json:"reason,omitempty"`
	NeedsSync         bool   `json:"needsSync,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a typed error to its fixed status and a message callers can
// show verbatim. Internal service failures never leak their text.
func writeError(w http.ResponseWriter, err error) {
	status := errors.StatusOf(err)
	body := errorBody{
		Error:  errors.MessageOf(err),
		Code:   errors.CodeOf(err),
		Reason: errors.ReasonOf(err),
	}
	if status == http.StatusInternalServerError && body.Code == errors.CodeService {
		body.Error = "Internal server error"
	}
	if errors.IsNotCached(err) {
		body.NeedsSync = true
		if retry := errors.RetryAfterOf(err); retry > 0 {
			body.RetryAfterSeconds = int(math.Ceil(retry.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(body.RetryAfterSeconds))
		}
	}
	writeJSON(w, status, body)
}
