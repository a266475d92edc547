package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrorResponse is the error body every endpoint uses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v as JSON and writes it to the response.
// It buffers the encoding to detect errors before writing headers.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("json encode failed")
		writeErrorFallback(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("write response failed")
	}
}

// WriteRawJSON writes an already encoded JSON body unchanged.
func WriteRawJSON(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("write response failed")
	}
}

// WriteError writes a JSON error response.
// The public message is what clients see; err is only logged, and only for 5xx.
func WriteError(w http.ResponseWriter, r *http.Request, status int, public string, err error) {
	if public == "" {
		public = http.StatusText(status)
	}
	if status >= 500 && err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	WriteJSON(w, r, status, ErrorResponse{Error: public})
}

// writeErrorFallback writes a plain text error when JSON encoding fails.
func writeErrorFallback(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
