package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/blockedby/leetstats/internal/leetcode"
	"github.com/blockedby/leetstats/internal/stats"
	"github.com/blockedby/leetstats/internal/web"
)

// maxRequestBytes caps the lookup request body.
const maxRequestBytes = 4 << 10

// public messages; upstream detail never reaches the client
const (
	msgUsernameRequired = "Username is required"
	msgUsernameType     = "Username must be a string"
	msgUsernameInvalid  = "Invalid username format"
	msgInvalidBody      = "Request body must be JSON"
	msgUserNotFound     = "User not found"
	msgUpstreamTimeout  = "Upstream service timed out, please try again"
	msgUpstreamFailure  = "Failed to fetch data from upstream service"
)

// UserHandler proxies profile lookups to the upstream API.
type UserHandler struct {
	lookup UserLookup
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(lookup UserLookup) *UserHandler {
	return &UserHandler{lookup: lookup}
}

// lookupRequest keeps the username raw so a non-string can be told apart
// from a missing field.
type lookupRequest struct {
	Username json.RawMessage `json:"username"`
}

// Lookup handles POST /api/user
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req lookupRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		web.WriteError(w, r, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	// the body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		web.WriteError(w, r, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}

	username, msg := parseUsername(req.Username)
	if msg != "" {
		web.WriteError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	body, err := h.lookup.FetchUserProgress(r.Context(), username)
	if err != nil {
		status, public := statusFromError(err)
		if status < 500 {
			zerolog.Ctx(r.Context()).Info().Err(err).Str("username", username).Msg("lookup rejected")
		}
		web.WriteError(w, r, status, public, err)
		return
	}

	web.WriteRawJSON(w, r, http.StatusOK, body)
}

// parseUsername returns the validated username or the public message
// explaining why it was rejected.
func parseUsername(raw json.RawMessage) (string, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", msgUsernameRequired
	}

	var username string
	if err := json.Unmarshal(raw, &username); err != nil {
		return "", msgUsernameType
	}

	switch err := stats.ValidateUsername(username); {
	case errors.Is(err, stats.ErrUsernameRequired):
		return "", msgUsernameRequired
	case err != nil:
		return "", msgUsernameInvalid
	}
	return username, ""
}

// statusFromError maps upstream error kinds to HTTP status codes.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, leetcode.ErrUserNotFound):
		return http.StatusNotFound, msgUserNotFound
	case errors.Is(err, leetcode.ErrTimeout):
		return http.StatusGatewayTimeout, msgUpstreamTimeout
	default:
		return http.StatusInternalServerError, msgUpstreamFailure
	}
}
