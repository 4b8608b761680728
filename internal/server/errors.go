package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/assistant"
	"github.com/comigor/jarvis-assistant/internal/automation"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/memory"
	"github.com/comigor/jarvis-assistant/internal/realtime"
	"github.com/comigor/jarvis-assistant/internal/speech"
)

const internalDetail = "Internal Server Error"

// errBadRequest marks request validation failures raised by the handlers.
var errBadRequest = errors.New("bad request")

// errorMapping pins a sentinel to a status. An empty detail means the
// wrapped error text is shown.
type errorMapping struct {
	err    error
	status int
	detail string
}

var errorMappings = []errorMapping{
	{errBadRequest, http.StatusBadRequest, ""},
	{assistant.ErrMissingMessage, http.StatusBadRequest, "message is required"},
	{assistant.ErrMissingCoordinates, http.StatusBadRequest, "lat and lon are required for weather"},
	{realtime.ErrEmptyQuery, http.StatusBadRequest, "Query is required"},
	{memory.ErrEmptyPath, http.StatusBadRequest, "path is required"},
	{automation.ErrNotConfirmed, http.StatusBadRequest, "Set confirm=true to execute commands"},
	{automation.ErrUnsupportedAction, http.StatusBadRequest, "Unsupported action"},
	{automation.ErrInvalidCommand, http.StatusBadRequest, ""},
	{automation.ErrAutomationDisabled, http.StatusForbidden, "Automation disabled. Set ENABLE_AUTOMATION=1"},
	{automation.ErrAppNotAllowed, http.StatusForbidden, "App is not in the allowed list"},
	{automation.ErrInputUnavailable, http.StatusNotImplemented, ""},
	{automation.ErrBackendUnavailable, http.StatusNotImplemented, ""},
	{speech.ErrUnavailable, http.StatusNotImplemented, ""},
	{speech.ErrFailed, http.StatusInternalServerError, ""},
	{realtime.ErrUpstream, http.StatusBadGateway, "Upstream service unavailable"},
}

// statusFor resolves the response status and detail for err.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.detail != "" {
				return m.status, m.detail
			}
			return m.status, strings.TrimPrefix(err.Error(), m.err.Error()+": ")
		}
	}
	return http.StatusInternalServerError, internalDetail
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	log := logger.L.Info
	if status >= http.StatusInternalServerError {
		log = logger.L.Error
	}
	log("request failed", "path", r.URL.Path, "status", status, "error", err, "requestId", RequestIDFrom(r.Context()))
	writeDetail(w, status, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Warn("failed to write response", "error", err)
	}
}
