package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vaquinha/internal/core/domain"
)

// maxBodyBytes caps request bodies; ledger requests are a few hundred bytes.
const maxBodyBytes = 16 << 10

var errMissingCaller = errors.New("missing caller identity")

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps ledger errors to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errMissingCaller):
		return http.StatusUnauthorized, "MISSING_CALLER"
	case errors.Is(err, domain.ErrInvalidGoal):
		return http.StatusBadRequest, "INVALID_GOAL"
	case errors.Is(err, domain.ErrInvalidMetadata):
		return http.StatusBadRequest, "INVALID_METADATA"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "INVALID_AMOUNT"
	case errors.Is(err, domain.ErrOverflow):
		return http.StatusUnprocessableEntity, "OVERFLOW"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrCampaignClosed):
		return http.StatusConflict, "CAMPAIGN_CLOSED"
	case errors.Is(err, domain.ErrGoalNotReached):
		return http.StatusConflict, "GOAL_NOT_REACHED"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// writeError writes err as JSON. Internal errors are logged and replaced by
// a generic message to avoid leaking details.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request error",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		msg = "internal error"
	}
	h.writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; the status is already sent
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// decodeBody reads a size-limited JSON body into v. It writes the error
// response itself and reports whether decoding succeeded.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large", Code: "BODY_TOO_LARGE"})
		return false
	}
	h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", Code: "INVALID_JSON"})
	return false
}
