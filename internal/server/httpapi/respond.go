package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
)

const maxJSONBody = 1 << 20

const auditWarningHeader = "X-Audit-Warning"

type errorBody struct {
	Error string `json:"error"`
}

type otpBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrOTPInvalid),
		errors.Is(err, common.ErrOTPExpired):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrAccountNotVerified):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrorTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// messageFor keeps internal details out of 5xx bodies.
func messageFor(err error, code int) string {
	if code < http.StatusInternalServerError {
		return err.Error()
	}
	if errors.Is(err, common.ErrorDelivery) {
		return "failed to send OTP email"
	}
	return "internal error"
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	respondJSON(w, code, errorBody{Error: messageFor(err, code)})
}

func (s *Server) respondOTPError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "otp request failed", "path", r.URL.Path, "error", err)
	}
	respondJSON(w, code, otpBody{Success: false, Message: messageFor(err, code)})
}

// auditWarning reports whether err only says the change log was not
// written; the mutation succeeded and the response carries a warning.
func auditWarning(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, common.ErrChangeLogNotRecorded) {
		return false
	}
	w.Header().Set(auditWarningHeader, "change log entry not recorded")
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", common.ErrorValidation)
		}
		return fmt.Errorf("%w: malformed JSON: %v", common.ErrorValidation, err)
	}
	return nil
}
