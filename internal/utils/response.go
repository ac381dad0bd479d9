package utils

import (
	"encoding/json"
	"net/http"

	"storefront-be/internal/apperror"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

type envelope struct {
	Status  string            `json:"status"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Details []apperror.Detail `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, data any) {
	write(w, code, envelope{Status: StatusSuccess, Data: data})
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	write(w, code, envelope{Status: StatusFail, Message: message})
}

// WriteError maps err onto its HTTP status. Internal errors are logged and
// hidden from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperror.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", code),
			zap.Error(err),
		)
	}
	write(w, code, envelope{
		Status:  StatusFail,
		Message: apperror.PublicMessage(err),
		Details: apperror.DetailsOf(err),
	})
}

func write(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// DecodeJSON decodes the request body into dst and reports malformed input as
// a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.Validation("invalid request body")
	}
	return nil
}
