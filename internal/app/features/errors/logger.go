// internal/app/features/errors/logger.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// MsgNotFound is the page-level message for a missing record.
const MsgNotFound = "The requested record was not found."

// ErrorLogger turns domain errors into JSON responses. Infrastructure
// failures are logged with request context and answered generically.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// Respond writes the response for err. generic is shown in place of any
// infrastructure error text.
func (el *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, err error, generic string) {
	if ve, ok := apperr.AsValidation(err); ok {
		httpjson.FailFields(w, http.StatusUnprocessableEntity, apperr.MsgValidation, ve.Fields)
		return
	}
	if de, ok := apperr.AsDuplicate(err); ok {
		httpjson.FailFields(w, http.StatusConflict, de.Message, map[string]string{de.Field: de.Message})
		return
	}
	switch {
	case stderrors.Is(err, apperr.ErrNotFound):
		httpjson.Fail(w, http.StatusNotFound, MsgNotFound)
	case stderrors.Is(err, apperr.ErrInvalidCredentials):
		httpjson.Fail(w, http.StatusUnauthorized, apperr.ErrInvalidCredentials.Error())
	default:
		el.ServerError(w, r, err, generic)
	}
}

// ServerError logs err and writes a 500 with msg.
func (el *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if el != nil && el.Log != nil {
		el.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	httpjson.Fail(w, http.StatusInternalServerError, msg)
}
