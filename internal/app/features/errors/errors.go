// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
)

// Handler serves the JSON fallbacks for unknown routes and methods.
// No DB needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is installed as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	httpjson.Fail(w, http.StatusNotFound, "The requested resource was not found.")
}

// MethodNotAllowed is installed as the router's MethodNotAllowed handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpjson.Fail(w, http.StatusMethodNotAllowed, "Method not allowed.")
}
