// internal/app/features/donors/delete.go
package donors

import (
	"context"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /donors/{id} and POST /donors/{id}/delete.
// Deleting a donor that is already gone still answers 200.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		httpjson.OK(w, http.StatusOK, "Donor deleted.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Registry.Remove(ctx, actor(r), id); err != nil {
		h.ErrLog.Respond(w, r, err, apperr.MsgSaveFailed)
		return
	}
	httpjson.OK(w, http.StatusOK, "Donor deleted.")
}
