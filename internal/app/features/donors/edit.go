// internal/app/features/donors/edit.go
package donors

import (
	"context"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/donorval"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
)

// HandleEdit handles PUT /donors/{id} and POST /donors/{id}/edit. Every
// mutable field must be sent; missing fields fail validation.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		h.ErrLog.Respond(w, r, apperr.ErrNotFound, apperr.MsgSaveFailed)
		return
	}
	fields, err := httpjson.ReadFields(r, donorval.FieldHasDonatedBefore, donorval.FieldIsMarrowDonor)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Registry.Edit(ctx, id, actor(r), donorval.Fields(fields))
	if err != nil {
		h.ErrLog.Respond(w, r, err, apperr.MsgSaveFailed)
		return
	}
	httpjson.Write(w, http.StatusOK, donorResponse{Success: true, Message: "Donor updated.", Donor: toView(d)})
}
