// internal/app/features/donors/new.go
package donors

import (
	"context"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/donorval"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
)

// HandleCreate handles POST /donors.
//
//	201 {success:true, message, donor}
//	422 {success:false, message, fieldErrors}
//	409 {success:false, message, fieldErrors:{nationalId}}
//	500 {success:false, message}
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	fields, err := httpjson.ReadFields(r, donorval.FieldHasDonatedBefore, donorval.FieldIsMarrowDonor)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Registry.Register(ctx, actor(r), donorval.Fields(fields))
	if err != nil {
		h.ErrLog.Respond(w, r, err, apperr.MsgSaveFailed)
		return
	}
	httpjson.Write(w, http.StatusCreated, donorResponse{Success: true, Message: "Donor registered.", Donor: toView(d)})
}
