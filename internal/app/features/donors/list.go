// internal/app/features/donors/list.go
package donors

import (
	"context"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /donors?q=. An empty q lists every donor, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Registry.Search(ctx, query.Get(r, "q"))
	if err != nil {
		h.ErrLog.Respond(w, r, err, apperr.MsgLoadFailed)
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Success: true, Donors: toViews(out)})
}

// ServeShow handles GET /donors/{id}.
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	id, ok := donorID(r)
	if !ok {
		h.ErrLog.Respond(w, r, apperr.ErrNotFound, apperr.MsgLoadFailed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.Registry.Get(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, err, apperr.MsgLoadFailed)
		return
	}
	httpjson.Write(w, http.StatusOK, donorResponse{Success: true, Donor: toView(d)})
}
