// internal/app/features/donors/routes.go
package donors

import (
	"github.com/dalemusser/donorhub/internal/app/features/export"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /donors. Every route requires a signed-in admin.
func Routes(h *Handler, x *export.Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Get("/export.pdf", x.ServePDF)
	r.Get("/export.csv", x.ServeCSV)

	r.Get("/{id}", h.ServeShow)
	r.Put("/{id}", h.HandleEdit)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}
