// internal/app/features/export/handler.go
package export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/registry"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/exporter"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// DefaultTitle heads the PDF when none is configured.
const DefaultTitle = "Donor list"

// Handler renders the current donor list, optionally filtered by ?q=, as a
// downloadable file.
type Handler struct {
	Registry *registry.Service
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
	Title    string
	now      func() time.Time
}

func NewHandler(reg *registry.Service, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, title string, logger *zap.Logger) *Handler {
	if title == "" {
		title = DefaultTitle
	}
	return &Handler{Registry: reg, AuditLog: audit, ErrLog: errLog, Log: logger, Title: title, now: time.Now}
}

// ServePDF handles GET /donors/export.pdf.
func (h *Handler) ServePDF(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "pdf", "application/pdf", func(buf *bytes.Buffer, rows []exporter.Row, now time.Time) error {
		return exporter.WritePDF(buf, h.Title, rows, now)
	})
}

// ServeCSV handles GET /donors/export.csv.
func (h *Handler) ServeCSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "csv", "text/csv; charset=utf-8", func(buf *bytes.Buffer, rows []exporter.Row, _ time.Time) error {
		return exporter.WriteCSV(buf, rows)
	})
}

type renderFunc func(buf *bytes.Buffer, rows []exporter.Row, now time.Time) error

// serve renders into memory first so a failure can still become a JSON 500.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, format, contentType string, render renderFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	donors, err := h.Registry.Search(ctx, query.Get(r, "q"))
	if err != nil {
		h.ErrLog.Respond(w, r, err, apperr.MsgLoadFailed)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := render(&buf, exporter.RowsFromDonors(donors), now); err != nil {
		h.ErrLog.ServerError(w, r, fmt.Errorf("render %s: %w", format, err), "We could not generate the export. Please try again.")
		return
	}

	username := ""
	if u, ok := auth.CurrentUser(r); ok {
		username = u.Username
	}
	h.AuditLog.DonorsExported(r.Context(), auditlog.ActorFromRequest(r, username), format, len(donors))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="donors-%s.%s"`, now.Format("20060102"), format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
