package export_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/features/export"
	"github.com/dalemusser/donorhub/internal/app/registry"
	memstore "github.com/dalemusser/donorhub/internal/app/store/memory"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHandler(t *testing.T) (*export.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	repo := memstore.NewDonors()
	for _, d := range []struct{ first, last, dni string }{
		{"Ana", "Gómez", "30777111"},
		{"Bruno", "<b>Díaz</b>", "20111222"},
	} {
		if _, err := repo.Create(context.Background(), testutil.DonorInput(d.first, d.last, d.dni)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	audit := auditlog.New(nil, logger, auditlog.Config{Auth: "log", Admin: "log"})
	reg := registry.New(repo, nil, nil, zap.NewNop())
	return export.NewHandler(reg, audit, uierrors.NewErrorLogger(logger), "", logger), logs
}

func TestServeCSV(t *testing.T) {
	h, logs := newTestHandler(t)

	req := testutil.WithAdmin(testutil.NewRequest("GET", "/donors/export.csv"), 1, "admin")
	rec := httptest.NewRecorder()
	h.ServeCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") || !strings.HasSuffix(cd, `.csv"`) {
		t.Errorf("Content-Disposition: got %q", cd)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(records))
	}
	if records[0][0] != "First name" {
		t.Errorf("header: got %v", records[0])
	}
	// Newest first, markup stripped.
	if records[1][0] != "Bruno" || records[1][1] != "Díaz" {
		t.Errorf("first data row: got %v", records[1])
	}

	if logs.FilterField(zap.String("event_type", "donor_exported")).Len() != 1 {
		t.Error("expected one donor_exported audit entry")
	}
}

func TestServeCSV_Filtered(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.WithAdmin(testutil.NewRequest("GET", "/donors/export.csv?q=777"), 1, "admin")
	rec := httptest.NewRecorder()
	h.ServeCSV(rec, req)

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 || records[1][2] != "30777111" {
		t.Errorf("got %v", records)
	}
}

func TestServePDF(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.WithAdmin(testutil.NewRequest("GET", "/donors/export.pdf"), 1, "admin")
	rec := httptest.NewRecorder()
	h.ServePDF(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Error("body is not a PDF")
	}
}
