package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Messano/brain-hr-hub/internal/export"
)

type stubExport struct {
	calls  int
	tables []string
	res    *export.Result
	err    error
}

func (s *stubExport) Export(ctx context.Context, tables []string, format export.Format) (*export.Result, error) {
	s.calls++
	s.tables = tables
	if s.err != nil {
		return nil, s.err
	}
	if len(tables) == 0 {
		return nil, export.ErrNoTables
	}
	return s.res, nil
}

func TestExportRunEmptySelectionIsBadRequest(t *testing.T) {
	stub := &stubExport{}
	h := NewExportHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export", strings.NewReader(`{"tables":[],"format":"csv"}`))
	rec := httptest.NewRecorder()
	h.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no tables selected") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestExportRunReturnsDocument(t *testing.T) {
	stub := &stubExport{res: &export.Result{
		ContentType: "text/csv; charset=utf-8",
		Filename:    "export_2026-01-15.csv",
		Data:        []byte("=== clients ===\nid\n1\n"),
	}}
	h := NewExportHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export", strings.NewReader(`{"tables":["clients"],"format":"csv"}`))
	rec := httptest.NewRecorder()
	h.Run(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "export_2026-01-15.csv") {
		t.Fatalf("content disposition = %q", got)
	}
	if stub.calls != 1 || len(stub.tables) != 1 || stub.tables[0] != "clients" {
		t.Fatalf("service called with %v", stub.tables)
	}
}

func TestExportRunInvalidBody(t *testing.T) {
	stub := &stubExport{}
	h := NewExportHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/export", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if stub.calls != 0 {
		t.Fatal("service called despite invalid body")
	}
}
