package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/Messano/brain-hr-hub/internal/export"
)

// ExportService is implemented by export.Service; handler tests stand
// in a stub.
type ExportService interface {
	Export(ctx context.Context, tables []string, format export.Format) (*export.Result, error)
}

type ExportHandler struct {
	svc ExportService
}

func NewExportHandler(svc ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Tables lists the exportable tables.
func (h *ExportHandler) Tables(w http.ResponseWriter, r *http.Request) {
	tables := export.Tables()
	sort.Strings(tables)
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

// Run reads the selected tables and returns one document.
func (h *ExportHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tables []string      `json:"tables"`
		Format export.Format `json:"format"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Format == "" {
		req.Format = export.FormatJSON
	}

	res, err := h.svc.Export(r.Context(), req.Tables, req.Format)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}
