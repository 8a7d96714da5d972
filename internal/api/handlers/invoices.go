package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/invoice"
	"github.com/Messano/brain-hr-hub/internal/models"
)

type InvoiceHandler struct {
	svc *invoice.Service
}

func NewInvoiceHandler(svc *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	f := invoice.Filter{
		Status: models.InvoiceStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid client_id")
			return
		}
		f.ClientID = &id
	}

	invoices, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices, "count": len(invoices)})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	inv, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Lines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	lines, err := h.svc.Lines(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lines": lines, "count": len(lines)})
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoice.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	inv, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var req invoice.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	inv, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GeneratePDF renders an invoice and returns it base64-encoded with
// its download filename.
func (h *InvoiceHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvoiceID uuid.UUID `json:"invoiceId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.InvoiceID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invoiceId required")
		return
	}

	res, err := h.svc.GeneratePDF(r.Context(), req.InvoiceID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"pdf":      base64.StdEncoding.EncodeToString(res.Data),
		"filename": res.Filename,
	})
}
