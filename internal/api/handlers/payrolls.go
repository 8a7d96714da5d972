package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/payroll"
)

type PayrollHandler struct {
	svc *payroll.Service
}

func NewPayrollHandler(svc *payroll.Service) *PayrollHandler {
	return &PayrollHandler{svc: svc}
}

func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	f := payroll.Filter{
		Period: r.URL.Query().Get("period"),
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("personnel_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid personnel_id")
			return
		}
		f.PersonnelID = &id
	}

	payrolls, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payrolls": payrolls, "count": len(payrolls)})
}

func (h *PayrollHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid payroll id")
		return
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PayrollHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid payroll id")
		return
	}
	var req payroll.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayrollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid payroll id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
