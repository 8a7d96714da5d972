package handlers

import (
	"net/http"

	"github.com/Messano/brain-hr-hub/internal/directory"
	"github.com/Messano/brain-hr-hub/internal/models"
)

type PersonnelHandler struct {
	svc *directory.PersonnelService
}

func NewPersonnelHandler(svc *directory.PersonnelService) *PersonnelHandler {
	return &PersonnelHandler{svc: svc}
}

func (h *PersonnelHandler) List(w http.ResponseWriter, r *http.Request) {
	f := directory.PersonnelFilter{
		Search: r.URL.Query().Get("search"),
		Status: models.PersonnelStatus(r.URL.Query().Get("status")),
	}
	personnel, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"personnel": personnel, "count": len(personnel)})
}

func (h *PersonnelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid personnel id")
		return
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PersonnelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req directory.PersonnelRequest
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

func (h *PersonnelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid personnel id")
		return
	}
	var patch directory.PersonnelPatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PersonnelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid personnel id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
