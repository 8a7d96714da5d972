package handlers

import (
	"net/http"

	"github.com/Messano/brain-hr-hub/internal/directory"
	"github.com/Messano/brain-hr-hub/internal/models"
)

type ClientHandler struct {
	svc *directory.ClientService
}

func NewClientHandler(svc *directory.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	f := directory.ClientFilter{
		Search:      r.URL.Query().Get("search"),
		TaxCategory: models.TaxCategory(r.URL.Query().Get("tax_category")),
	}
	clients, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": clients, "count": len(clients)})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	client, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req directory.ClientRequest
	if !decode(w, r, &req) {
		return
	}
	client, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var patch directory.ClientPatch
	if !decode(w, r, &patch) {
		return
	}
	client, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
