package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/contract"
	"github.com/Messano/brain-hr-hub/internal/models"
	"github.com/Messano/brain-hr-hub/internal/queue"
)

type ContractHandler struct {
	svc   *contract.Service
	queue *queue.Client
}

func NewContractHandler(svc *contract.Service, qc *queue.Client) *ContractHandler {
	return &ContractHandler{svc: svc, queue: qc}
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	f := contract.Filter{
		Status: models.ContractStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid client_id")
			return
		}
		f.ClientID = &id
	}
	if raw := r.URL.Query().Get("personnel_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid personnel_id")
			return
		}
		f.PersonnelID = &id
	}

	contracts, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contracts": contracts, "count": len(contracts)})
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contract.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	var req contract.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExpireSweep queues an immediate end-date sweep instead of waiting
// for the nightly run.
func (h *ContractHandler) ExpireSweep(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.EnqueueContractExpire(); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// History returns the change log of one contract, newest entry first.
func (h *ContractHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	entries, err := h.svc.History(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	type entryView struct {
		models.ContractHistoryEntry
		Display map[string]map[string]string `json:"display,omitempty"`
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		v := entryView{ContractHistoryEntry: e}
		if len(e.Changes) > 0 {
			v.Display = make(map[string]map[string]string, len(e.Changes))
			for field, ch := range e.Changes {
				v.Display[field] = map[string]string{
					"old": contract.FormatValue(ch.Old),
					"new": contract.FormatValue(ch.New),
				}
			}
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": views, "count": len(views)})
}
