package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/training"
)

type TrainingHandler struct {
	svc *training.Service
}

func NewTrainingHandler(svc *training.Service) *TrainingHandler {
	return &TrainingHandler{svc: svc}
}

func (h *TrainingHandler) List(w http.ResponseWriter, r *http.Request) {
	trainings, err := h.svc.List(r.Context(), training.Filter{Status: r.URL.Query().Get("status")})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trainings": trainings, "count": len(trainings)})
}

func (h *TrainingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	t, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TrainingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req training.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TrainingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	var req training.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TrainingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TrainingHandler) Participants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	participants, err := h.svc.Participants(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"participants": participants, "count": len(participants)})
}

func (h *TrainingHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	var req struct {
		PersonnelID string `json:"personnel_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	personnelID, err := uuid.Parse(req.PersonnelID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid personnel_id")
		return
	}

	p, err := h.svc.AddParticipant(r.Context(), id, personnelID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *TrainingHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid training id")
		return
	}
	participantID, ok := pathID(r, "participantID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid participant id")
		return
	}
	if err := h.svc.RemoveParticipant(r.Context(), id, participantID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
