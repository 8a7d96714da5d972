package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Messano/brain-hr-hub/internal/account"
	"github.com/Messano/brain-hr-hub/internal/contract"
	"github.com/Messano/brain-hr-hub/internal/directory"
	"github.com/Messano/brain-hr-hub/internal/export"
	"github.com/Messano/brain-hr-hub/internal/invoice"
	"github.com/Messano/brain-hr-hub/internal/payroll"
	"github.com/Messano/brain-hr-hub/internal/planning"
	"github.com/Messano/brain-hr-hub/internal/training"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var notFoundErrs = []error{
	directory.ErrNotFound,
	contract.ErrNotFound,
	invoice.ErrNotFound,
	payroll.ErrNotFound,
	training.ErrNotFound,
	planning.ErrNotFound,
	account.ErrNotFound,
}

var invalidErrs = []error{
	directory.ErrInvalidInput,
	contract.ErrInvalidInput,
	invoice.ErrInvalidInput,
	payroll.ErrInvalidInput,
	training.ErrInvalidInput,
	planning.ErrInvalidInput,
	account.ErrInvalidInput,
	export.ErrNoTables,
	export.ErrUnknownTable,
}

// respondError maps service sentinels to statuses. Anything unmapped
// is logged and hidden behind a generic 500.
func respondError(w http.ResponseWriter, err error) {
	for _, sentinel := range notFoundErrs {
		if errors.Is(err, sentinel) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}
	for _, sentinel := range invalidErrs {
		if errors.Is(err, sentinel) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	var pgErr *pgconn.PgError
	// 23505 = unique_violation
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		writeError(w, http.StatusConflict, "resource already exists")
		return
	}
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
