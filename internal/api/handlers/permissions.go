package handlers

import (
	"net/http"

	"github.com/Messano/brain-hr-hub/internal/account"
	"github.com/Messano/brain-hr-hub/internal/auth"
	"github.com/Messano/brain-hr-hub/internal/models"
)

type PermissionHandler struct {
	svc *account.Service
	src auth.PermissionSource
}

func NewPermissionHandler(svc *account.Service, src auth.PermissionSource) *PermissionHandler {
	return &PermissionHandler{svc: svc, src: src}
}

// ListForRole returns the stored permission rows of one role.
func (h *PermissionHandler) ListForRole(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	perms, err := h.svc.RolePermissions(r.Context(), role)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms, "count": len(perms)})
}

// Set upserts one (role, module) permission row.
func (h *PermissionHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req account.PermissionRequest
	if !decode(w, r, &req) {
		return
	}
	rp, err := h.svc.SetPermission(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rp)
}

// Me returns the effective permission set of the calling user, for the
// client to shape its navigation.
func (h *PermissionHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	if actor == nil {
		writeError(w, http.StatusUnauthorized, "no user in context")
		return
	}

	set := auth.PermissionSet{}
	if actor.Role == models.RoleSuperAdmin {
		for _, m := range auth.Modules {
			set[m] = auth.ModuleFlags{View: true, Create: true, Edit: true, Delete: true}
		}
	} else {
		loaded, err := h.src.Permissions(r.Context(), actor.Role)
		if err != nil {
			respondError(w, err)
			return
		}
		set = loaded
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role":        actor.Role,
		"permissions": set,
	})
}
