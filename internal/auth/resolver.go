package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Messano/brain-hr-hub/internal/models"
)

// Module names used as the unit of permission granularity.
const (
	ModuleClients   = "clients"
	ModulePersonnel = "personnel"
	ModuleContracts = "contracts"
	ModuleInvoices  = "invoices"
	ModulePayroll   = "payroll"
	ModuleTrainings = "trainings"
	ModulePlanning  = "planning"
	ModuleUsers     = "users"
	ModuleAudit     = "audit"
	ModuleExport    = "export"
)

// Modules lists every known module name.
var Modules = []string{
	ModuleClients, ModulePersonnel, ModuleContracts, ModuleInvoices, ModulePayroll,
	ModuleTrainings, ModulePlanning, ModuleUsers, ModuleAudit, ModuleExport,
}

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ModuleFlags are the four independent permission flags for one
// (role, module) pair.
type ModuleFlags struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

func (f ModuleFlags) Allow(a Action) bool {
	switch a {
	case ActionView:
		return f.View
	case ActionCreate:
		return f.Create
	case ActionEdit:
		return f.Edit
	case ActionDelete:
		return f.Delete
	}
	return false
}

// PermissionSet maps module name to flags. A module absent from the
// set means every flag is false.
type PermissionSet map[string]ModuleFlags

// PermissionSource loads the full permission set for a role.
type PermissionSource interface {
	Permissions(ctx context.Context, role models.Role) (PermissionSet, error)
}

// Resolver answers (role, module, action) permission checks. Sets are
// fetched once per role and memoized; mutations of role_permissions go
// through Invalidate. super_admin bypasses the table entirely, and any
// load failure resolves to denied.
type Resolver struct {
	src PermissionSource

	mu     sync.RWMutex
	byRole map[models.Role]PermissionSet
}

func NewResolver(src PermissionSource) *Resolver {
	return &Resolver{
		src:    src,
		byRole: make(map[models.Role]PermissionSet),
	}
}

func (r *Resolver) HasPermission(ctx context.Context, role models.Role, module string, action Action) bool {
	if role == models.RoleSuperAdmin {
		return true
	}

	set, err := r.permissions(ctx, role)
	if err != nil {
		// Fail closed: an unloaded permission set never grants access.
		slog.Warn("permission set unavailable", "role", role, "error", err)
		return false
	}

	flags, ok := set[module]
	if !ok {
		return false
	}
	return flags.Allow(action)
}

func (r *Resolver) permissions(ctx context.Context, role models.Role) (PermissionSet, error) {
	r.mu.RLock()
	set, ok := r.byRole[role]
	r.mu.RUnlock()
	if ok {
		return set, nil
	}

	set, err := r.src.Permissions(ctx, role)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.byRole[role] = set
	r.mu.Unlock()
	return set, nil
}

// Invalidate drops the memoized set for a role after its
// role_permissions rows change.
func (r *Resolver) Invalidate(role models.Role) {
	r.mu.Lock()
	delete(r.byRole, role)
	r.mu.Unlock()
}

// InvalidateAll drops every memoized set.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	r.byRole = make(map[models.Role]PermissionSet)
	r.mu.Unlock()
}
