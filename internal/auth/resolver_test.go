package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/Messano/brain-hr-hub/internal/models"
)

type stubSource struct {
	sets  map[models.Role]PermissionSet
	err   error
	calls int
}

func (s *stubSource) Permissions(_ context.Context, role models.Role) (PermissionSet, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.sets[role], nil
}

func TestHasPermissionSuperAdminBypassesTable(t *testing.T) {
	src := &stubSource{err: errors.New("db down")}
	r := NewResolver(src)

	modules := []string{ModuleClients, ModuleInvoices, ModuleUsers, "unknown"}
	actions := []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}
	for _, m := range modules {
		for _, a := range actions {
			if !r.HasPermission(context.Background(), models.RoleSuperAdmin, m, a) {
				t.Errorf("super_admin denied on (%s, %s)", m, a)
			}
		}
	}
	if src.calls != 0 {
		t.Errorf("super_admin check hit the source %d times", src.calls)
	}
}

func TestHasPermissionMissingRowDeniesAll(t *testing.T) {
	src := &stubSource{sets: map[models.Role]PermissionSet{
		models.RoleManager: {
			ModuleClients: ModuleFlags{View: true, Create: true},
		},
	}}
	r := NewResolver(src)

	// No row for payroll: every action is denied.
	for _, a := range []Action{ActionView, ActionCreate, ActionEdit, ActionDelete} {
		if r.HasPermission(context.Background(), models.RoleManager, ModulePayroll, a) {
			t.Errorf("manager allowed %s on payroll without a permission row", a)
		}
	}
}

func TestHasPermissionChecksExactFlag(t *testing.T) {
	src := &stubSource{sets: map[models.Role]PermissionSet{
		models.RoleRH: {
			ModulePersonnel: ModuleFlags{View: true, Create: true, Edit: true},
		},
	}}
	r := NewResolver(src)
	ctx := context.Background()

	if !r.HasPermission(ctx, models.RoleRH, ModulePersonnel, ActionView) {
		t.Error("view should be allowed")
	}
	if !r.HasPermission(ctx, models.RoleRH, ModulePersonnel, ActionEdit) {
		t.Error("edit should be allowed")
	}
	if r.HasPermission(ctx, models.RoleRH, ModulePersonnel, ActionDelete) {
		t.Error("delete should be denied")
	}
}

func TestHasPermissionFailsClosedOnLoadError(t *testing.T) {
	src := &stubSource{err: errors.New("not loaded yet")}
	r := NewResolver(src)

	if r.HasPermission(context.Background(), models.RoleAdmin, ModuleClients, ActionView) {
		t.Error("load failure must deny access")
	}
}

func TestResolverMemoizesPerRole(t *testing.T) {
	src := &stubSource{sets: map[models.Role]PermissionSet{
		models.RoleUser: {ModulePlanning: ModuleFlags{View: true}},
	}}
	r := NewResolver(src)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r.HasPermission(ctx, models.RoleUser, ModulePlanning, ActionView)
	}
	if src.calls != 1 {
		t.Errorf("expected one source load, got %d", src.calls)
	}

	r.Invalidate(models.RoleUser)
	r.HasPermission(ctx, models.RoleUser, ModulePlanning, ActionView)
	if src.calls != 2 {
		t.Errorf("expected reload after invalidation, got %d calls", src.calls)
	}
}
