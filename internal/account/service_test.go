package account

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/models"
)

type stubStore struct {
	profiles map[uuid.UUID]models.Profile

	calls []string

	roleDeleteErr    error
	profileDeleteErr error

	upsertedPerm *models.RolePermission
}

func newStubStore() *stubStore {
	return &stubStore{profiles: make(map[uuid.UUID]models.Profile)}
}

func (s *stubStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubStore) ProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *stubStore) ProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	for _, p := range s.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	s.calls = append(s.calls, "create_profile")
	p.ID = uuid.New()
	s.profiles[p.ID] = *p
	return nil
}

func (s *stubStore) UpdateProfile(ctx context.Context, p *models.Profile) error {
	s.calls = append(s.calls, "update_profile")
	if _, ok := s.profiles[p.ID]; !ok {
		return ErrNotFound
	}
	s.profiles[p.ID] = *p
	return nil
}

func (s *stubStore) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	s.calls = append(s.calls, "delete_profile")
	if s.profileDeleteErr != nil {
		return s.profileDeleteErr
	}
	if _, ok := s.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

func (s *stubStore) UpsertUserRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	s.calls = append(s.calls, "upsert_role")
	p, ok := s.profiles[userID]
	if ok {
		p.Role = role
		s.profiles[userID] = p
	}
	return nil
}

func (s *stubStore) DeleteUserRole(ctx context.Context, userID uuid.UUID) error {
	s.calls = append(s.calls, "delete_role")
	return s.roleDeleteErr
}

func (s *stubStore) RolePermissions(ctx context.Context, role models.Role) ([]models.RolePermission, error) {
	return nil, nil
}

func (s *stubStore) UpsertRolePermission(ctx context.Context, rp *models.RolePermission) error {
	rp.ID = uuid.New()
	s.upsertedPerm = rp
	return nil
}

type stubInvalidator struct {
	roles []models.Role
}

func (i *stubInvalidator) Invalidate(role models.Role) {
	i.roles = append(i.roles, role)
}

type stubCacheInvalidator struct {
	roles []models.Role
}

func (i *stubCacheInvalidator) Invalidate(ctx context.Context, role models.Role) {
	i.roles = append(i.roles, role)
}

func seedProfile(store *stubStore, role models.Role) uuid.UUID {
	id := uuid.New()
	store.profiles[id] = models.Profile{ID: id, Email: "jean.dupont@example.fr", Role: role}
	return id
}

func TestDeleteUserRemovesRoleRowFirst(t *testing.T) {
	store := newStubStore()
	id := seedProfile(store, models.RoleManager)
	svc := NewService(store, nil, nil, nil, nil)

	if err := svc.DeleteUser(context.Background(), id); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	want := []string{"delete_role", "delete_profile"}
	if len(store.calls) != 2 || store.calls[0] != want[0] || store.calls[1] != want[1] {
		t.Fatalf("call order = %v, want %v", store.calls, want)
	}
	if _, ok := store.profiles[id]; ok {
		t.Fatal("profile still present after delete")
	}
}

func TestDeleteUserRoleFailureLeavesProfile(t *testing.T) {
	store := newStubStore()
	id := seedProfile(store, models.RoleManager)
	store.roleDeleteErr = errors.New("connection reset")
	svc := NewService(store, nil, nil, nil, nil)

	if err := svc.DeleteUser(context.Background(), id); err == nil {
		t.Fatal("expected error when role delete fails")
	}

	for _, c := range store.calls {
		if c == "delete_profile" {
			t.Fatal("profile delete attempted after role delete failed")
		}
	}
	if _, ok := store.profiles[id]; !ok {
		t.Fatal("profile removed despite failed role delete")
	}
}

func TestDeleteUserProfileFailureIsNotRolledBack(t *testing.T) {
	store := newStubStore()
	id := seedProfile(store, models.RoleManager)
	store.profileDeleteErr = errors.New("connection reset")
	svc := NewService(store, nil, nil, nil, nil)

	if err := svc.DeleteUser(context.Background(), id); err == nil {
		t.Fatal("expected error when profile delete fails")
	}

	// The role row is already gone and stays gone; a retry of the whole
	// operation is the recovery path.
	if store.calls[0] != "delete_role" {
		t.Fatalf("first call = %q, want delete_role", store.calls[0])
	}
}

func TestCreateUserDefaultsRole(t *testing.T) {
	store := newStubStore()
	svc := NewService(store, nil, nil, nil, nil)

	p, err := svc.CreateUser(context.Background(), UserRequest{Email: "marie@example.fr"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if p.Role != models.RoleUser {
		t.Fatalf("role = %q, want %q", p.Role, models.RoleUser)
	}
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	svc := NewService(newStubStore(), nil, nil, nil, nil)

	if _, err := svc.CreateUser(context.Background(), UserRequest{Email: "not-an-email"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad email: err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CreateUser(context.Background(), UserRequest{Email: "a@b.fr", Role: "root"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad role: err = %v, want ErrInvalidInput", err)
	}
}

func TestSetPermissionInvalidatesCaches(t *testing.T) {
	store := newStubStore()
	resolver := &stubInvalidator{}
	permCache := &stubCacheInvalidator{}
	svc := NewService(store, nil, nil, resolver, permCache)

	rp, err := svc.SetPermission(context.Background(), PermissionRequest{
		Role: models.RoleManager, Module: "contracts", CanView: true, CanEdit: true,
	})
	if err != nil {
		t.Fatalf("SetPermission: %v", err)
	}
	if !rp.CanView || !rp.CanEdit || rp.CanCreate || rp.CanDelete {
		t.Fatalf("flags = %+v, want view+edit only", rp)
	}
	if len(resolver.roles) != 1 || resolver.roles[0] != models.RoleManager {
		t.Fatalf("resolver invalidations = %v, want [manager]", resolver.roles)
	}
	if len(permCache.roles) != 1 || permCache.roles[0] != models.RoleManager {
		t.Fatalf("cache invalidations = %v, want [manager]", permCache.roles)
	}
}

func TestSetPermissionRejections(t *testing.T) {
	svc := NewService(newStubStore(), nil, nil, &stubInvalidator{}, &stubCacheInvalidator{})

	cases := []struct {
		name string
		req  PermissionRequest
	}{
		{"unknown role", PermissionRequest{Role: "root", Module: "contracts"}},
		{"super admin", PermissionRequest{Role: models.RoleSuperAdmin, Module: "contracts"}},
		{"unknown module", PermissionRequest{Role: models.RoleManager, Module: "billing"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SetPermission(context.Background(), tc.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}
