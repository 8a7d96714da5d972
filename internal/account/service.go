package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/audit"
	"github.com/Messano/brain-hr-hub/internal/auth"
	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

const collection = "users"

// resolverInvalidator drops an in-process memoized permission set.
type resolverInvalidator interface {
	Invalidate(role models.Role)
}

// permCacheInvalidator drops the shared redis copy of a permission set.
type permCacheInvalidator interface {
	Invalidate(ctx context.Context, role models.Role)
}

type Service struct {
	store     Store
	cache     *cache.Cache
	recorder  *audit.Recorder
	resolver  resolverInvalidator
	permCache permCacheInvalidator
}

func NewService(store Store, c *cache.Cache, rec *audit.Recorder, resolver resolverInvalidator, permCache permCacheInvalidator) *Service {
	return &Service{store: store, cache: c, recorder: rec, resolver: resolver, permCache: permCache}
}

// ActorByID satisfies the authentication middleware's loader.
func (s *Service) ActorByID(ctx context.Context, id uuid.UUID) (*auth.Actor, error) {
	p, err := s.store.ProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Actor{
		ID:    p.ID,
		Email: p.Email,
		Name:  strings.TrimSpace(p.FirstName + " " + p.LastName),
		Role:  p.Role,
	}, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.Profile, error) {
	var cached []models.Profile
	if s.cache.GetCollection(ctx, collection, &cached) {
		return cached, nil
	}

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetCollection(ctx, collection, profiles)
	return profiles, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.store.ProfileByID(ctx, id)
}

type UserRequest struct {
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
}

func (req UserRequest) validate() error {
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if req.Role != "" && !req.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, req UserRequest) (*models.Profile, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	p := &models.Profile{
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	if err := s.store.UpsertUserRole(ctx, p.ID, role); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	p.Role = role

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "create", EntityType: "user", EntityID: &p.ID, NewData: p,
	})
	return p, nil
}

type UserPatch struct {
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Role      *models.Role `json:"role"`
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.Profile, error) {
	prev, err := s.store.ProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	if patch.Email != nil {
		next.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.FirstName != nil {
		next.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		next.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Role != nil {
		next.Role = *patch.Role
	}
	req := UserRequest{Email: next.Email, Role: next.Role}
	if err := req.validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateProfile(ctx, &next); err != nil {
		return nil, err
	}
	if patch.Role != nil && *patch.Role != prev.Role {
		if err := s.store.UpsertUserRole(ctx, id, *patch.Role); err != nil {
			return nil, fmt.Errorf("assign role: %w", err)
		}
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "user", EntityID: &id, OldData: prev, NewData: &next,
	})
	return &next, nil
}

// DeleteUser removes an account in two fixed steps: the role row
// first, then the profile row. There is no surrounding transaction; if
// the role delete fails the profile is untouched and the operation can
// simply be retried.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	prev, err := s.store.ProfileByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteUserRole(ctx, id); err != nil {
		return fmt.Errorf("remove role assignment: %w", err)
	}
	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateCollection(ctx, collection)
	s.recorder.Record(ctx, audit.Entry{
		Action: "delete", EntityType: "user", EntityID: &id, OldData: prev,
	})
	return nil
}

func (s *Service) RolePermissions(ctx context.Context, role models.Role) ([]models.RolePermission, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.store.RolePermissions(ctx, role)
}

type PermissionRequest struct {
	Role      models.Role `json:"role"`
	Module    string      `json:"module"`
	CanView   bool        `json:"can_view"`
	CanCreate bool        `json:"can_create"`
	CanEdit   bool        `json:"can_edit"`
	CanDelete bool        `json:"can_delete"`
}

var knownModules = func() map[string]bool {
	set := make(map[string]bool, len(auth.Modules))
	for _, m := range auth.Modules {
		set[m] = true
	}
	return set
}()

// SetPermission upserts one (role, module) row and drops every cached
// copy of that role's permission set so the change takes effect on the
// next check.
func (s *Service) SetPermission(ctx context.Context, req PermissionRequest) (*models.RolePermission, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}
	if req.Role == models.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: super_admin permissions are implicit", ErrInvalidInput)
	}
	if !knownModules[req.Module] {
		return nil, fmt.Errorf("%w: unknown module %q", ErrInvalidInput, req.Module)
	}

	rp := &models.RolePermission{
		Role:      req.Role,
		Module:    req.Module,
		CanView:   req.CanView,
		CanCreate: req.CanCreate,
		CanEdit:   req.CanEdit,
		CanDelete: req.CanDelete,
	}
	if err := s.store.UpsertRolePermission(ctx, rp); err != nil {
		return nil, err
	}

	if s.permCache != nil {
		s.permCache.Invalidate(ctx, req.Role)
	}
	if s.resolver != nil {
		s.resolver.Invalidate(req.Role)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action: "update", EntityType: "role_permission", EntityID: &rp.ID, NewData: rp,
	})
	return rp, nil
}
