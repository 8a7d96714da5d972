package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Messano/brain-hr-hub/internal/cache"
	"github.com/Messano/brain-hr-hub/internal/models"
)

// PGPermissionSource reads role_permissions rows.
type PGPermissionSource struct {
	db *pgxpool.Pool
}

func NewPGPermissionSource(db *pgxpool.Pool) *PGPermissionSource {
	return &PGPermissionSource{db: db}
}

func (s *PGPermissionSource) Permissions(ctx context.Context, role models.Role) (PermissionSet, error) {
	rows, err := s.db.Query(ctx,
		`SELECT module, can_view, can_create, can_edit, can_delete
		 FROM role_permissions WHERE role = $1`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer rows.Close()

	set := make(PermissionSet)
	for rows.Next() {
		var module string
		var f ModuleFlags
		if err := rows.Scan(&module, &f.View, &f.Create, &f.Edit, &f.Delete); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		set[module] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}
	return set, nil
}

const permissionTTL = 5 * time.Minute

// CachedPermissionSource keeps permission sets in redis in front of
// another source, so every API instance sees a role_permissions change
// within the TTL even without an explicit invalidation.
type CachedPermissionSource struct {
	inner PermissionSource
	cache *cache.Cache
}

func NewCachedPermissionSource(inner PermissionSource, c *cache.Cache) *CachedPermissionSource {
	return &CachedPermissionSource{inner: inner, cache: c}
}

func permissionKey(role models.Role) string {
	return "hrhub:permissions:" + string(role)
}

func (s *CachedPermissionSource) Permissions(ctx context.Context, role models.Role) (PermissionSet, error) {
	var set PermissionSet
	if err := s.cache.Get(ctx, permissionKey(role), &set); err == nil {
		return set, nil
	}

	set, err := s.inner.Permissions(ctx, role)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, permissionKey(role), set, permissionTTL); err != nil {
		slog.Warn("permission cache set failed", "role", role, "error", err)
	}
	return set, nil
}

// Invalidate drops the redis copy for a role.
func (s *CachedPermissionSource) Invalidate(ctx context.Context, role models.Role) {
	_ = s.cache.Delete(ctx, permissionKey(role))
}
