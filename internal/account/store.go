// Package account manages user profiles, their role assignment, and
// the role_permissions matrix the authorization resolver reads.
package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Messano/brain-hr-hub/internal/models"
)

var (
	ErrNotFound     = errors.New("account not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the persistence surface for accounts. Role rows and profile
// rows are exposed as separate operations on purpose: user deletion
// removes them in a fixed order rather than atomically, so a failure
// never leaves a role row pointing at a deleted profile.
type Store interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	ProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	ProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, p *models.Profile) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error

	UpsertUserRole(ctx context.Context, userID uuid.UUID, role models.Role) error
	DeleteUserRole(ctx context.Context, userID uuid.UUID) error

	RolePermissions(ctx context.Context, role models.Role) ([]models.RolePermission, error)
	UpsertRolePermission(ctx context.Context, rp *models.RolePermission) error
}
