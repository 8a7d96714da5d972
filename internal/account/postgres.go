package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Messano/brain-hr-hub/internal/models"
)

// PGStore backs Store with postgres. The role lives in user_roles and
// is joined onto every profile read.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const profileColumns = `p.id, p.email, p.first_name, p.last_name, COALESCE(r.role, 'user'), p.created_at, p.updated_at`

const profileFrom = ` FROM profiles p LEFT JOIN user_roles r ON r.user_id = p.id`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.Query(ctx, `SELECT `+profileColumns+profileFrom+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *PGStore) ProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, `SELECT `+profileColumns+profileFrom+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *PGStore) ProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, `SELECT `+profileColumns+profileFrom+` WHERE p.email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return p, nil
}

func (s *PGStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO profiles (email, first_name, last_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.Email, p.FirstName, p.LastName,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PGStore) UpdateProfile(ctx context.Context, p *models.Profile) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE profiles SET email = $1, first_name = $2, last_name = $3, updated_at = now() WHERE id = $4`,
		p.Email, p.FirstName, p.LastName, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) UpsertUserRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`,
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("upsert user role: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteUserRole(ctx context.Context, userID uuid.UUID) error {
	// Absence of a role row is fine here: the profile falls back to the
	// default role, and delete must stay callable after a partial
	// earlier attempt.
	_, err := s.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user role: %w", err)
	}
	return nil
}

func (s *PGStore) RolePermissions(ctx context.Context, role models.Role) ([]models.RolePermission, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, role, module, can_view, can_create, can_edit, can_delete, created_at
		 FROM role_permissions WHERE role = $1 ORDER BY module ASC`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.RolePermission
	for rows.Next() {
		var rp models.RolePermission
		if err := rows.Scan(&rp.ID, &rp.Role, &rp.Module, &rp.CanView, &rp.CanCreate, &rp.CanEdit, &rp.CanDelete, &rp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		perms = append(perms, rp)
	}
	return perms, rows.Err()
}

func (s *PGStore) UpsertRolePermission(ctx context.Context, rp *models.RolePermission) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO role_permissions (role, module, can_view, can_create, can_edit, can_delete)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (role, module) DO UPDATE
		 SET can_view = EXCLUDED.can_view, can_create = EXCLUDED.can_create,
		     can_edit = EXCLUDED.can_edit, can_delete = EXCLUDED.can_delete
		 RETURNING id, created_at`,
		rp.Role, rp.Module, rp.CanView, rp.CanCreate, rp.CanEdit, rp.CanDelete,
	).Scan(&rp.ID, &rp.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert role permission: %w", err)
	}
	return nil
}
