package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/Juliodvp29/task-management-api/internal/domain/errors"
	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// RoleRepositoryPostgres implements interfaces.RoleRepository for PostgreSQL.
// Permissions are stored as a JSONB array of strings.
type RoleRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewRoleRepositoryPostgres(pool *pgxpool.Pool) *RoleRepositoryPostgres {
	return &RoleRepositoryPostgres{pool: pool}
}

const roleSelectColumns = `id, name, display_name, description, permissions, is_active, created_at, updated_at`

func scanRole(row pgx.Row) (*models.Role, error) {
	role := &models.Role{}
	err := row.Scan(
		&role.ID, &role.Name, &role.DisplayName, &role.Description,
		&role.Permissions, &role.IsActive, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to scan role row: %w", err)
	}
	return role, nil
}

func (r *RoleRepositoryPostgres) FindByID(ctx context.Context, id int64) (*models.Role, error) {
	query := `SELECT ` + roleSelectColumns + ` FROM roles WHERE id = $1`
	return scanRole(r.pool.QueryRow(ctx, query, id))
}

func (r *RoleRepositoryPostgres) FindByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT ` + roleSelectColumns + ` FROM roles WHERE name = $1`
	return scanRole(r.pool.QueryRow(ctx, query, name))
}

var _ interfaces.RoleRepository = (*RoleRepositoryPostgres)(nil)
