package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// AuditLogRepositoryPostgres appends audit rows. Details are serialized to
// JSONB.
type AuditLogRepositoryPostgres struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepositoryPostgres(pool *pgxpool.Pool) *AuditLogRepositoryPostgres {
	return &AuditLogRepositoryPostgres{pool: pool}
}

func (r *AuditLogRepositoryPostgres) Insert(ctx context.Context, entry *models.AuditLog) error {
	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (user_id, action, status, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		entry.UserID, entry.Action, entry.Status, details, entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

var _ interfaces.AuditLogRepository = (*AuditLogRepositoryPostgres)(nil)
