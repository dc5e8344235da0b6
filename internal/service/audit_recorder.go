package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
	"github.com/Juliodvp29/task-management-api/internal/domain/models"
)

// AuditRecorder writes best-effort audit entries. A failed insert is
// logged and dropped so auditing can never fail the request it describes.
type AuditRecorder struct {
	repo   interfaces.AuditLogRepository
	logger *zap.Logger
}

func NewAuditRecorder(repo interfaces.AuditLogRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, logger: logger}
}

func (a *AuditRecorder) Record(ctx context.Context, userID *int64, action, status string, details map[string]interface{}, ip, userAgent string) {
	if a == nil || a.repo == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Status:    status,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := a.repo.Insert(ctx, entry); err != nil {
		a.logger.Error("failed to record audit entry",
			zap.String("action", action),
			zap.String("status", status),
			zap.Error(err),
		)
	}
}
