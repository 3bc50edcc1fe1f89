package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/models"
)

// AuditJournal is the durable store behind the audit trail.
type AuditJournal interface {
	AppendAudit(ctx context.Context, e models.AuditEntry) error
	AuditTrail(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// AuditService records emergency-access grants durably and in the log.
type AuditService struct {
	journal AuditJournal
	log     *logger.Logger
}

func NewAuditService(journal AuditJournal, log *logger.Logger) *AuditService {
	return &AuditService{journal: journal, log: log}
}

func (a *AuditService) RecordEmergencyAccess(ctx context.Context, who models.Identity, path, reason string) (models.AuditEntry, error) {
	e := models.AuditEntry{
		ID:        uuid.NewString(),
		UserID:    who.ID,
		UserName:  who.Name,
		Role:      who.Role,
		Path:      path,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	err := a.journal.AppendAudit(ctx, e)
	a.log.Audit(who.ID, "emergency_access", path, err == nil, map[string]interface{}{
		"audit_id": e.ID,
		"role":     who.Role,
		"reason":   reason,
	})
	return e, err
}

func (a *AuditService) Trail(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	return a.journal.AuditTrail(ctx, limit)
}
