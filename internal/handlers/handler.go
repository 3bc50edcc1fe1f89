package handlers

import (
	"time"

	"github.com/harentsoaR/mediflow-portal/internal/access"
	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/mockdata"
	"github.com/harentsoaR/mediflow-portal/internal/services"
	"github.com/harentsoaR/mediflow-portal/internal/session"
)

// Handler carries the services the portal screens are built on.
type Handler struct {
	Sessions        *session.Store
	Gate            *access.Gate
	Data            *mockdata.Repository
	NotificationSvc *services.NotificationService
	AuditSvc        *services.AuditService
	Log             *logger.Logger

	// AuthTimeout bounds every session operation and the wait for a
	// session to settle.
	AuthTimeout time.Duration
}

func NewHandler(
	sessions *session.Store,
	gate *access.Gate,
	data *mockdata.Repository,
	notificationSvc *services.NotificationService,
	auditSvc *services.AuditService,
	log *logger.Logger,
	authTimeout time.Duration,
) *Handler {
	return &Handler{
		Sessions:        sessions,
		Gate:            gate,
		Data:            data,
		NotificationSvc: notificationSvc,
		AuditSvc:        auditSvc,
		Log:             log,
		AuthTimeout:     authTimeout,
	}
}
