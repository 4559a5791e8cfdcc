package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/pkg/logger"
)

// AuditLogger is the fire-and-forget front for the audit service: a
// failed write is logged and dropped, never surfaced to the caller.
type AuditLogger struct {
	service *Service
	logger  *logger.Logger
}

func NewAuditLogger(service *Service, logger *logger.Logger) *AuditLogger {
	return &AuditLogger{
		service: service,
		logger:  logger,
	}
}

// Log records the event in the background. A nil AuditLogger drops
// everything, so callers never have to branch on wiring.
func (l *AuditLogger) Log(ctx context.Context, hospitalID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) {
	if l == nil {
		return
	}
	go func() {
		// detach from the request context so an aborted request does not
		// lose its trail
		if err := l.service.Log(context.WithoutCancel(ctx), hospitalID, action, entityType, entityID, opts); err != nil {
			l.logger.Error(err, "failed to write audit event",
				"action", action, "entity_id", entityID.String())
		}
	}()
}

func (l *AuditLogger) LogSync(ctx context.Context, hospitalID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	if l == nil {
		return nil
	}
	return l.service.Log(ctx, hospitalID, action, entityType, entityID, opts)
}
