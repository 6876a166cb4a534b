package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
)

// AuditJobType tags audit records on the background queue.
const AuditJobType = "audit.record"

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type auditQueue interface {
	TryEnqueue(job jobs.Job) error
}

// AuditEntry describes one audited action before it is serialised.
type AuditEntry struct {
	Actor      models.Actor
	Action     string
	Resource   string
	ResourceID string
	OldValues  interface{}
	NewValues  interface{}
	IP         string
	UserAgent  string
}

// AuditService records audit log rows, off the request path when a queue is attached.
type AuditService struct {
	repo    auditRepository
	queue   auditQueue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService constructs an AuditService. Without a queue records are written inline.
func NewAuditService(repo auditRepository, metrics *MetricsService, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, metrics: metrics, logger: logger}
}

// AttachQueue routes subsequent records through q. The queue handler must be s.Handle.
func (s *AuditService) AttachQueue(q auditQueue) {
	s.queue = q
}

// Record builds an audit row for entry and hands it to the queue.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if s == nil {
		return
	}
	log, err := s.build(entry)
	if err != nil {
		s.logger.Warn("failed to encode audit record", zap.String("action", entry.Action), zap.String("resource", entry.Resource), zap.Error(err))
		return
	}

	if s.queue == nil {
		if err := s.repo.Create(ctx, log); err != nil {
			s.logger.Warn("failed to write audit record", zap.String("action", entry.Action), zap.Error(err))
		}
		return
	}

	if err := s.queue.TryEnqueue(jobs.Job{ID: log.ID, Type: AuditJobType, Payload: log}); err != nil {
		s.metrics.RecordAuditDropped()
		s.logger.Warn("audit record dropped", zap.String("action", entry.Action), zap.String("resource", entry.Resource), zap.Error(err))
	}
}

// RecordReconcile flags a record whose identity was removed while the store row survived.
func (s *AuditService) RecordReconcile(ctx context.Context, actor models.Actor, kind models.EntityKind, id string, cause error) {
	details := map[string]interface{}{
		"identityDeleted": true,
		"recordDeleted":   false,
	}
	if cause != nil {
		details["error"] = cause.Error()
	}
	s.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditActionReconcileRequired,
		Resource:   string(kind),
		ResourceID: id,
		NewValues:  details,
	})
}

// Handle is the queue handler persisting an audit row.
func (s *AuditService) Handle(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		s.logger.Error("unexpected audit payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

func (s *AuditService) build(entry AuditEntry) (*models.AuditLog, error) {
	log := &models.AuditLog{
		ID:        uuid.NewString(),
		Action:    entry.Action,
		Resource:  entry.Resource,
		IPAddress: entry.IP,
		UserAgent: entry.UserAgent,
	}
	if entry.Actor.UserID != "" {
		userID := entry.Actor.UserID
		log.UserID = &userID
	}
	if entry.ResourceID != "" {
		resourceID := entry.ResourceID
		log.ResourceID = &resourceID
	}
	var err error
	if entry.OldValues != nil {
		if log.OldValues, err = json.Marshal(entry.OldValues); err != nil {
			return nil, err
		}
	}
	if entry.NewValues != nil {
		if log.NewValues, err = json.Marshal(entry.NewValues); err != nil {
			return nil, err
		}
	}
	return log, nil
}
