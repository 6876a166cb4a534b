package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
}

// EventService manages calendar events.
type EventService struct {
	repo     eventRepository
	logger   *zap.Logger
	pageSize int
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, logger *zap.Logger, pageSize int) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &EventService{repo: repo, logger: logger, pageSize: pageSize}
}

// List returns events; a class filter also keeps school-wide events.
func (s *EventService) List(ctx context.Context, filter models.ListFilter) ([]models.Event, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, pageOf(filter, total), nil
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "event", "load")
	}
	return event, nil
}

// Create stores a new event.
func (s *EventService) Create(ctx context.Context, actor models.Actor, event *models.Event) (*models.Event, error) {
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, storeError(err, "event", "create")
	}
	return event, nil
}

// Update overwrites an event.
func (s *EventService) Update(ctx context.Context, actor models.Actor, id int64, event *models.Event) (*models.Event, error) {
	event.ID = id
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, storeError(err, "event", "update")
	}
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "event", "delete")
	}
	return nil
}
