package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.ExamDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.ExamDetail, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id int64) error
}

type lessonOwners interface {
	TeacherOf(ctx context.Context, lessonID int64) (string, error)
}

// ExamService manages exams. Teachers may only touch exams of their own lessons.
type ExamService struct {
	repo     examRepository
	lessons  lessonOwners
	logger   *zap.Logger
	pageSize int
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, lessons lessonOwners, logger *zap.Logger, pageSize int) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ExamService{repo: repo, lessons: lessons, logger: logger, pageSize: pageSize}
}

// List returns exams plus pagination data.
func (s *ExamService) List(ctx context.Context, filter models.ListFilter) ([]models.ExamDetail, *models.Pagination, error) {
	listDefaults(&filter, s.pageSize)
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, pageOf(filter, total), nil
}

// Get returns an exam by id.
func (s *ExamService) Get(ctx context.Context, id int64) (*models.ExamDetail, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "exam", "load")
	}
	return exam, nil
}

// Create stores an exam after checking the actor may schedule on its lesson.
func (s *ExamService) Create(ctx context.Context, actor models.Actor, exam *models.Exam) (*models.Exam, error) {
	if err := s.authorizeLesson(ctx, actor, exam.LessonID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, storeError(err, "exam", "create")
	}
	return exam, nil
}

// Update overwrites an exam. A teacher must own both the current and the target lesson.
func (s *ExamService) Update(ctx context.Context, actor models.Actor, id int64, exam *models.Exam) (*models.Exam, error) {
	if actor.IsTeacher() {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, storeError(err, "exam", "load")
		}
		if current.TeacherID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "exam belongs to another teacher")
		}
		if err := s.authorizeLesson(ctx, actor, exam.LessonID); err != nil {
			return nil, err
		}
	}

	exam.ID = id
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, storeError(err, "exam", "update")
	}
	return exam, nil
}

// Delete removes an exam. A teacher may only remove exams of their own lessons.
func (s *ExamService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if actor.IsTeacher() {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return storeError(err, "exam", "load")
		}
		if current.TeacherID != actor.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "exam belongs to another teacher")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "exam", "delete")
	}
	return nil
}

func (s *ExamService) authorizeLesson(ctx context.Context, actor models.Actor, lessonID int64) error {
	if !actor.IsTeacher() {
		return nil
	}
	teacherID, err := s.lessons.TeacherOf(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	if teacherID != actor.UserID {
		s.logger.Warn("exam targets another teacher's lesson", zap.String("actor", actor.UserID), zap.Int64("lesson_id", lessonID))
		return appErrors.Clone(appErrors.ErrForbidden, "lesson belongs to another teacher")
	}
	return nil
}
