package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

const relatedCachePattern = "related:*"

type teacherOptionSource interface {
	Options(ctx context.Context) ([]models.TeacherOption, error)
}

type studentOptionSource interface {
	Options(ctx context.Context) ([]models.StudentOption, error)
}

type parentOptionSource interface {
	Options(ctx context.Context) ([]models.ParentOption, error)
}

type gradeOptionSource interface {
	Options(ctx context.Context) ([]models.GradeOption, error)
}

type classOptionSource interface {
	Options(ctx context.Context) ([]models.ClassOption, error)
}

type subjectOptionSource interface {
	Options(ctx context.Context) ([]models.SubjectOption, error)
}

type lessonOptionSource interface {
	Options(ctx context.Context, teacherID string) ([]models.LessonOption, error)
}

type examOptionSource interface {
	Options(ctx context.Context) ([]models.ExamOption, error)
}

type assignmentOptionSource interface {
	Options(ctx context.Context) ([]models.AssignmentOption, error)
}

// OptionSources are the repositories feeding form dropdowns.
type OptionSources struct {
	Teachers    teacherOptionSource
	Students    studentOptionSource
	Parents     parentOptionSource
	Grades      gradeOptionSource
	Classes     classOptionSource
	Subjects    subjectOptionSource
	Lessons     lessonOptionSource
	Exams       examOptionSource
	Assignments assignmentOptionSource
}

// relatedList loads one named option list into the result.
type relatedList struct {
	name string
	load func(ctx context.Context, actor models.Actor, out *dto.RelatedData) error
}

// relatedDataResolver describes the option lists one entity form needs.
// actorScoped resolvers vary by teacher and are cached per teacher.
type relatedDataResolver struct {
	lists       []relatedList
	actorScoped bool
}

func (r relatedDataResolver) cacheKey(kind models.EntityKind, actor models.Actor) string {
	if r.actorScoped && actor.IsTeacher() {
		return "related:" + string(kind) + ":teacher:" + actor.UserID
	}
	return "related:" + string(kind) + ":all"
}

// RelatedDataService resolves the auxiliary option lists for entity forms.
type RelatedDataService struct {
	resolvers map[models.EntityKind]relatedDataResolver
	cache     *CacheService
	metrics   *MetricsService
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRelatedDataService constructs a RelatedDataService. A nil cache disables caching.
func NewRelatedDataService(sources OptionSources, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *RelatedDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelatedDataService{
		resolvers: sources.resolvers(),
		cache:     cache,
		metrics:   metrics,
		ttl:       ttl,
		logger:    logger,
	}
}

// Resolve returns the option lists for kind in mode. A list whose query fails
// is served empty and named in Degraded; only an invalid kind or mode fails the call.
func (s *RelatedDataService) Resolve(ctx context.Context, kind models.EntityKind, mode models.FormMode, actor models.Actor) (*dto.RelatedData, error) {
	resolver, ok := s.resolvers[kind]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown entity "+string(kind))
	}
	switch mode {
	case models.ModeDelete:
		return &dto.RelatedData{}, nil
	case models.ModeCreate, models.ModeUpdate:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid form mode")
	}

	key := resolver.cacheKey(kind, actor)
	var cached dto.RelatedData
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	data := &dto.RelatedData{}
	for _, list := range resolver.lists {
		if err := list.load(ctx, actor, data); err != nil {
			s.logger.Warn("related data list degraded",
				zap.String("entity", string(kind)),
				zap.String("list", list.name),
				zap.Error(err),
			)
			s.metrics.RecordRelatedDegraded(kind, list.name)
			data.Degraded = append(data.Degraded, list.name)
		}
	}

	if !data.IsDegraded() {
		_ = s.cache.Set(ctx, key, data, s.ttl)
	}
	return data, nil
}

// Invalidate drops every cached option list; called after each successful mutation.
func (s *RelatedDataService) Invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, relatedCachePattern)
}

func (src OptionSources) resolvers() map[models.EntityKind]relatedDataResolver {
	return map[models.EntityKind]relatedDataResolver{
		models.KindSubject:    {lists: []relatedList{src.teachers()}},
		models.KindClass:      {lists: []relatedList{src.teachers(), src.grades()}},
		models.KindTeacher:    {lists: []relatedList{src.subjects()}},
		models.KindStudent:    {lists: []relatedList{src.classes(), src.grades(), src.parents()}},
		models.KindExam:       {lists: []relatedList{src.lessons(true)}, actorScoped: true},
		models.KindLesson:     {lists: []relatedList{src.teachers(), src.subjects(), src.classes()}},
		models.KindResult:     {lists: []relatedList{src.students(), src.assignments(), src.exams(), src.classes(), src.teachers()}},
		models.KindAssignment: {lists: []relatedList{src.teachers(), src.classes(), src.lessons(false), src.subjects()}},
		models.KindEvent:      {lists: []relatedList{src.classes()}},
		models.KindParent:     {lists: []relatedList{src.students()}},
	}
}

func (src OptionSources) teachers() relatedList {
	return relatedList{name: "teachers", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Teachers.Options(ctx)
		out.Teachers = options
		return err
	}}
}

func (src OptionSources) students() relatedList {
	return relatedList{name: "students", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Students.Options(ctx)
		out.Students = options
		return err
	}}
}

func (src OptionSources) parents() relatedList {
	return relatedList{name: "parents", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Parents.Options(ctx)
		out.Parents = options
		return err
	}}
}

func (src OptionSources) grades() relatedList {
	return relatedList{name: "grades", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Grades.Options(ctx)
		out.Grades = options
		return err
	}}
}

func (src OptionSources) classes() relatedList {
	return relatedList{name: "classes", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Classes.Options(ctx)
		out.Classes = options
		return err
	}}
}

func (src OptionSources) subjects() relatedList {
	return relatedList{name: "subjects", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Subjects.Options(ctx)
		out.Subjects = options
		return err
	}}
}

// lessons restricts the list to the actor's own lessons when scoped and the actor is a teacher.
func (src OptionSources) lessons(scoped bool) relatedList {
	return relatedList{name: "lessons", load: func(ctx context.Context, actor models.Actor, out *dto.RelatedData) error {
		teacherID := ""
		if scoped && actor.IsTeacher() {
			teacherID = actor.UserID
		}
		options, err := src.Lessons.Options(ctx, teacherID)
		out.Lessons = options
		return err
	}}
}

func (src OptionSources) exams() relatedList {
	return relatedList{name: "exams", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Exams.Options(ctx)
		out.Exams = options
		return err
	}}
}

func (src OptionSources) assignments() relatedList {
	return relatedList{name: "assignments", load: func(ctx context.Context, _ models.Actor, out *dto.RelatedData) error {
		options, err := src.Assignments.Options(ctx)
		out.Assignments = options
		return err
	}}
}
