package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/validation"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

const genericFormError = "Something went wrong!"

type studentOrchestrator interface {
	Create(ctx context.Context, actor models.Actor, rec *models.StudentRecord) (*models.Student, error)
	Update(ctx context.Context, actor models.Actor, id string, rec *models.StudentRecord) (*models.Student, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

type teacherOrchestrator interface {
	Create(ctx context.Context, actor models.Actor, rec *models.TeacherRecord) (*models.Teacher, error)
	Update(ctx context.Context, actor models.Actor, id string, rec *models.TeacherRecord) (*models.Teacher, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

type parentOrchestrator interface {
	Create(ctx context.Context, actor models.Actor, rec *models.ParentRecord) (*models.Parent, error)
	Update(ctx context.Context, actor models.Actor, id string, patch *models.ParentPatch) (*models.Parent, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// recordOrchestrator is the create/update/delete contract of entities keyed by a serial id.
type recordOrchestrator[T any] interface {
	Create(ctx context.Context, actor models.Actor, record *T) (*T, error)
	Update(ctx context.Context, actor models.Actor, id int64, record *T) (*T, error)
	Delete(ctx context.Context, actor models.Actor, id int64) error
}

// FormOrchestrators groups the per-entity orchestrators the form workflow dispatches to.
type FormOrchestrators struct {
	Students    studentOrchestrator
	Teachers    teacherOrchestrator
	Parents     parentOrchestrator
	Classes     recordOrchestrator[models.Class]
	Subjects    recordOrchestrator[models.Subject]
	Lessons     recordOrchestrator[models.Lesson]
	Exams       recordOrchestrator[models.Exam]
	Assignments recordOrchestrator[models.Assignment]
	Results     recordOrchestrator[models.Result]
	Events      recordOrchestrator[models.Event]
}

type relatedInvalidator interface {
	Invalidate(ctx context.Context)
}

// formModule binds one entity kind to its payload decoding, validation and orchestrator.
type formModule struct {
	roles   []models.UserRole
	partial bool
	create  func(ctx context.Context, actor models.Actor, payload json.RawMessage) (interface{}, string, error)
	update  func(ctx context.Context, actor models.Actor, id string, payload json.RawMessage) (interface{}, error)
	remove  func(ctx context.Context, actor models.Actor, id string) error
}

func (m formModule) allows(role models.UserRole) bool {
	for _, allowed := range m.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// FormService runs a form submission through validation and the entity orchestrator.
type FormService struct {
	modules map[models.EntityKind]formModule
	related relatedInvalidator
	audit   *AuditService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewFormService constructs a FormService.
func NewFormService(v *validation.Validator, orchestrators FormOrchestrators, related relatedInvalidator, audit *AuditService, metrics *MetricsService, logger *zap.Logger) *FormService {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormService{
		modules: formModules(v, orchestrators),
		related: related,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
	}
}

// Submit validates and applies one submission. The returned state is never nil;
// err carries the typed failure so callers can pick the HTTP status.
func (s *FormService) Submit(ctx context.Context, sub dto.FormSubmission) (*dto.FormState, error) {
	start := time.Now()
	data, resourceID, err := s.dispatch(ctx, sub)
	if err != nil {
		state, outcome := s.failure(sub, err)
		s.metrics.ObserveFormSubmission(sub.Kind, sub.Mode, outcome, time.Since(start))
		return state, err
	}

	if s.related != nil {
		s.related.Invalidate(ctx)
	}
	s.audit.Record(ctx, AuditEntry{
		Actor:      sub.Actor,
		Action:     auditAction(sub.Mode),
		Resource:   string(sub.Kind),
		ResourceID: resourceID,
		NewValues:  data,
		IP:         sub.IP,
		UserAgent:  sub.UserAgent,
	})
	s.metrics.ObserveFormSubmission(sub.Kind, sub.Mode, OutcomeSuccess, time.Since(start))
	s.logger.Info("form submitted",
		zap.String("entity", string(sub.Kind)),
		zap.String("mode", string(sub.Mode)),
		zap.String("resource_id", resourceID),
		zap.String("actor", sub.Actor.UserID),
	)

	return &dto.FormState{Success: true, Data: data}, nil
}

func (s *FormService) dispatch(ctx context.Context, sub dto.FormSubmission) (interface{}, string, error) {
	module, ok := s.modules[sub.Kind]
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown entity "+string(sub.Kind))
	}
	if !module.allows(sub.Actor.Role) {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "not allowed to modify "+string(sub.Kind))
	}
	if sub.Partial && !module.partial {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "partial updates are not supported for "+string(sub.Kind))
	}

	switch sub.Mode {
	case models.ModeCreate:
		return module.create(ctx, sub.Actor, sub.Payload)
	case models.ModeUpdate:
		if sub.ID == "" {
			return nil, "", appErrors.Clone(appErrors.ErrValidation, "id is required")
		}
		data, err := module.update(ctx, sub.Actor, sub.ID, sub.Payload)
		return data, sub.ID, err
	case models.ModeDelete:
		if sub.ID == "" {
			return nil, "", appErrors.Clone(appErrors.ErrValidation, "id is required")
		}
		return nil, sub.ID, module.remove(ctx, sub.Actor, sub.ID)
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "invalid form mode")
	}
}

// failure converts err into the state shown on the form. Validation, capacity,
// not-found and dependent-record failures carry specific text.
func (s *FormService) failure(sub dto.FormSubmission, err error) (*dto.FormState, string) {
	appErr := appErrors.FromError(err)
	state := &dto.FormState{Success: false, Code: appErr.Code}
	outcome := OutcomeRejected

	switch appErr.Code {
	case appErrors.ErrValidation.Code:
		state.Error = appErr.Message
		state.Fields = appErr.Fields
		outcome = OutcomeInvalid
	case appErrors.ErrCapacityExceeded.Code:
		state.Error = "Class is full"
	case appErrors.ErrNotFound.Code, appErrors.ErrHasDependents.Code:
		state.Error = appErr.Message
	default:
		state.Error = genericFormError
	}

	fields := []zap.Field{
		zap.String("entity", string(sub.Kind)),
		zap.String("mode", string(sub.Mode)),
		zap.String("id", sub.ID),
		zap.String("actor", sub.Actor.UserID),
		zap.String("code", appErr.Code),
		zap.Error(err),
	}
	if appErr.Status >= 500 {
		outcome = OutcomeFailed
		s.logger.Error("form submission failed", fields...)
	} else {
		s.logger.Info("form submission rejected", fields...)
	}
	return state, outcome
}

func auditAction(mode models.FormMode) string {
	switch mode {
	case models.ModeCreate:
		return models.AuditActionCreate
	case models.ModeDelete:
		return models.AuditActionDelete
	default:
		return models.AuditActionUpdate
	}
}

func decodeForm(payload json.RawMessage, dest interface{}) error {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload")
	}
	return nil
}

var (
	adminOnly    = []models.UserRole{models.RoleAdmin}
	adminTeacher = []models.UserRole{models.RoleAdmin, models.RoleTeacher}
)

func formModules(v *validation.Validator, o FormOrchestrators) map[models.EntityKind]formModule {
	return map[models.EntityKind]formModule{
		models.KindStudent:    studentModule(v, o.Students),
		models.KindTeacher:    teacherModule(v, o.Teachers),
		models.KindParent:     parentModule(v, o.Parents),
		models.KindClass:      recordModule(adminOnly, "class", o.Classes, v.Class),
		models.KindSubject:    recordModule(adminOnly, "subject", o.Subjects, v.Subject),
		models.KindLesson:     recordModule(adminOnly, "lesson", o.Lessons, v.Lesson),
		models.KindExam:       recordModule(adminTeacher, "exam", o.Exams, v.Exam),
		models.KindAssignment: recordModule(adminTeacher, "assignment", o.Assignments, v.Assignment),
		models.KindResult:     recordModule(adminTeacher, "result", o.Results, v.Result),
		models.KindEvent:      recordModule(adminOnly, "event", o.Events, v.Event),
	}
}

// recordModule builds the module of an entity keyed by a serial id.
func recordModule[F any, T any](roles []models.UserRole, resource string, orch recordOrchestrator[T], normalize func(F) (*T, error)) formModule {
	build := func(payload json.RawMessage) (*T, error) {
		var form F
		if err := decodeForm(payload, &form); err != nil {
			return nil, err
		}
		return normalize(form)
	}

	return formModule{
		roles: roles,
		create: func(ctx context.Context, actor models.Actor, payload json.RawMessage) (interface{}, string, error) {
			record, err := build(payload)
			if err != nil {
				return nil, "", err
			}
			created, err := orch.Create(ctx, actor, record)
			if err != nil {
				return nil, "", err
			}
			return created, recordID(created), nil
		},
		update: func(ctx context.Context, actor models.Actor, rawID string, payload json.RawMessage) (interface{}, error) {
			id, err := parseID(rawID, resource)
			if err != nil {
				return nil, err
			}
			record, err := build(payload)
			if err != nil {
				return nil, err
			}
			return orch.Update(ctx, actor, id, record)
		},
		remove: func(ctx context.Context, actor models.Actor, rawID string) error {
			id, err := parseID(rawID, resource)
			if err != nil {
				return err
			}
			return orch.Delete(ctx, actor, id)
		},
	}
}

func studentModule(v *validation.Validator, orch studentOrchestrator) formModule {
	build := func(payload json.RawMessage, mode models.FormMode) (*models.StudentRecord, error) {
		var form dto.StudentForm
		if err := decodeForm(payload, &form); err != nil {
			return nil, err
		}
		return v.Student(form, mode)
	}

	return formModule{
		roles: adminOnly,
		create: func(ctx context.Context, actor models.Actor, payload json.RawMessage) (interface{}, string, error) {
			rec, err := build(payload, models.ModeCreate)
			if err != nil {
				return nil, "", err
			}
			student, err := orch.Create(ctx, actor, rec)
			if err != nil {
				return nil, "", err
			}
			return student, student.ID, nil
		},
		update: func(ctx context.Context, actor models.Actor, id string, payload json.RawMessage) (interface{}, error) {
			rec, err := build(payload, models.ModeUpdate)
			if err != nil {
				return nil, err
			}
			return orch.Update(ctx, actor, id, rec)
		},
		remove: func(ctx context.Context, actor models.Actor, id string) error {
			return orch.Delete(ctx, actor, id)
		},
	}
}

func teacherModule(v *validation.Validator, orch teacherOrchestrator) formModule {
	build := func(payload json.RawMessage, mode models.FormMode) (*models.TeacherRecord, error) {
		var form dto.TeacherForm
		if err := decodeForm(payload, &form); err != nil {
			return nil, err
		}
		return v.Teacher(form, mode)
	}

	return formModule{
		roles: adminOnly,
		create: func(ctx context.Context, actor models.Actor, payload json.RawMessage) (interface{}, string, error) {
			rec, err := build(payload, models.ModeCreate)
			if err != nil {
				return nil, "", err
			}
			teacher, err := orch.Create(ctx, actor, rec)
			if err != nil {
				return nil, "", err
			}
			return teacher, teacher.ID, nil
		},
		update: func(ctx context.Context, actor models.Actor, id string, payload json.RawMessage) (interface{}, error) {
			rec, err := build(payload, models.ModeUpdate)
			if err != nil {
				return nil, err
			}
			return orch.Update(ctx, actor, id, rec)
		},
		remove: func(ctx context.Context, actor models.Actor, id string) error {
			return orch.Delete(ctx, actor, id)
		},
	}
}

// parentModule treats every parent update as partial.
func parentModule(v *validation.Validator, orch parentOrchestrator) formModule {
	return formModule{
		roles:   adminOnly,
		partial: true,
		create: func(ctx context.Context, actor models.Actor, payload json.RawMessage) (interface{}, string, error) {
			var form dto.ParentForm
			if err := decodeForm(payload, &form); err != nil {
				return nil, "", err
			}
			rec, err := v.Parent(form, models.ModeCreate)
			if err != nil {
				return nil, "", err
			}
			parent, err := orch.Create(ctx, actor, rec)
			if err != nil {
				return nil, "", err
			}
			return parent, parent.ID, nil
		},
		update: func(ctx context.Context, actor models.Actor, id string, payload json.RawMessage) (interface{}, error) {
			var form dto.ParentPatchForm
			if err := decodeForm(payload, &form); err != nil {
				return nil, err
			}
			patch, err := v.ParentPatch(form)
			if err != nil {
				return nil, err
			}
			return orch.Update(ctx, actor, id, patch)
		},
		remove: func(ctx context.Context, actor models.Actor, id string) error {
			return orch.Delete(ctx, actor, id)
		},
	}
}

// recordID reads the serial id of a freshly created record for the audit trail.
func recordID(record interface{}) string {
	var id int64
	switch r := record.(type) {
	case *models.Class:
		id = r.ID
	case *models.Subject:
		id = r.ID
	case *models.Lesson:
		id = r.ID
	case *models.Exam:
		id = r.ID
	case *models.Assignment:
		id = r.ID
	case *models.Result:
		id = r.ID
	case *models.Event:
		id = r.ID
	default:
		return ""
	}
	return strconv.FormatInt(id, 10)
}
