package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/identity"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
)

type fakeIdentityProvider struct {
	mu        sync.Mutex
	seq       int
	created   []identity.NewIdentity
	updates   map[string][]identity.IdentityUpdate
	deleted   []string
	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeIdentityProvider) CreateIdentity(ctx context.Context, in identity.NewIdentity) (identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return identity.Identity{}, f.createErr
	}
	f.seq++
	f.created = append(f.created, in)
	return identity.Identity{ID: fmt.Sprintf("user_%d", f.seq), Username: in.Username, Role: in.Role}, nil
}

func (f *fakeIdentityProvider) UpdateIdentity(ctx context.Context, id string, in identity.IdentityUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = make(map[string][]identity.IdentityUpdate)
	}
	f.updates[id] = append(f.updates[id], in)
	return nil
}

func (f *fakeIdentityProvider) DeleteIdentity(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeSchool backs the class and student fakes so counts stay consistent.
type fakeSchool struct {
	mu       sync.Mutex
	classes  map[int64]models.Class
	students map[string]models.Student
}

func newFakeSchool(classes ...models.Class) *fakeSchool {
	school := &fakeSchool{classes: map[int64]models.Class{}, students: map[string]models.Student{}}
	for _, class := range classes {
		school.classes[class.ID] = class
	}
	return school
}

func (s *fakeSchool) enrolled(classID int64) int {
	count := 0
	for _, student := range s.students {
		if student.ClassID == classID {
			count++
		}
	}
	return count
}

type fakeClassRepo struct {
	*fakeSchool
	findErr error
}

func (r *fakeClassRepo) FindByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	class, ok := r.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.ClassDetail{Class: class, StudentCount: r.enrolled(id)}, nil
}

type fakeStudentRepo struct {
	*fakeSchool
	createErr  error
	deleteErr  error
	dependents bool
}

func (r *fakeStudentRepo) List(ctx context.Context, filter models.ListFilter) ([]models.StudentDetail, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.StudentDetail
	for _, student := range r.students {
		if filter.ClassID != 0 && student.ClassID != filter.ClassID {
			continue
		}
		out = append(out, models.StudentDetail{Student: student})
	}
	return out, len(out), nil
}

func (r *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: student}, nil
}

// Create mirrors the repository's locked capacity re-check.
func (r *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	class, ok := r.classes[student.ClassID]
	if !ok {
		return repository.ErrClassNotFound
	}
	if r.enrolled(student.ClassID) >= class.Capacity {
		return repository.ErrClassFull
	}
	r.students[student.ID] = *student
	return nil
}

func (r *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	r.students[student.ID] = *student
	return nil
}

func (r *fakeStudentRepo) HasDependents(ctx context.Context, id string) (bool, error) {
	return r.dependents, nil
}

func (r *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.students, id)
	return nil
}

type fakeTeacherRepo struct {
	items      map[string]models.Teacher
	edges      map[string]map[int64]struct{}
	replaces   int
	deleteErr  error
	dependents bool
}

func newFakeTeacherRepo() *fakeTeacherRepo {
	return &fakeTeacherRepo{items: map[string]models.Teacher{}, edges: map[string]map[int64]struct{}{}}
}

func (r *fakeTeacherRepo) List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, int, error) {
	var out []models.Teacher
	for _, teacher := range r.items {
		out = append(out, teacher)
	}
	return out, len(out), nil
}

func (r *fakeTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	teacher.SubjectIDs = r.subjects(id)
	return &teacher, nil
}

func (r *fakeTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	r.items[teacher.ID] = *teacher
	set := map[int64]struct{}{}
	for _, id := range teacher.SubjectIDs {
		set[id] = struct{}{}
	}
	r.edges[teacher.ID] = set
	return nil
}

// Update replaces the subject set unless SubjectIDs is nil, matching TeacherRepository.Update.
func (r *fakeTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, ok := r.items[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	r.items[teacher.ID] = *teacher
	if teacher.SubjectIDs == nil {
		return nil
	}
	set := map[int64]struct{}{}
	for _, id := range teacher.SubjectIDs {
		set[id] = struct{}{}
	}
	r.edges[teacher.ID] = set
	r.replaces++
	return nil
}

func (r *fakeTeacherRepo) HasDependents(ctx context.Context, id string) (bool, error) {
	return r.dependents, nil
}

func (r *fakeTeacherRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	delete(r.edges, id)
	return nil
}

func (r *fakeTeacherRepo) subjects(id string) []int64 {
	var out []int64
	for subjectID := range r.edges[id] {
		out = append(out, subjectID)
	}
	return out
}

type fakeParentRepo struct {
	items   map[string]models.Parent
	patches []models.ParentPatch
}

// HasDependents reports students pointing at the parent, like the students.parent_id check.
func (r *fakeParentRepo) HasDependents(ctx context.Context, id string) (bool, error) {
	return len(r.items[id].StudentIDs) > 0, nil
}

func (r *fakeParentRepo) List(ctx context.Context, filter models.ListFilter) ([]models.Parent, int, error) {
	var out []models.Parent
	for _, parent := range r.items {
		out = append(out, parent)
	}
	return out, len(out), nil
}

func (r *fakeParentRepo) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	parent, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &parent, nil
}

func (r *fakeParentRepo) Create(ctx context.Context, parent *models.Parent) error {
	if r.items == nil {
		r.items = map[string]models.Parent{}
	}
	r.items[parent.ID] = *parent
	return nil
}

func (r *fakeParentRepo) Patch(ctx context.Context, id string, patch models.ParentPatch) error {
	parent, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.patches = append(r.patches, patch)
	r.items[id] = patch.Apply(parent)
	return nil
}

func (r *fakeParentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (r *fakeAuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.logs))
	for _, log := range r.logs {
		out = append(out, log.Action)
	}
	return out
}

type fakeQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *fakeQueue) TryEnqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}}
}

func (r *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.entries[key] = raw
	return nil
}

func (r *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, pattern)
	removed := len(r.entries)
	r.entries = map[string][]byte{}
	return removed, nil
}
