package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/export"
)

// Supported roster formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type rosterRepository interface {
	Roster(ctx context.Context, classID int64) ([]models.StudentDetail, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders class rosters for download.
type ExportService struct {
	students  rosterRepository
	classes   classReader
	renderers map[string]export.Renderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(students rosterRepository, classes classReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		classes:  classes,
		renderers: map[string]export.Renderer{
			FormatCSV: export.NewCSVExporter(),
			FormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// ClassRoster renders the students of a class in the requested format.
func (s *ExportService) ClassRoster(ctx context.Context, classID int64, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		return nil, storeError(err, "class", "load")
	}

	students, err := s.students.Roster(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := rosterDataset(class, students)
	content, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("roster render failed", zap.Int64("class_id", classID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("roster-%s.%s", slug(class.Name), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

func rosterDataset(class *models.ClassDetail, students []models.StudentDetail) export.Dataset {
	rows := make([][]string, 0, len(students))
	for i, st := range students {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			st.Surname,
			st.Name,
			st.Username,
			string(st.Sex),
			st.Birthday.Format("2006-01-02"),
			st.ParentName,
			stringValue(st.Phone),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Class %s roster (%d/%d)", class.Name, len(students), class.Capacity),
		Headers: []string{"#", "Surname", "Name", "Username", "Sex", "Birthday", "Parent", "Phone"},
		Rows:    rows,
	}
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "class"
	}
	return b.String()
}
