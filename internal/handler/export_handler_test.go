package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type rosterMock struct {
	classID int64
	format  string
	err     error
}

func (m *rosterMock) ClassRoster(ctx context.Context, classID int64, format string) (*service.ExportFile, error) {
	m.classID, m.format = classID, format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "roster-1a.csv", ContentType: "text/csv", Content: []byte("#,Surname\n")}, nil
}

func TestExportHandlerRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &rosterMock{}
	r := gin.New()
	r.GET("/classes/:id/roster", NewExportHandler(mock).Roster)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes/1/roster?format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), mock.classID)
	assert.Equal(t, "csv", mock.format)
	assert.Equal(t, `attachment; filename="roster-1a.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "#,Surname\n", w.Body.String())
}

func TestExportHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/classes/:id/roster", NewExportHandler(&rosterMock{err: appErrors.Clone(appErrors.ErrNotFound, "class not found")}).Roster)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes/x/roster", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/classes/5/roster", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
