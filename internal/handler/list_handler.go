package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

type lister[T any] interface {
	List(ctx context.Context, filter models.ListFilter) ([]T, *models.Pagination, error)
}

// List serves one entity table page. Supported query params: page, search, classId, teacherId.
// @Summary List records of an entity
// @Tags Lists
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param search query string false "Search term"
// @Param classId query int false "Class filter"
// @Param teacherId query string false "Teacher filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [get]
// @Router /teachers [get]
// @Router /parents [get]
// @Router /classes [get]
// @Router /subjects [get]
// @Router /lessons [get]
// @Router /exams [get]
// @Router /assignments [get]
// @Router /results [get]
// @Router /events [get]
func List[T any](svc lister[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseListFilter(c)
		if err != nil {
			response.Error(c, err)
			return
		}

		items, page, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		response.JSON(c, http.StatusOK, items, page)
	}
}

func parseListFilter(c *gin.Context) (models.ListFilter, error) {
	filter := models.ListFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		TeacherID: strings.TrimSpace(c.Query("teacherId")),
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid page")
		}
		filter.Page = page
	}
	if raw := c.Query("classId"); raw != "" {
		classID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || classID < 1 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "invalid classId")
		}
		filter.ClassID = classID
	}
	return filter, nil
}
