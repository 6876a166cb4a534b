package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// GradeRepository reads the seeded grade levels.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Options lists grades ordered by level.
func (r *GradeRepository) Options(ctx context.Context) ([]models.GradeOption, error) {
	var options []models.GradeOption
	if err := r.db.SelectContext(ctx, &options, `SELECT id, level FROM grades ORDER BY level`); err != nil {
		return nil, fmt.Errorf("list grade options: %w", err)
	}
	return options, nil
}
