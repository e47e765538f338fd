package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/study-planner/internal/models"
)

const defaultPlanPageSize = 20

// StudyPlanRepository persists versioned study plans per student.
type StudyPlanRepository struct {
	db *sqlx.DB
}

// NewStudyPlanRepository constructs repository.
func NewStudyPlanRepository(db *sqlx.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

func (r *StudyPlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a plan assigning the next version for the student.
func (r *StudyPlanRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.StudyPlan) error {
	if plan == nil {
		return fmt.Errorf("study plan payload is nil")
	}
	if plan.StudentID == "" {
		return fmt.Errorf("student_id is required")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if len(plan.Result) == 0 {
		plan.Result = types.JSONText(`{}`)
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM study_plans WHERE student_id = $1`
	if err := sqlx.GetContext(ctx, target, &plan.Version, nextVersionQuery, plan.StudentID); err != nil {
		return fmt.Errorf("compute next study plan version: %w", err)
	}

	const insertQuery = `
INSERT INTO study_plans (id, student_id, version, status, strategy, semester_count, elective_remaining, result, created_at)
VALUES (:id, :student_id, :version, :status, :strategy, :semester_count, :elective_remaining, :result, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, plan); err != nil {
		return fmt.Errorf("insert study plan: %w", err)
	}
	return nil
}

// FindByID loads a plan with its result payload.
func (r *StudyPlanRepository) FindByID(ctx context.Context, id string) (*models.StudyPlan, error) {
	const query = `SELECT id, student_id, version, status, strategy, semester_count, elective_remaining, result, created_at FROM study_plans WHERE id = $1`
	var plan models.StudyPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByStudent returns plan versions for a student, newest first.
func (r *StudyPlanRepository) ListByStudent(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlanSummary, int, error) {
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPlanPageSize
	}

	const countQuery = `SELECT COUNT(*) FROM study_plans WHERE student_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, filter.StudentID); err != nil {
		return nil, 0, fmt.Errorf("count study plans: %w", err)
	}

	const listQuery = `SELECT id, student_id, version, status, strategy, semester_count, elective_remaining, created_at FROM study_plans WHERE student_id = $1 ORDER BY version DESC LIMIT $2 OFFSET $3`
	plans := make([]models.StudyPlanSummary, 0)
	if err := r.db.SelectContext(ctx, &plans, listQuery, filter.StudentID, size, (page-1)*size); err != nil {
		return nil, 0, fmt.Errorf("list study plans: %w", err)
	}
	return plans, total, nil
}

// Delete removes a stored plan version.
func (r *StudyPlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM study_plans WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete study plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("study plan rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
