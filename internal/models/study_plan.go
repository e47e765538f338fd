package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StudyPlan is a saved plan version for a student, stored in study_plans.
type StudyPlan struct {
	ID                string         `db:"id" json:"id"`
	StudentID         string         `db:"student_id" json:"student_id"`
	Version           int            `db:"version" json:"version"`
	Status            string         `db:"status" json:"status"`
	Strategy          string         `db:"strategy" json:"strategy"`
	SemesterCount     int            `db:"semester_count" json:"semester_count"`
	ElectiveRemaining int            `db:"elective_remaining" json:"elective_remaining"`
	Result            types.JSONText `db:"result" json:"result"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// StudyPlanSummary lists a plan version without its result payload.
type StudyPlanSummary struct {
	ID                string    `db:"id" json:"id"`
	StudentID         string    `db:"student_id" json:"student_id"`
	Version           int       `db:"version" json:"version"`
	Status            string    `db:"status" json:"status"`
	Strategy          string    `db:"strategy" json:"strategy"`
	SemesterCount     int       `db:"semester_count" json:"semester_count"`
	ElectiveRemaining int       `db:"elective_remaining" json:"elective_remaining"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// StudyPlanFilter captures list criteria for a student's plan versions.
type StudyPlanFilter struct {
	StudentID string
	Page      int
	PageSize  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
