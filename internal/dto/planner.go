package dto

import (
	"time"

	"github.com/noah-isme/study-planner/internal/planner"
)

// TimetableInput is a timetable offering in the curriculum wire format, with
// whitespace separated day and hour markers paired positionally.
type TimetableInput struct {
	Days    string `json:"days"`
	Hours   string `json:"hours"`
	Teacher string `json:"teacher"`
}

// DisciplineInput is one curriculum entry as submitted by clients.
type DisciplineInput struct {
	Name          string           `json:"name" validate:"required"`
	Code          string           `json:"code" validate:"required"`
	Semester      int              `json:"semester" validate:"min=0"`
	Workload      int              `json:"workload" validate:"required,min=1"`
	Type          string           `json:"type" validate:"required"`
	Attended      bool             `json:"attended"`
	Prerequisites []string         `json:"pre_requiriments"`
	Timetables    []TimetableInput `json:"timetables" validate:"dive"`
}

// SimulatePlanRequest asks for a study plan. Omitted parameters take the
// service defaults.
type SimulatePlanRequest struct {
	Disciplines            []DisciplineInput `json:"disciplines" validate:"required,min=1,dive"`
	PreferredPeriods       []string          `json:"preferred_periods" validate:"omitempty,dive,oneof=morning afternoon evening"`
	MaxWorkload            *int              `json:"max_workload" validate:"omitempty,min=1"`
	MaxOptativeWorkload    *int              `json:"max_optative_workload" validate:"omitempty,min=0"`
	CurrentStudentSemester *int              `json:"current_student_semester" validate:"omitempty,min=1"`
	IgnoreTCCPeriodFilter  *bool             `json:"ignore_tcc_period_filter"`
	Strategy               string            `json:"strategy" validate:"omitempty,oneof=score distance"`
}

// SimulatePlanResponse returns a preview that can later be saved.
type SimulatePlanResponse struct {
	Mode      string              `json:"mode"`
	PlanID    string              `json:"plan_id"`
	ExpiresAt time.Time           `json:"expires_at"`
	Cached    bool                `json:"cached"`
	Result    *planner.PlanResult `json:"result"`
}

// SavePlanRequest persists a preview for a student.
type SavePlanRequest struct {
	PlanID    string `json:"plan_id" validate:"required,uuid"`
	StudentID string `json:"student_id" validate:"required"`
}

// SavePlanResponse identifies the stored version.
type SavePlanResponse struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

// ListPlansQuery paginates a student's plan versions.
type ListPlansQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// ExportPlanQuery selects the export rendering.
type ExportPlanQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// PlanRow is one line of a CSV plan export.
type PlanRow struct {
	Semester string `csv:"semester"`
	Code     string `csv:"code"`
	Name     string `csv:"name"`
	Type     string `csv:"type"`
	Workload int    `csv:"workload"`
	Days     string `csv:"days"`
	Hours    string `csv:"hours"`
	Teacher  string `csv:"teacher"`
	Reason   string `csv:"reason"`
}
