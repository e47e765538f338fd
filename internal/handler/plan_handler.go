package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner/internal/dto"
	internalmiddleware "github.com/noah-isme/study-planner/internal/middleware"
	"github.com/noah-isme/study-planner/internal/models"
	"github.com/noah-isme/study-planner/internal/service"
	appErrors "github.com/noah-isme/study-planner/pkg/errors"
	"github.com/noah-isme/study-planner/pkg/logger"
	"github.com/noah-isme/study-planner/pkg/response"
)

const maxDisciplines = 1024

type planService interface {
	Simulate(ctx context.Context, req dto.SimulatePlanRequest) (*dto.SimulatePlanResponse, error)
	Save(ctx context.Context, req dto.SavePlanRequest) (*dto.SavePlanResponse, error)
	Get(ctx context.Context, id string) (*models.StudyPlan, error)
	ListByStudent(ctx context.Context, studentID string, query dto.ListPlansQuery) ([]models.StudyPlanSummary, *models.Pagination, error)
	Delete(ctx context.Context, id string) error
	ExportPreview(id string, query dto.ExportPlanQuery) (*service.ExportFile, error)
	ExportPlan(plan *models.StudyPlan, query dto.ExportPlanQuery) (*service.ExportFile, error)
	FlushResultCache(ctx context.Context) error
}

// PlanHandler exposes study plan endpoints.
type PlanHandler struct {
	service planService
	logger  *zap.Logger
}

// NewPlanHandler constructs the handler.
func NewPlanHandler(svc *service.PlanService, logger *zap.Logger) *PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanHandler{service: svc, logger: logger}
}

// Simulate godoc
// @Summary Simulate a study plan
// @Description Allocates the submitted disciplines into semesters and keeps the result as a preview that can be saved later.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.SimulatePlanRequest true "Curriculum and planning parameters"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /plans/simulate [post]
func (h *PlanHandler) Simulate(c *gin.Context) {
	result, ok := h.simulate(c)
	if !ok {
		return
	}
	internalmiddleware.SetCacheHit(c, result.Cached)
	response.JSON(c, http.StatusOK, result, nil, internalmiddleware.ExtractMeta(c))
}

// SimulateFlat godoc
// @Summary Simulate a study plan (flat result)
// @Description Same computation as /plans/simulate but responds with the bare plan result, without envelope or preview id.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.SimulatePlanRequest true "Curriculum and planning parameters"
// @Success 200 {object} planner.PlanResult
// @Failure 400 {object} response.Envelope
// @Router /simulate [post]
func (h *PlanHandler) SimulateFlat(c *gin.Context) {
	result, ok := h.simulate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result.Result)
}

func (h *PlanHandler) simulate(c *gin.Context) (*dto.SimulatePlanResponse, bool) {
	var req dto.SimulatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid simulation payload"))
		return nil, false
	}
	if len(req.Disciplines) > maxDisciplines {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "disciplines exceeds supported limit"))
		return nil, false
	}
	result, err := h.service.Simulate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return result, true
}

// Save godoc
// @Summary Save a simulated plan
// @Description Persists a live preview as the next plan version of a student.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.SavePlanRequest true "Preview to save"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans [post]
func (h *PlanHandler) Save(c *gin.Context) {
	var req dto.SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent && claims.UserID != req.StudentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students can only save their own plans"))
		return
	}
	saved, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, saved)
}

// Get godoc
// @Summary Get a stored plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !canAccessStudent(c, plan.StudentID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// ListByStudent godoc
// @Summary List a student's plan versions
// @Tags Plans
// @Produce json
// @Param id path string true "Student ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/plans [get]
func (h *PlanHandler) ListByStudent(c *gin.Context) {
	var query dto.ListPlansQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pagination"))
		return
	}
	plans, pagination, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, pagination)
}

// Delete godoc
// @Summary Delete a stored plan
// @Tags Plans
// @Param id path string true "Plan ID"
// @Success 204
// @Router /plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	plan, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !canAccessStudent(c, plan.StudentID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

// ExportPreview godoc
// @Summary Export a plan preview
// @Description Renders a live preview as CSV or PDF.
// @Tags Plans
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Preview ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /previews/{id}/export [get]
func (h *PlanHandler) ExportPreview(c *gin.Context) {
	var query dto.ExportPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.ExportPreview(c.Param("id"), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Export godoc
// @Summary Export a stored plan
// @Description Renders a saved plan version as CSV or PDF.
// @Tags Plans
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Plan ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/{id}/export [get]
func (h *PlanHandler) Export(c *gin.Context) {
	var query dto.ExportPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	plan, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !canAccessStudent(c, plan.StudentID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	file, err := h.service.ExportPlan(plan, query)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// FlushCache godoc
// @Summary Flush cached plan results
// @Tags Admin
// @Success 204
// @Failure 501 {object} response.Envelope
// @Router /cache/plans [delete]
func (h *PlanHandler) FlushCache(c *gin.Context) {
	if err := h.service.FlushResultCache(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

// canAccessStudent lets staff through and restricts students to their own
// plans. Without auth every caller is allowed.
func canAccessStudent(c *gin.Context, studentID string) bool {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleStudent {
		return true
	}
	return claims.UserID == studentID
}

// fail renders err and logs the ones clients only see as a generic failure.
func (h *PlanHandler) fail(c *gin.Context, err error) {
	if appErr := appErrors.FromError(err); appErr.Status >= http.StatusInternalServerError {
		logger.ForRequest(h.logger, c).Error("plan request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, err)
}
