package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner/internal/dto"
	internalmiddleware "github.com/noah-isme/study-planner/internal/middleware"
	"github.com/noah-isme/study-planner/internal/models"
	"github.com/noah-isme/study-planner/internal/planner"
	"github.com/noah-isme/study-planner/internal/service"
	appErrors "github.com/noah-isme/study-planner/pkg/errors"
)

type planServiceMock struct {
	simulated  dto.SimulatePlanRequest
	saved      dto.SavePlanRequest
	listQuery  dto.ListPlansQuery
	listFor    string
	deleted    string
	plan       *models.StudyPlan
	err        error
	exportFile *service.ExportFile

	exportedPreview string
	exportedPlan    *models.StudyPlan
	flushed         bool
}

func (m *planServiceMock) Simulate(ctx context.Context, req dto.SimulatePlanRequest) (*dto.SimulatePlanResponse, error) {
	m.simulated = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SimulatePlanResponse{
		Mode:      service.PreviewMode,
		PlanID:    "preview-1",
		ExpiresAt: time.Now().Add(time.Minute),
		Cached:    true,
		Result:    &planner.PlanResult{Status: planner.StatusSuccess, SemesterCount: 1},
	}, nil
}

func (m *planServiceMock) Save(ctx context.Context, req dto.SavePlanRequest) (*dto.SavePlanResponse, error) {
	m.saved = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.SavePlanResponse{ID: "plan-1", Version: 2}, nil
}

func (m *planServiceMock) Get(ctx context.Context, id string) (*models.StudyPlan, error) {
	if m.plan == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
	}
	return m.plan, nil
}

func (m *planServiceMock) ListByStudent(ctx context.Context, studentID string, query dto.ListPlansQuery) ([]models.StudyPlanSummary, *models.Pagination, error) {
	m.listFor = studentID
	m.listQuery = query
	return []models.StudyPlanSummary{{ID: "plan-1", StudentID: studentID, Version: 1}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *planServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *planServiceMock) ExportPreview(id string, query dto.ExportPlanQuery) (*service.ExportFile, error) {
	m.exportedPreview = id
	if m.exportFile == nil {
		return nil, appErrors.Clone(appErrors.ErrPreviewExpired, "plan preview not found or expired")
	}
	return m.exportFile, nil
}

func (m *planServiceMock) ExportPlan(plan *models.StudyPlan, query dto.ExportPlanQuery) (*service.ExportFile, error) {
	m.exportedPlan = plan
	if m.exportFile == nil {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, "unsupported export format")
	}
	return m.exportFile, nil
}

func (m *planServiceMock) FlushResultCache(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.flushed = true
	return nil
}

func newTestContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestPlanHandlerSimulate(t *testing.T) {
	mockSvc := &planServiceMock{}
	h := &PlanHandler{service: mockSvc}
	body := []byte(`{"disciplines":[{"name":"Calculus I","code":"MAT01","semester":1,"workload":60,"type":"OBG","pre_requiriments":[],"timetables":[{"days":"SEG","hours":"AB-M","teacher":"T"}]}],"max_optative_workload":0,"strategy":"distance"}`)
	c, w := newTestContext(http.MethodPost, "/plans/simulate", body)

	h.Simulate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mockSvc.simulated.Disciplines, 1)
	assert.Equal(t, "MAT01", mockSvc.simulated.Disciplines[0].Code)
	require.NotNil(t, mockSvc.simulated.MaxOptativeWorkload)
	assert.Equal(t, 0, *mockSvc.simulated.MaxOptativeWorkload)
	assert.Equal(t, "distance", mockSvc.simulated.Strategy)

	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "preview", data["mode"])
	assert.Equal(t, "preview-1", data["plan_id"])
	result := data["result"].(map[string]interface{})
	assert.Equal(t, "success", result["prediction_status"])
	meta := envelope["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cache_hit"])
}

func TestPlanHandlerSimulateBadJSON(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{}}
	c, w := newTestContext(http.MethodPost, "/plans/simulate", []byte(`{"disciplines":`))

	h.Simulate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "VALIDATION_ERROR", envelope["error"].(map[string]interface{})["code"])
}

func TestPlanHandlerSimulateHidesInternalErrors(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{err: errors.New("pq: connection refused")}}
	c, w := newTestContext(http.MethodPost, "/plans/simulate", []byte(`{"disciplines":[]}`))

	h.Simulate(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPlanHandlerSave(t *testing.T) {
	mockSvc := &planServiceMock{}
	h := &PlanHandler{service: mockSvc}
	c, w := newTestContext(http.MethodPost, "/plans", []byte(`{"plan_id":"3f1c2a52-4a5e-4a57-9a43-0b1f3d3c2b11","student_id":"s1"}`))

	h.Save(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "s1", mockSvc.saved.StudentID)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["version"])
}

func TestPlanHandlerSaveForbidsOtherStudent(t *testing.T) {
	mockSvc := &planServiceMock{}
	h := &PlanHandler{service: mockSvc}
	c, w := newTestContext(http.MethodPost, "/plans", []byte(`{"plan_id":"3f1c2a52-4a5e-4a57-9a43-0b1f3d3c2b11","student_id":"s2"}`))
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})

	h.Save(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, mockSvc.saved.StudentID)
}

func TestPlanHandlerSavePreviewExpired(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{err: appErrors.Clone(appErrors.ErrPreviewExpired, "plan preview not found or expired")}}
	c, w := newTestContext(http.MethodPost, "/plans", []byte(`{"plan_id":"3f1c2a52-4a5e-4a57-9a43-0b1f3d3c2b11","student_id":"s1"}`))

	h.Save(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PREVIEW_EXPIRED", decodeEnvelope(t, w)["error"].(map[string]interface{})["code"])
}

func TestPlanHandlerGetRestrictsStudents(t *testing.T) {
	mockSvc := &planServiceMock{plan: &models.StudyPlan{ID: "plan-1", StudentID: "s1", Version: 1}}
	h := &PlanHandler{service: mockSvc}

	c, w := newTestContext(http.MethodGet, "/plans/plan-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "s2", Role: models.RoleStudent})
	h.Get(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = newTestContext(http.MethodGet, "/plans/plan-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "a1", Role: models.RoleAdvisor})
	h.Get(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlanHandlerGetNotFound(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{}}
	c, w := newTestContext(http.MethodGet, "/plans/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandlerListByStudent(t *testing.T) {
	mockSvc := &planServiceMock{}
	h := &PlanHandler{service: mockSvc}
	c, w := newTestContext(http.MethodGet, "/students/s1/plans?page=2&page_size=5", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.ListByStudent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", mockSvc.listFor)
	assert.Equal(t, 2, mockSvc.listQuery.Page)
	assert.Equal(t, 5, mockSvc.listQuery.PageSize)
	envelope := decodeEnvelope(t, w)
	assert.EqualValues(t, 1, envelope["pagination"].(map[string]interface{})["total_count"])
}

func TestPlanHandlerDelete(t *testing.T) {
	mockSvc := &planServiceMock{plan: &models.StudyPlan{ID: "plan-1", StudentID: "s1"}}
	h := &PlanHandler{service: mockSvc}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/plans/:id", h.Delete)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/plans/plan-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "plan-1", mockSvc.deleted)
}

func TestPlanHandlerExport(t *testing.T) {
	mockSvc := &planServiceMock{
		plan:       &models.StudyPlan{ID: "plan-1", StudentID: "s1", Version: 1},
		exportFile: &service.ExportFile{Filename: "study-plan-s1-v1.csv", ContentType: "text/csv", Data: []byte("semester,code\n")},
	}
	h := &PlanHandler{service: mockSvc}
	c, w := newTestContext(http.MethodGet, "/plans/plan-1/export?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "study-plan-s1-v1.csv")
	assert.Equal(t, "semester,code\n", w.Body.String())
	assert.Same(t, mockSvc.plan, mockSvc.exportedPlan)
}

func TestPlanHandlerExportForbidsOtherStudent(t *testing.T) {
	mockSvc := &planServiceMock{
		plan:       &models.StudyPlan{ID: "plan-1", StudentID: "s-other", Version: 1},
		exportFile: &service.ExportFile{Filename: "study-plan-s-other-v1.csv", ContentType: "text/csv", Data: []byte("secret")},
	}
	h := &PlanHandler{service: mockSvc}
	c, w := newTestContext(http.MethodGet, "/plans/plan-1/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}
	c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})

	h.Export(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Nil(t, mockSvc.exportedPlan)
}

func TestPlanHandlerExportNotFound(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{}}
	c, w := newTestContext(http.MethodGet, "/plans/missing/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Export(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandlerExportUnsupported(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{plan: &models.StudyPlan{ID: "plan-1", StudentID: "s1"}}}
	c, w := newTestContext(http.MethodGet, "/plans/plan-1/export?format=xlsx", nil)
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanHandlerExportPreview(t *testing.T) {
	mockSvc := &planServiceMock{exportFile: &service.ExportFile{Filename: "study-plan-p1.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}}
	h := &PlanHandler{service: mockSvc}
	c, w := newTestContext(http.MethodGet, "/previews/p1/export?format=pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: "p1"}}

	h.ExportPreview(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", mockSvc.exportedPreview)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestPlanHandlerExportPreviewExpired(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{}}
	c, w := newTestContext(http.MethodGet, "/previews/gone/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "gone"}}

	h.ExportPreview(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrPreviewExpired.Code)
}

func TestPlanHandlerSimulateFlat(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{}}
	body := []byte(`{"disciplines":[{"name":"Calculus I","code":"MAT01","semester":1,"workload":60,"type":"OBG","timetables":[{"days":"SEG","hours":"AB-M","teacher":"T"}]}]}`)
	c, w := newTestContext(http.MethodPost, "/simulate", body)

	h.SimulateFlat(c)

	require.Equal(t, http.StatusOK, w.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "success", result["prediction_status"])
	assert.EqualValues(t, 1, result["quantity_semester"])
	assert.NotContains(t, result, "data")
	assert.NotContains(t, result, "plan_id")
}

func TestPlanHandlerFlushCache(t *testing.T) {
	mockSvc := &planServiceMock{}
	h := &PlanHandler{service: mockSvc}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.DELETE("/cache/plans", h.FlushCache)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cache/plans", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.flushed)
}

func TestPlanHandlerFlushCacheDisabled(t *testing.T) {
	h := &PlanHandler{service: &planServiceMock{err: appErrors.Clone(appErrors.ErrFeatureDisabled, "result cache is disabled")}}
	c, w := newTestContext(http.MethodDelete, "/cache/plans", nil)

	h.FlushCache(c)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
