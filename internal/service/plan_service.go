package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner/internal/dto"
	"github.com/noah-isme/study-planner/internal/loader"
	"github.com/noah-isme/study-planner/internal/models"
	"github.com/noah-isme/study-planner/internal/planner"
	appErrors "github.com/noah-isme/study-planner/pkg/errors"
)

const planCachePrefix = "planner:result:"

// PreviewMode marks a simulated plan that has not been persisted.
const PreviewMode = "preview"

type studyPlanRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.StudyPlan) error
	FindByID(ctx context.Context, id string) (*models.StudyPlan, error)
	ListByStudent(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlanSummary, int, error)
	Delete(ctx context.Context, id string) error
}

type planResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
	Enabled() bool
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// PlanServiceConfig carries the planner defaults applied to every request.
type PlanServiceConfig struct {
	Defaults planner.Config
	CacheTTL time.Duration
}

// PlanService simulates study plans, keeps previews and persists saved versions.
type PlanService struct {
	repo      studyPlanRepository
	tx        txProvider
	store     *PlanStore
	cache     planResultCache
	metrics   *MetricsService
	exporter  *ExportService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlanServiceConfig
}

// NewPlanService wires the plan service. repo and tx may be nil when
// persistence is disabled, cache when caching is disabled.
func NewPlanService(
	repo studyPlanRepository,
	tx txProvider,
	store *PlanStore,
	cache planResultCache,
	metrics *MetricsService,
	exporter *ExportService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlanServiceConfig,
) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewPlanStore(0)
	}
	if exporter == nil {
		exporter = NewExportService(logger, nil, nil)
	}
	if cfg.Defaults.MaxWorkload == 0 {
		cfg.Defaults = planner.DefaultConfig()
	}
	return &PlanService{
		repo:      repo,
		tx:        tx,
		store:     store,
		cache:     cache,
		metrics:   metrics,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// PersistenceEnabled reports whether saved plans are available.
func (s *PlanService) PersistenceEnabled() bool {
	return s.repo != nil
}

// Simulate runs the planner and stores the result as a preview.
func (s *PlanService) Simulate(ctx context.Context, req dto.SimulatePlanRequest) (*dto.SimulatePlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid simulation payload")
	}
	disciplines, err := loader.FromInputs(req.Disciplines)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	cfg, err := s.configFor(req)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	result, cached, err := s.run(ctx, disciplines, cfg)
	if err != nil {
		return nil, err
	}

	preview := s.store.Save(result)
	s.metrics.SetPreviews(s.store.Len())

	return &dto.SimulatePlanResponse{
		Mode:      PreviewMode,
		PlanID:    preview.ID,
		ExpiresAt: preview.ExpiresAt,
		Cached:    cached,
		Result:    result,
	}, nil
}

func (s *PlanService) run(ctx context.Context, disciplines []planner.Discipline, cfg planner.Config) (*planner.PlanResult, bool, error) {
	key, keyErr := Fingerprint(struct {
		Disciplines []planner.Discipline `json:"disciplines"`
		Config      planner.Config       `json:"config"`
	}{disciplines, cfg})
	if keyErr != nil {
		s.logger.Warn("plan fingerprint failed", zap.Error(keyErr))
	}

	if s.cache != nil && keyErr == nil {
		var cachedResult planner.PlanResult
		hit, err := s.cache.Get(ctx, planCachePrefix+key, &cachedResult)
		if err == nil && hit {
			return &cachedResult, true, nil
		}
	}

	p := planner.New(cfg, planner.WithObserver(NewZapObserver(s.logger)))
	strategy := string(p.Config().Strategy)
	start := time.Now()
	result, err := p.Plan(disciplines)
	duration := time.Since(start)
	if err != nil {
		s.metrics.ObservePlannerRun(strategy, "invalid", 0, duration)
		return nil, false, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	s.metrics.ObservePlannerRun(result.Strategy, string(result.Status), result.SemesterCount, duration)
	s.logger.Info("plan simulated",
		zap.String("strategy", result.Strategy),
		zap.String("status", string(result.Status)),
		zap.Int("semesters", result.SemesterCount),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Duration("duration", duration),
	)

	if s.cache != nil && keyErr == nil {
		_ = s.cache.Set(ctx, planCachePrefix+key, result, s.cfg.CacheTTL)
	}
	return result, false, nil
}

func (s *PlanService) configFor(req dto.SimulatePlanRequest) (planner.Config, error) {
	cfg := s.cfg.Defaults
	cfg.PreferredPeriods = append([]planner.Period(nil), s.cfg.Defaults.PreferredPeriods...)

	if len(req.PreferredPeriods) > 0 {
		cfg.PreferredPeriods = cfg.PreferredPeriods[:0]
		for _, raw := range req.PreferredPeriods {
			period, err := planner.ParsePeriod(raw)
			if err != nil {
				return cfg, err
			}
			cfg.PreferredPeriods = append(cfg.PreferredPeriods, period)
		}
	}
	if req.MaxWorkload != nil {
		cfg.MaxWorkload = *req.MaxWorkload
	}
	if req.MaxOptativeWorkload != nil {
		cfg.MaxElectiveWorkload = *req.MaxOptativeWorkload
	}
	if req.CurrentStudentSemester != nil {
		cfg.CurrentStudentSemester = *req.CurrentStudentSemester
	}
	if req.IgnoreTCCPeriodFilter != nil {
		cfg.BypassCapstone = *req.IgnoreTCCPeriodFilter
	}
	if req.Strategy != "" {
		strategy, err := planner.ParseStrategy(req.Strategy)
		if err != nil {
			return cfg, err
		}
		cfg.Strategy = strategy
	}
	return cfg, nil
}

// Save persists a preview as the next plan version of a student.
func (s *PlanService) Save(ctx context.Context, req dto.SavePlanRequest) (*dto.SavePlanResponse, error) {
	if !s.PersistenceEnabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "plan persistence is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save plan payload")
	}
	preview, ok := s.store.Get(req.PlanID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreviewExpired, "plan preview not found or expired")
	}

	payload, err := json.Marshal(preview.Result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode plan result")
	}
	record := &models.StudyPlan{
		StudentID:         req.StudentID,
		Status:            string(preview.Result.Status),
		Strategy:          preview.Result.Strategy,
		SemesterCount:     preview.Result.SemesterCount,
		ElectiveRemaining: preview.Result.ElectiveRemaining,
		Result:            types.JSONText(payload),
	}

	if err := s.createVersioned(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save study plan")
	}

	s.store.Delete(req.PlanID)
	s.metrics.SetPreviews(s.store.Len())
	s.logger.Info("plan saved", zap.String("id", record.ID), zap.String("student_id", record.StudentID), zap.Int("version", record.Version))
	return &dto.SavePlanResponse{ID: record.ID, Version: record.Version}, nil
}

func (s *PlanService) createVersioned(ctx context.Context, record *models.StudyPlan) (err error) {
	if s.tx == nil {
		return s.repo.CreateVersioned(ctx, nil, record)
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.repo.CreateVersioned(ctx, tx, record); err != nil {
		return err
	}
	return tx.Commit()
}

// Get loads a stored plan.
func (s *PlanService) Get(ctx context.Context, id string) (*models.StudyPlan, error) {
	if !s.PersistenceEnabled() {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "plan persistence is disabled")
	}
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}
	return plan, nil
}

// ListByStudent pages through a student's stored versions, newest first.
func (s *PlanService) ListByStudent(ctx context.Context, studentID string, query dto.ListPlansQuery) ([]models.StudyPlanSummary, *models.Pagination, error) {
	if !s.PersistenceEnabled() {
		return nil, nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "plan persistence is disabled")
	}
	if studentID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pagination")
	}
	filter := models.StudyPlanFilter{StudentID: studentID, Page: query.Page, PageSize: query.PageSize}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	plans, total, err := s.repo.ListByStudent(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list study plans")
	}
	return plans, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Delete removes a stored plan.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	if !s.PersistenceEnabled() {
		return appErrors.Clone(appErrors.ErrFeatureDisabled, "plan persistence is disabled")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete study plan")
	}
	return nil
}

// ExportPreview renders a live preview.
func (s *PlanService) ExportPreview(id string, query dto.ExportPlanQuery) (*ExportFile, error) {
	if err := s.validateExport(query); err != nil {
		return nil, err
	}
	preview, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrPreviewExpired, "plan preview not found or expired")
	}
	return s.exporter.Render(preview.Result, "study-plan-"+id, query.Format)
}

// ExportPlan renders a stored plan. Callers load it with Get first so access
// can be checked against its owner.
func (s *PlanService) ExportPlan(plan *models.StudyPlan, query dto.ExportPlanQuery) (*ExportFile, error) {
	if err := s.validateExport(query); err != nil {
		return nil, err
	}
	var result planner.PlanResult
	if err := plan.Result.Unmarshal(&result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored plan is unreadable")
	}
	name := fmt.Sprintf("study-plan-%s-v%d", plan.StudentID, plan.Version)
	return s.exporter.Render(&result, name, query.Format)
}

func (s *PlanService) validateExport(query dto.ExportPlanQuery) error {
	if err := s.validator.Struct(query); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "unsupported export format")
	}
	return nil
}

// FlushResultCache drops every cached planner result, for instance after an
// engine upgrade changes outcomes for identical inputs.
func (s *PlanService) FlushResultCache(ctx context.Context) error {
	if s.cache == nil || !s.cache.Enabled() {
		return appErrors.Clone(appErrors.ErrFeatureDisabled, "result cache is disabled")
	}
	if err := s.cache.Invalidate(ctx, planCachePrefix+"*"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flush result cache")
	}
	s.logger.Info("plan result cache flushed")
	return nil
}
