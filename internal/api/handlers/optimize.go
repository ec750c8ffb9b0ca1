package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/nfl-lineup-optimizer/internal/optimizer"
	"github.com/jstittsworth/nfl-lineup-optimizer/internal/pool"
	"github.com/jstittsworth/nfl-lineup-optimizer/internal/report"
	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/cache"
	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/config"
	"github.com/jstittsworth/nfl-lineup-optimizer/pkg/utils"
)

// OptimizeRequest carries the projection rows plus per-request
// overrides of the configured defaults. Absent overrides fall back to
// the server config.
type OptimizeRequest struct {
	Players []pool.Candidate `json:"players" binding:"required"`
	Exclude []string         `json:"exclude"`

	SalaryCap           *int     `json:"salary_cap"`
	MinSalary           *int     `json:"min_salary"`
	MaxPerTeam          *int     `json:"max_per_team"`
	QBStackMin          *int     `json:"qb_stack_min"`
	BringBack           *bool    `json:"bring_back"`
	NoRBVsOppDST        *bool    `json:"no_rb_vs_opp_dst"`
	NumLineups          *int     `json:"num_lineups"`
	UniquenessThreshold *int     `json:"uniqueness_threshold"`
	MaxExposureFraction *float64 `json:"max_exposure_fraction"`
	RandomnessAmplitude *float64 `json:"randomness_amplitude"`
	Seed                *uint64  `json:"seed"`
}

// OptimizeHandler serves lineup and portfolio generation.
type OptimizeHandler struct {
	config *config.Config
	cache  *cache.PortfolioCacheService
	logger *logrus.Logger
}

func NewOptimizeHandler(cfg *config.Config, cacheService *cache.PortfolioCacheService, logger *logrus.Logger) *OptimizeHandler {
	return &OptimizeHandler{
		config: cfg,
		cache:  cacheService,
		logger: logger,
	}
}

func (h *OptimizeHandler) lineupConfig(req *OptimizeRequest) optimizer.LineupConfig {
	cfg := optimizer.LineupConfig{
		SalaryCap:           h.config.SalaryCap,
		MinSalary:           h.config.MinSalary,
		MaxPerTeam:          h.config.MaxPerTeam,
		QBStackMin:          h.config.QBStackMin,
		BringBack:           h.config.BringBack,
		NoRBVsOppDST:        h.config.NoRBVsOppDST,
		NumLineups:          h.config.NumLineups,
		UniquenessThreshold: h.config.UniquenessThreshold,
		MaxExposureFraction: h.config.MaxExposure,
		RandomnessAmplitude: h.config.Randomness,
		SolveTimeout:        h.config.SolveTimeout,
		RunTimeout:          h.config.RunTimeout,
	}
	if req.SalaryCap != nil {
		cfg.SalaryCap = *req.SalaryCap
	}
	if req.MinSalary != nil {
		cfg.MinSalary = *req.MinSalary
	}
	if req.MaxPerTeam != nil {
		cfg.MaxPerTeam = *req.MaxPerTeam
	}
	if req.QBStackMin != nil {
		cfg.QBStackMin = *req.QBStackMin
	}
	if req.BringBack != nil {
		cfg.BringBack = *req.BringBack
	}
	if req.NoRBVsOppDST != nil {
		cfg.NoRBVsOppDST = *req.NoRBVsOppDST
	}
	if req.NumLineups != nil {
		cfg.NumLineups = *req.NumLineups
	}
	if req.UniquenessThreshold != nil {
		cfg.UniquenessThreshold = *req.UniquenessThreshold
	}
	if req.MaxExposureFraction != nil {
		cfg.MaxExposureFraction = *req.MaxExposureFraction
	}
	if req.RandomnessAmplitude != nil {
		cfg.RandomnessAmplitude = *req.RandomnessAmplitude
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	return cfg
}

func (h *OptimizeHandler) buildPool(c *gin.Context, req *OptimizeRequest) (*pool.PlayerPool, *pool.LoadReport, bool) {
	p, loadReport, err := pool.NewPool(req.Players, req.Exclude)
	if err != nil {
		utils.SendValidationError(c, "Projection rows failed validation", err.Error())
		return nil, nil, false
	}
	return p, loadReport, true
}

func (h *OptimizeHandler) sendGenerationError(c *gin.Context, err error) {
	var cfgErr *optimizer.ConfigError
	switch {
	case optimizer.IsInfeasible(err):
		utils.SendUnprocessable(c, utils.NewAppError(utils.ErrCodeInfeasible, "No lineup satisfies the constraints", err.Error()))
	case optimizer.IsSolverError(err):
		utils.SendError(c, http.StatusServiceUnavailable, utils.NewAppError(utils.ErrCodeSolver, "Solver gave up", err.Error()))
	case errors.As(err, &cfgErr):
		utils.SendValidationError(c, "Invalid optimization settings", err.Error())
	default:
		utils.SendInternalError(c, err.Error())
	}
}

// OptimizeLineup generates the single optimal lineup for the posted
// projections. Portfolio-only settings are ignored here.
func (h *OptimizeHandler) OptimizeLineup(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	p, loadReport, ok := h.buildPool(c, &req)
	if !ok {
		return
	}

	cfg := h.lineupConfig(&req)
	cfg.NumLineups = 1
	gen, err := optimizer.NewGenerator(p, cfg)
	if err != nil {
		h.sendGenerationError(c, err)
		return
	}

	lineup, err := gen.GenerateOne(c.Request.Context())
	if err != nil {
		h.sendGenerationError(c, err)
		return
	}

	utils.SendSuccess(c, gin.H{
		"lineup":      lineup,
		"load_report": loadReport,
	})
}

// GeneratePortfolio runs the full multi-lineup portfolio. Seeded runs
// are served from and written to the Redis cache when it is enabled.
func (h *OptimizeHandler) GeneratePortfolio(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	p, loadReport, ok := h.buildPool(c, &req)
	if !ok {
		return
	}

	cfg := h.lineupConfig(&req)
	gen, err := optimizer.NewGenerator(p, cfg)
	if err != nil {
		h.sendGenerationError(c, err)
		return
	}

	// Only seeded runs are reproducible enough to cache.
	var cacheKey string
	cacheable := h.cache != nil && h.config.CacheEnabled && cfg.Seed != 0
	if cacheable {
		cacheKey, err = cache.RequestKey(cfg, p.Fingerprint())
		if err != nil {
			h.logger.WithError(err).Warn("Failed to derive cache key, skipping cache")
			cacheable = false
		}
	}
	if cacheable {
		if cached, err := h.cache.GetPortfolio(c.Request.Context(), cacheKey); err == nil {
			h.logger.WithField("cache_key", cacheKey).Debug("Serving portfolio from cache")
			utils.SendSuccess(c, gin.H{
				"portfolio":   cached,
				"report":      report.Build(p, cached, cfg),
				"load_report": loadReport,
				"cached":      true,
			})
			return
		}
	}

	portfolio, err := gen.Generate(c.Request.Context())
	if err != nil {
		h.sendGenerationError(c, err)
		return
	}

	if cacheable {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		expiration := time.Duration(h.config.CacheExpiration) * time.Second
		if err := h.cache.SetPortfolio(cacheCtx, cacheKey, portfolio, expiration); err != nil {
			h.logger.WithError(err).Warn("Failed to cache portfolio")
		}
	}

	utils.SendSuccess(c, gin.H{
		"portfolio":   portfolio,
		"report":      report.Build(p, portfolio, cfg),
		"load_report": loadReport,
	})
}

// GetCacheStatus reports Redis cache statistics.
func (h *OptimizeHandler) GetCacheStatus(c *gin.Context) {
	if h.cache == nil {
		utils.SendSuccess(c, gin.H{"enabled": false})
		return
	}
	utils.SendSuccess(c, h.cache.GetStatus(c.Request.Context()))
}
