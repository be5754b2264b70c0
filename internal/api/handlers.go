package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compstone/server/internal/database"
	"compstone/server/internal/geocoding"
	"compstone/server/internal/geometry"
	"compstone/server/internal/models"
	"compstone/server/internal/valuation"
)

type Handler struct {
	db       *database.Database
	manager  *Manager
	logger   *logrus.Logger
	geocoder *geocoding.Geocoder
	areas    *geometry.MarketAreaBuilder
}

type StrategyRequest struct {
	Strategy string `json:"strategy" binding:"required"`
}

type RateRequest struct {
	RatePercent float64 `json:"rate_percent" binding:"required"`
}

type SessionRequest struct {
	TargetID int64 `json:"target_id" binding:"required"`
}

func NewHandler(db *database.Database, manager *Manager, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	cacheDir := filepath.Join(os.TempDir(), "compstone", "geocode_cache")

	return &Handler{
		db:       db,
		manager:  manager,
		logger:   logger,
		geocoder: geocoding.NewGeocoder(logger, cacheDir),
		areas:    geometry.NewMarketAreaBuilder(logger),
	}
}

// sessionID resolves the session query parameter; empty means the default
// session.
func sessionID(c *gin.Context) string {
	return c.Query("session")
}

// GetComps returns every comp in the session with its derived figures
// (adjusted price, unit prices, weight percent, flags).
func (h *Handler) GetComps(c *gin.Context) {
	var comps []*models.Property
	err := h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		// Copy under the lock; marshaling happens after it is released and
		// must not observe a concurrent recompute mid-rewrite.
		comps = s.CompsSnapshot()
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get comps")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, comps)
}

// GetEstimate returns the blended estimate for the session.
func (h *Handler) GetEstimate(c *gin.Context) {
	var estimate *valuation.Estimate
	err := h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		estimate = s.Estimate
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get estimate")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if estimate == nil {
		c.JSON(http.StatusOK, gin.H{"error": "No eligible comps"})
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// GetStats returns the weighted price-per-square-foot summaries.
func (h *Handler) GetStats(c *gin.Context) {
	var building, total valuation.Summary
	var strategy valuation.Strategy
	var rate float64
	err := h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		building = s.BuildingPrices
		total = s.TotalPrices
		strategy = s.Strategy
		rate = s.AppreciationRate
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get stats")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"strategy":            strategy.String(),
		"appreciation_rate":   rate,
		"building_price_sqft": building,
		"total_price_sqft":    total,
	})
}

// GetStrategies lists the available weighting strategies.
func (h *Handler) GetStrategies(c *gin.Context) {
	strategies := valuation.Strategies()
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.String()
	}
	c.JSON(http.StatusOK, gin.H{"strategies": names})
}

// GetHeatmap returns per-comp heat intensities for the map overlay.
func (h *Handler) GetHeatmap(c *gin.Context) {
	type heatPoint struct {
		ID        int64   `json:"id"`
		Address   string  `json:"address"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Intensity float64 `json:"intensity"`
	}

	var points []heatPoint
	err := h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		for _, comp := range s.IncludedComps() {
			if !comp.HasCoordinates() {
				continue
			}
			points = append(points, heatPoint{
				ID:        comp.ID,
				Address:   comp.Address,
				Latitude:  *comp.Latitude,
				Longitude: *comp.Longitude,
				Intensity: comp.HeatIntensity,
			})
		}
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get heatmap")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetMarketArea returns the convex hull around the session's geocoded comps
// as GeoJSON.
func (h *Handler) GetMarketArea(c *gin.Context) {
	var comps []*models.Property
	err := h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		comps = s.IncludedCompsSnapshot()
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get market area")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.areas.BuildMarketArea(comps))
}

// ListSessions returns the open session ids and which one is the default.
func (h *Handler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.manager.SessionIDs(),
		"default":  h.manager.DefaultID,
	})
}

// CreateSession opens a new session over the named target.
func (h *Handler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse session request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	id, err := h.manager.CreateSession(req.TargetID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": id})
}

// ToggleComp flips a comp's inclusion in the aggregation.
func (h *Handler) ToggleComp(c *gin.Context) {
	compID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comp id"})
		return
	}

	err = h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		return s.ToggleInclusion(compID)
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to toggle comp")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ToggleDirectComp flags or unflags the single direct comparable.
func (h *Handler) ToggleDirectComp(c *gin.Context) {
	compID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comp id"})
		return
	}

	err = h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		return s.ToggleDirectComp(compID)
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to toggle direct comp")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// SetStrategy switches the session's weighting strategy.
func (h *Handler) SetStrategy(c *gin.Context) {
	var req StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse strategy request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	strategy, err := valuation.ParseStrategy(req.Strategy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		s.SetStrategy(strategy)
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to set strategy")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "strategy": strategy.String()})
}

// SetRate changes the session's annual appreciation rate. The rate arrives
// as a percentage (5 means 5%).
func (h *Handler) SetRate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse rate request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if req.RatePercent < 0 || req.RatePercent > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rate must be between 0 and 100 percent"})
		return
	}

	err := h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		s.SetRate(req.RatePercent / 100)
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to set rate")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// UpdateTarget replaces the session target's physical attributes.
func (h *Handler) UpdateTarget(c *gin.Context) {
	var target models.Property
	if err := c.ShouldBindJSON(&target); err != nil {
		h.logger.WithError(err).Error("Failed to parse target")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	err := h.manager.Do(sessionID(c), func(s *valuation.Session) error {
		s.SetTarget(&target)
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to update target")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// UpdateCoordinates geocodes comps that are missing coordinates.
func (h *Handler) UpdateCoordinates(c *gin.Context) {
	err := h.db.UpdateMissingCoordinates(h.geocoder)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update coordinates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coordinates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "Coordinates update process started",
	})
}
