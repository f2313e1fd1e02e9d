package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/dto"
	"github.com/NadezhdaSmurova/TaskDigest/internal/pipeline"
	"github.com/NadezhdaSmurova/TaskDigest/internal/report"
)

// Digester produces a fresh digest on demand. The pipeline runner wrapped by
// the CLI satisfies this.
type Digester interface {
	Digest(ctx context.Context) (*report.Report, *pipeline.Result, error)
}

// Handler serves the most recent digest over HTTP: the report model, the
// rendered HTML, and the raw per-channel audit events. A refresh endpoint
// (and optionally a cron schedule) re-runs the pipeline.
type Handler struct {
	digester Digester
	router   *gin.Engine
	log      *zap.Logger

	mu     sync.RWMutex
	report *report.Report
	result *pipeline.Result
}

// NewHandler creates the viewer handler with the given initial digest.
func NewHandler(digester Digester, initial *report.Report, result *pipeline.Result, log *zap.Logger) *Handler {
	h := &Handler{
		digester: digester,
		router:   gin.Default(),
		log:      log,
		report:   initial,
		result:   result,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.GET("/", h.getReportHTML)
	h.router.GET("/report", h.getReport)
	h.router.GET("/events/:channel", h.getEvents)
	h.router.POST("/refresh", h.refresh)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// getReport handles GET /report
func (h *Handler) getReport(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.report == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "no_digest",
			Message: "no digest has been generated yet",
		})
		return
	}
	c.JSON(http.StatusOK, h.report)
}

// getReportHTML handles GET /
func (h *Handler) getReportHTML(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.report == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "no_digest",
			Message: "no digest has been generated yet",
		})
		return
	}

	html, err := report.RenderHTML(h.report)
	if err != nil {
		h.log.Error("Failed to render report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// getEvents handles GET /events/:channel
func (h *Handler) getEvents(c *gin.Context) {
	channel := domain.Channel(c.Param("channel"))
	switch channel {
	case domain.ChannelEmail, domain.ChannelSlack, domain.ChannelStandup:
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: "unknown channel: " + c.Param("channel"),
		})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.result == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "no_digest",
			Message: "no digest has been generated yet",
		})
		return
	}

	events := h.result.Events[channel]
	if events == nil {
		events = []domain.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// refresh handles POST /refresh
func (h *Handler) refresh(c *gin.Context) {
	if err := h.Refresh(c.Request.Context()); err != nil {
		h.log.Error("Failed to refresh digest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c.JSON(http.StatusOK, dto.RefreshResponse{
		RunID:  h.result.RunID,
		Items:  len(h.result.Items),
		Status: "refreshed",
	})
}

// Refresh re-runs the digest and swaps the served snapshot.
func (h *Handler) Refresh(ctx context.Context) error {
	rep, result, err := h.digester.Digest(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.report = rep
	h.result = result
	h.mu.Unlock()

	h.log.Info("Digest refreshed",
		zap.String("run_id", result.RunID),
		zap.Int("items", len(result.Items)))
	return nil
}
