package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipepdf/internal/history"
	"github.com/pageza/recipepdf/internal/models"
	"github.com/pageza/recipepdf/internal/types"
)

// recordTimeout bounds the history write after a run
const recordTimeout = 5 * time.Second

// PipelineHandler serves the analyze and extract endpoints
type PipelineHandler struct {
	pipeline IPipeline
	runs     IRunStore
	timeout  time.Duration
	logger   *zap.Logger
}

// NewPipelineHandler creates a PipelineHandler. runs may be nil.
func NewPipelineHandler(pipeline IPipeline, runs IRunStore, timeout time.Duration, logger *zap.Logger) *PipelineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineHandler{pipeline: pipeline, runs: runs, timeout: timeout, logger: logger}
}

func (h *PipelineHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/analyze", h.Analyze)
	router.POST("/extract", h.Extract)
}

// Analyze classifies the PDF without extracting anything
func (h *PipelineHandler) Analyze(c *gin.Context) {
	pdfURL, ok := bindURL(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	start := time.Now()
	result, err := h.pipeline.Analyze(ctx, pdfURL)
	h.record(c, history.FromResult(uuid.New(), pdfURL, result, nil, err, time.Since(start)))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Extract runs the full pipeline and returns the recipe and total cooking time
func (h *PipelineHandler) Extract(c *gin.Context) {
	pdfURL, ok := bindURL(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.pipeline.Run(ctx, pdfURL)
	if report != nil {
		h.record(c, history.FromResult(report.ID, pdfURL, report.Validation, report.Result, err, report.Duration))
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := types.ExtractResponse{RunID: report.ID}
	if report.Result != nil {
		resp.ExtractionResult = *report.Result
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PipelineHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// record stores the run summary. Failures are logged and do not affect the response.
func (h *PipelineHandler) record(c *gin.Context, run *models.Run) {
	if h.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), recordTimeout)
	defer cancel()
	if err := h.runs.Record(ctx, run); err != nil {
		h.logger.Warn("failed to record run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

func bindURL(c *gin.Context) (string, bool) {
	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "pdfUrl is required")
		return "", false
	}

	pdfURL := strings.TrimSpace(req.PDFURL)
	u, err := url.Parse(pdfURL)
	if err != nil || u.Host == "" {
		badRequest(c, "pdfUrl must be an absolute URL")
		return "", false
	}
	switch u.Scheme {
	case "http", "https", "s3":
	default:
		badRequest(c, "pdfUrl scheme must be http, https or s3")
		return "", false
	}
	return pdfURL, true
}
