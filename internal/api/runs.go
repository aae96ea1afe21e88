package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipepdf/internal/history"
	"github.com/pageza/recipepdf/internal/types"
)

// RunHandler serves the run history
type RunHandler struct {
	runs IRunStore
}

// NewRunHandler creates a RunHandler
func NewRunHandler(runs IRunStore) *RunHandler {
	return &RunHandler{runs: runs}
}

func (h *RunHandler) RegisterRoutes(router *gin.RouterGroup) {
	runs := router.Group("/runs")
	{
		runs.GET("", h.ListRuns)
		runs.GET("/:id", h.GetRun)
	}
}

// ListRuns returns the most recent runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := make([]types.RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, history.ToResponse(run))
	}
	c.JSON(http.StatusOK, gin.H{"runs": resp})
}

// GetRun returns one run by id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid run id")
		return
	}

	run, err := h.runs.Get(c.Request.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history.ToResponse(run))
}
