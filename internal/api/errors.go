package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipepdf/internal/types"
)

// statusFor maps a pipeline error to an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrDownload):
		return http.StatusBadGateway
	case errors.Is(err, types.ErrTextExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrEmbedding):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	resp := types.ErrorResponse{Error: err.Error()}
	if stage, ok := types.StageOf(err); ok {
		resp.Stage = string(stage)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: msg})
}
