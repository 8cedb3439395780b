package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandcatalog/internal/transport/http/middleware"
	"brandcatalog/internal/transport/http/response"
)

// writeUnexpected logs err with the request id and answers with a generic 500.
func writeUnexpected(c *gin.Context, logger *slog.Logger, op string, err error) {
	_ = c.Error(err)
	logger.ErrorContext(c.Request.Context(), op+" failed", "error", err, "request_id", middleware.RequestIDFrom(c))
	response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "internal server error")
}

func badPayload(c *gin.Context) {
	response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
}
