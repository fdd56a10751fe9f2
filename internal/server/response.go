package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/answerlens/internal/apperrors"
	"github.com/skillsenselab/answerlens/internal/logger"
)

// respondWithError inspects err: if it is an *apperrors.AppError the status
// and structured body are derived automatically; otherwise a generic 500 is
// sent. Causes are logged, never serialized.
func respondWithError(c *gin.Context, log *logger.Logger, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.WithError(appErr).Error("Request failed", logger.Fields(
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		))
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
