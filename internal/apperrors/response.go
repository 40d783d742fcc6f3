package apperrors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the uniform JSON response shape
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *AppError   `json:"error,omitempty"`
}

// OK writes a success envelope
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Respond converts err into an error envelope. Errors outside the taxonomy
// are reported as 500 with a generic message.
func Respond(c *gin.Context, logger *zap.Logger, err error) {
	appErr, ok := As(err)
	if !ok {
		appErr = Internal(err)
	}

	if appErr.HTTPCode >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", string(appErr.Code)),
			zap.Error(err))
	} else {
		logger.Debug("request rejected",
			zap.String("path", c.FullPath()),
			zap.String("code", string(appErr.Code)),
			zap.String("message", appErr.Message))
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, Envelope{Success: false, Error: appErr})
}
