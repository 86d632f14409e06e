package api

import (
	"errors"
	"net/http"

	"github.com/caseops/caseflow-gin/internal/utils"
	"github.com/caseops/caseflow-gin/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				HandleError(c, err.Err)
			}
		}
	}
}

// HandleError 将领域错误映射为 HTTP 响应
func HandleError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError

	switch {
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		Error(c, http.StatusNotFound, "resource not found", err.Error())
	case errors.Is(err, workflow.ErrAlreadyPending):
		Error(c, http.StatusConflict, "approval already in progress", err.Error())
	case errors.Is(err, workflow.ErrNotPending):
		Error(c, http.StatusConflict, "record is not pending", err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		Error(c, http.StatusConflict, "invalid state transition", err.Error())
	case errors.Is(err, workflow.ErrUnauthorized):
		Error(c, http.StatusForbidden, "operation not permitted", err.Error())
	case errors.As(err, &validationErr):
		Error(c, http.StatusBadRequest, validationErr.Message, validationErr.Code)
	default:
		// 未识别的错误不向客户端透出细节
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("unhandled error")
		Error(c, http.StatusInternalServerError, "internal server error", "")
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}
