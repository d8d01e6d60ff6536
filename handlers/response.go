package handlers

import (
	"strconv"

	"waysfood-api/apperr"
	"waysfood-api/middleware"
	"waysfood-api/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint writes.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Status: "success", Message: message, Data: data})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Status: "error", Message: message})
}

// respondError maps err onto the envelope. Causes of internal errors are
// logged and never written to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.RequestIDFrom(c)))
	}
	fail(c, apperr.HTTPStatus(kind), apperr.Message(err))
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid " + name)
	}
	return uint(id), nil
}

// caller is only reached behind AuthRequired.
func caller(c *gin.Context) policy.Caller {
	caller, _ := middleware.CallerFrom(c)
	return caller
}
