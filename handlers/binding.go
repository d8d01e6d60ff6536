package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"waysfood-api/apperr"
	"waysfood-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

// fieldName reports validation failures under the name clients send.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// respondBindError answers a failed bind with a message safe to show callers.
// The decoder's own error is logged, never written.
func respondBindError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("Request binding failed",
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", middleware.RequestIDFrom(c)))
	respondError(c, logger, apperr.Validation(bindMessage(err)))
}

func bindMessage(err error) string {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		return fieldMessage(invalid[0])
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return "invalid value for " + typeErr.Field
	}
	return "invalid request body"
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
