// Package handlers provides the gin handlers for the REST API
package handlers

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/pkg/errors"
)

// RegisterValidators installs the custom binding tags on gin's validator:
// isodate (YYYY-MM-DD calendar date) and mealstatus (non-blank label)
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := mealplan.ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	return v.RegisterValidation("mealstatus", func(fl validator.FieldLevel) bool {
		_, err := mealplan.ParseStatus(fl.Field().String())
		return err == nil
	})
}

// bindJSON decodes the body into req. On failure the error is attached
// to the context and false is returned.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) *errors.AppError {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewBadRequestError("Malformed request body").WithCause(err)
	}

	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return errors.NewValidationErrors(out)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "mealstatus":
		return fmt.Sprintf("%s must not be blank", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(errors.NewValidationError(fmt.Sprintf("%s must be a positive integer, got %q", name, raw)))
		return 0, false
	}
	return id, true
}

// splitList splits a comma separated query value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
