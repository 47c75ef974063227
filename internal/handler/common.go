package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"rrhh/internal/apperror"
	"rrhh/internal/logger"
	"rrhh/internal/model"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

// role sets used by the route tables
var (
	writerRoles = []string{model.RoleAdmin, model.RoleHR}
	adminRoles  = []string{model.RoleAdmin}
)

// open bounds for date range filters
var (
	minDate = model.MustDate("1900-01-01")
	maxDate = model.MustDate("9999-12-31")
)

// respondError writes err as a JSON error body with the status of its code.
// Unexpected errors are logged and their details hidden.
func respondError(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	status := apperror.HTTPStatus(code)

	message := err.Error()
	var fields map[string]string
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
		fields = appErr.Fields
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error().Err(err).Str("code", string(code)).Msg("request failed")
		_ = c.Error(err)
		message = "internal server error"
	}

	c.JSON(status, response.ErrorWithCode(status, string(code), message, fields))
}

// bindJSON decodes and validates the body, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperror.ValidationFields(map[string]string{name: "must be a positive integer"}))
		return 0, false
	}
	return uint(id), true
}

// optionalUintQuery parses an optional integer filter such as departamento_id
func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, apperror.ValidationFields(map[string]string{name: "must be an integer"}))
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// dateQuery parses an optional YYYY-MM-DD query parameter, returning
// fallback when absent
func dateQuery(c *gin.Context, name string, fallback model.Date) (model.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		respondError(c, apperror.ValidationFields(map[string]string{name: "must be a date as YYYY-MM-DD"}))
		return model.Date{}, false
	}
	return d, true
}

func respondDeleted(c *gin.Context, deleted bool, entity string, id uint) {
	if !deleted {
		respondError(c, apperror.NotFound(entity, id))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id, "eliminado": true}))
}

// listChildren answers GET /empleados/:id/<records> with list's result
func listChildren[T any](c *gin.Context, list func(ctx context.Context, employeeID uint) ([]T, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	items, err := list(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}
