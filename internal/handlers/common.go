package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/middleware"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append(h.contextFields(c), "remote_addr", c.ClientIP())
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, append(h.contextFields(c), additionalFields...)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, append(h.contextFields(c), additionalFields...)...)
}

func (h *BaseHandler) contextFields(c *gin.Context) []interface{} {
	return []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", middleware.UserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message, code string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
		Code:    code,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// BindJSON decodes the request body, answering 400 itself on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", "INVALID_PAYLOAD", err, err.Error())
		return false
	}
	return true
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", "VALIDATION_FAILED", err, validationErrors)
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated", "UNAUTHORIZED", err)
	case errors.Is(err, services.ErrForbidden):
		h.RespondWithError(c, http.StatusForbidden, "Access denied", "FORBIDDEN", err)
	case errors.Is(err, services.ErrQuestionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question not found", "QUESTION_NOT_FOUND", err)
	case errors.Is(err, services.ErrCollectionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Collection not found", "COLLECTION_NOT_FOUND", err)
	case errors.Is(err, services.ErrAnswerNotFound):
		h.RespondWithError(c, http.StatusNotFound, "No answer submitted yet", "ANSWER_NOT_FOUND", err)
	case errors.Is(err, services.ErrCollectionCodeExists):
		h.RespondWithError(c, http.StatusConflict, "Collection code already exists", "COLLECTION_CODE_EXISTS", err)
	case errors.Is(err, services.ErrConcurrencyConflict):
		h.RespondWithError(c, http.StatusConflict, "Answer could not be recorded due to concurrent submissions, please retry", "CONCURRENCY_CONFLICT", err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", "VALIDATION_FAILED", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", err)
	}
}

// parseIDParam reads a positive numeric path parameter, answering 400 itself when invalid.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid "+param, "INVALID_PARAMETER", err, "must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// parseUintQuery reads a required positive numeric query parameter.
func (h *BaseHandler) parseUintQuery(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Query(param), 10, 32)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid "+param, "INVALID_PARAMETER", err, "must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseBoolQuery(c *gin.Context, param string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(param)))
	return err == nil && value
}
