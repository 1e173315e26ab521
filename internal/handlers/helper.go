package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseStringIDParam reads a non-blank string path parameter, answering 400 itself when blank.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
			Code:    "INVALID_PARAMETER",
		})
		return ""
	}
	return idStr
}
