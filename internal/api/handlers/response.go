package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VL13N/FullStackNexus-sub005/internal/utils"
)

// APIResponse is the envelope carried by every endpoint.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}

// respondError maps the engine error taxonomy onto HTTP status codes:
// validation errors are 400, collaborator failures 503, everything else 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if utils.IsValidationError(err) {
		status = http.StatusBadRequest
	} else if utils.IsServiceUnavailable(err) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, APIResponse{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	})
}
