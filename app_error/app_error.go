package app_error

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type statusError struct {
	error
	status int
}

func (e statusError) Unwrap() error {
	return e.error
}

func (e statusError) HTTPStatus() int {
	return e.status
}

// New wraps err with an HTTP status to be used by Respond.
func New(err error, status int) error {
	return statusError{error: err, status: status}
}

// Respond writes the JSON error contract {"error": ...} for err, mapping
// record-not-found to 404 and wrapped status errors to their status.
func Respond(c *gin.Context, err error) {
	var se statusError
	if errors.As(err, &se) {
		c.JSON(se.HTTPStatus(), gin.H{"error": se.Error()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func WithHTTPStatus(c *gin.Context, err error, status int) {
	c.JSON(status, gin.H{"error": err.Error()})
}
