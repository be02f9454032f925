package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond maps an error from the use case layer onto the HTTP contract.
func Respond(c *gin.Context, err error) {
	var (
		ve *ValidationError
		ae *AuthorizationError
		ne *NotFoundError
		ce *ConflictError
	)

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, HTTPError{
			Code:    "validation_error",
			Message: ve.Error(),
			Details: gin.H{"field": ve.Field},
		})
	case errors.As(err, &ae):
		Forbidden(c, "forbidden", ae.Message)
	case errors.As(err, &ne):
		NotFound(c, ne.Entity+"_not_found", ne.Error())
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, HTTPError{
			Code:    "schedule_conflict",
			Message: ce.Error(),
			Details: gin.H{
				"days":         ce.Days,
				"appointments": ce.Appointments,
			},
		})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		Internal(c, "internal_error", "internal error")
	}
}
