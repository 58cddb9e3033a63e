package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLogLevel adjusts the controllers logger.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// StatusFor maps an AppError code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case models.ErrValidationFailed, models.ErrEmptyCart, models.ErrAmountZero, models.ErrBadRequest:
		return http.StatusBadRequest
	case models.ErrUnauthorized:
		return http.StatusUnauthorized
	case models.ErrForbidden:
		return http.StatusForbidden
	case models.ErrNotFound, models.ErrCartNotFound, models.ErrOrderNotPayable:
		return http.StatusNotFound
	case models.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a models.APIError. Causes of internal errors are
// logged and never sent to the client.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError("Internal server error", err)
	}

	status := StatusFor(appErr.Code)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		c.JSON(status, models.NewAPIError(models.ErrInternalServer, appErr.Message))
		return
	}
	c.JSON(status, models.NewAPIError(appErr.Code, appErr.Message, appErr.Details))
}

// bindJSON decodes the body into dst, answering 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid body", map[string]interface{}{"reason": err.Error()}))
		return false
	}
	return true
}

// intParam parses a positive integer path parameter, answering 400 otherwise.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid id", map[string]interface{}{"field": name}))
		return 0, false
	}
	return id, true
}
