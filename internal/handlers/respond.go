package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

const dateLayout = "2006-01-02"

// Responder centralizes error formatting: every failure is logged with the
// request path and method, mapped to a status via the service sentinels, and
// sanitized in production.
type Responder struct {
	logger     zerolog.Logger
	production bool
}

func NewResponder(logger zerolog.Logger, production bool) *Responder {
	return &Responder{logger: logger, production: production}
}

func (r *Responder) OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.OK(data))
}

func (r *Responder) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, models.OK(data))
}

func (r *Responder) Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound), errors.Is(err, database.ErrNoDocument):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateReview), errors.Is(err, database.ErrDuplicateKey):
		status = http.StatusConflict
	}

	requestID, _ := c.Get(middleware.RequestIDKey)
	r.logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Interface("request_id", requestID).
		Msg("request failed")

	resp := models.ErrorResponse{Message: err.Error()}
	if status == http.StatusInternalServerError {
		resp.Message = "internal server error"
		if !r.production {
			resp.Detail = err.Error()
		}
	}
	c.JSON(status, resp)
}

func (r *Responder) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: message})
}

// callerID extracts the authenticated user id set by the auth middleware.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return primitive.NilObjectID, false
	}
	hex, ok := raw.(string)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func callerRole(c *gin.Context) models.Role {
	raw, _ := c.Get(middleware.UserRoleKey)
	role, _ := raw.(string)
	return models.Role(role)
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Param(name))
}

// dateQuery parses an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
