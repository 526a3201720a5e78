package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"marketplace-backend/internal/handlers"
)

type pingerStub struct {
	err error
}

func (p *pingerStub) Ping(_ context.Context) error {
	return p.err
}

func healthRequest(t *testing.T, pinger handlers.Pinger) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", handlers.HealthHandler(pinger))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealth_StoreReachable(t *testing.T) {
	w := healthRequest(t, &pingerStub{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealth_StoreUnreachable(t *testing.T) {
	w := healthRequest(t, &pingerStub{err: errors.New("no reachable servers")})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestHealth_NilPingerStillAnswers(t *testing.T) {
	w := healthRequest(t, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
