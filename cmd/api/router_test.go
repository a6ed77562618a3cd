package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/order/app"
	"github.com/dwikikusuma/nomino/internal/order/infra/memory"
	"github.com/dwikikusuma/nomino/internal/order/rest"
	"github.com/dwikikusuma/nomino/pkg/logger"
)

func testRouter(ready readiness) (http.Handler, *auth.Verifier) {
	log := logger.Discard()
	verifier := auth.NewVerifier("test-secret", "nomino")
	svc := app.NewService(memory.NewStore(), app.WithLogger(log))
	return newRouter(log, verifier, 5*time.Second, ready, rest.NewHandler(svc)), verifier
}

func TestHealthzIsPublic(t *testing.T) {
	h, _ := testRouter(nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyzReportsDependencyFailure(t *testing.T) {
	h, _ := testRouter(func(context.Context) error { return errors.New("db down") })

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	h, verifier := testRouter(nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := verifier.Issue(auth.User{ID: "alice"}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}
