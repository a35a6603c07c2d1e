package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(ctx context.Context) error {
	p.calls++
	return p.err
}

func serveHealth(t *testing.T, pinger Pinger, target string) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	e.GET("/health", NewHealthHandler(pinger).HealthCheck)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthCheckSkipsDatabaseByDefault(t *testing.T) {
	pinger := &stubPinger{err: errors.New("down")}

	status, body := serveHealth(t, pinger, "/health")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Zero(t, pinger.calls)
}

func TestHealthCheckDatabase(t *testing.T) {
	status, body := serveHealth(t, &stubPinger{}, "/health?check=db")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["db_status"])

	status, body = serveHealth(t, &stubPinger{err: errors.New("connection refused")}, "/health?check=db")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "error", body["db_status"])
	assert.NotContains(t, body, "connection refused")
}
