package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"template-api/internal/models"
)

func TestCheckAndRecord(t *testing.T) {
	l := New(2)

	res := l.Check("1.2.3.4")
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.RequestsUsed)
	assert.Equal(t, 2, res.RequestsLimit)

	l.Record("1.2.3.4")
	l.Record("1.2.3.4")

	res = l.Check("1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 2, res.RequestsUsed)
	assert.False(t, res.NextAvailable.IsZero())

	// other clients are unaffected
	assert.True(t, l.Check("5.6.7.8").Allowed)
}

func TestDisabledLimiter(t *testing.T) {
	l := New(0)
	for i := 0; i < 100; i++ {
		l.Record("1.2.3.4")
	}
	assert.True(t, l.Check("1.2.3.4").Allowed)
}

func TestMiddleware(t *testing.T) {
	l := New(1)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/generate", nil)
	req.RemoteAddr = "1.2.3.4:5555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body models.RateLimitError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.RateLimit.Limit)
	assert.Equal(t, 1, body.RateLimit.Used)
	assert.NotZero(t, body.RateLimit.ResetAt)
	assert.NotEmpty(t, body.RateLimit.ResetAtISO)
}
