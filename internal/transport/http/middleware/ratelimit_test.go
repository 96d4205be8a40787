package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiter_BurstThenRejects(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/notifier", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code, "request %d within burst", i)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/notifier", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodPost, "/notifier", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(first, r1)
	assert.Equal(t, http.StatusOK, first.Code)

	// A different IP has its own bucket.
	second := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodPost, "/notifier", nil)
	r2.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(second, r2)
	assert.Equal(t, http.StatusOK, second.Code)
}
