package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(burst, perSecond int) http.Handler {
	return RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), burst, perSecond)
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	h := limitedHandler(3, 1)

	for i := 0; i < 3; i++ {
		rr := hit(h, "10.0.0.1:5000")
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i)
	}
}

func TestRateLimitRejectsBeyondBurst(t *testing.T) {
	h := limitedHandler(2, 1)

	hit(h, "10.0.0.1:5000")
	hit(h, "10.0.0.1:5000")
	rr := hit(h, "10.0.0.1:5000")

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestRateLimitBucketsArePerClient(t *testing.T) {
	h := limitedHandler(1, 1)

	first := hit(h, "10.0.0.1:5000")
	exhausted := hit(h, "10.0.0.1:5001")
	other := hit(h, "10.0.0.2:5000")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, exhausted.Code)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.7:41000"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.RemoteAddr = "192.0.2.7"
	assert.Equal(t, "192.0.2.7", clientIP(req))
}
