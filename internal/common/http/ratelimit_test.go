package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiter_BurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("expected request %d within the burst to pass", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("expected the request after the burst to be blocked")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("expected the first key's request to pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("expected the first key to be exhausted")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("expected a different key to have its own budget")
	}
}

func TestAuthRateLimiter_BlocksWithEnvelope(t *testing.T) {
	arl := NewAuthRateLimiter()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := arl.MiddlewareForPath("/api/auth/register")(next)

	var last *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
		req.Header.Set("X-Real-IP", "10.0.0.9")
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		if last.Code == http.StatusTooManyRequests {
			break
		}
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the register budget to run out, final status %d", last.Code)
	}
}
