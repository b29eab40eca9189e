package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newAuthLimitedHandler(config RateLimiterConfig) (*RateLimiter, http.Handler) {
	rl := NewRateLimiter(config)
	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return rl, handler
}

// TestRateLimiter_AllowsWithinBurst はバースト内のリクエストが通過することを検証する。
func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl, handler := newAuthLimitedHandler(NewRateLimiterConfig(10))
	defer rl.Stop()

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.1:51234"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

// TestRateLimiter_RejectsOverBurst はバースト超過で429が返ることを検証する。
func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl, handler := newAuthLimitedHandler(NewRateLimiterConfig(3))
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.1:51234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.1:51234"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
}

// TestRateLimiter_IndependentPerClient はクライアントIPごとに独立して制限されることを検証する。
func TestRateLimiter_IndependentPerClient(t *testing.T) {
	rl, handler := newAuthLimitedHandler(NewRateLimiterConfig(1))
	defer rl.Stop()

	// 1人目がバーストを使い切る
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.1:51234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.1:51234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client second request: status = %d, want 429", w.Code)
	}

	// 2人目は制限されない
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.2:51234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second client: status = %d, want %d", w.Code, http.StatusOK)
	}

	if rl.LimiterCount() != 2 {
		t.Errorf("limiter count = %d, want 2", rl.LimiterCount())
	}
}

// TestRateLimiter_Cleanup は期限切れエントリが削除されることを検証する。
func TestRateLimiter_Cleanup(t *testing.T) {
	config := RateLimiterConfig{
		AuthRate:        rate.Limit(1),
		AuthBurst:       1,
		CleanupInterval: 10 * time.Millisecond,
	}
	rl := NewRateLimiter(config)
	defer rl.Stop()

	rl.getOrCreateLimiter("203.0.113.1")

	if rl.LimiterCount() != 1 {
		t.Fatalf("limiter count = %d, want 1", rl.LimiterCount())
	}

	// CleanupInterval*2（TTL）を超えるまで待つ
	deadline := time.Now().Add(500 * time.Millisecond)
	for rl.LimiterCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("limiter count = %d, want 0 after cleanup", rl.LimiterCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestClientIPFromRequest はRemoteAddrからのIP抽出を検証する。
func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"port付きIPv4", "203.0.113.1:51234", "203.0.113.1"},
		{"port付きIPv6", "[2001:db8::1]:51234", "2001:db8::1"},
		{"portなし", "203.0.113.1", "203.0.113.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr

			if got := clientIPFromRequest(req); got != tt.want {
				t.Errorf("clientIPFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}
