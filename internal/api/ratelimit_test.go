package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := newRateLimiter(1.0, 3)

	for i := range 3 {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
}

func TestRateLimiter_DeniesAfterBurst(t *testing.T) {
	rl := newRateLimiter(0.001, 2)

	rl.allow("10.0.0.1")
	rl.allow("10.0.0.1")

	if rl.allow("10.0.0.1") {
		t.Fatal("request beyond burst was allowed")
	}
}

func TestRateLimiter_IPsAreIndependent(t *testing.T) {
	rl := newRateLimiter(0.001, 1)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first IP denied its initial token")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("first IP allowed beyond burst")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatal("second IP denied its initial token")
	}
}

func TestRateLimitMiddleware_Responds429(t *testing.T) {
	rl := newRateLimiter(0.001, 1)
	handler := rateLimitMiddleware(rl, false, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, wantStatus := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/chat", nil)
		r.RemoteAddr = "10.0.0.9:4567"
		handler.ServeHTTP(w, r)

		if w.Code != wantStatus {
			t.Fatalf("request %d status = %d, want %d", i+1, w.Code, wantStatus)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.168.1.5:12345",
			want:       "192.168.1.5",
		},
		{
			name:       "x-real-ip ignored without trust",
			remoteAddr: "192.168.1.5:12345",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "192.168.1.5",
		},
		{
			name:       "x-real-ip honored with trust",
			remoteAddr: "192.168.1.5:12345",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			trustProxy: true,
			want:       "1.2.3.4",
		},
		{
			name:       "x-forwarded-for first hop",
			remoteAddr: "192.168.1.5:12345",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"},
			trustProxy: true,
			want:       "1.2.3.4",
		},
		{
			name:       "non-ip header value rejected",
			remoteAddr: "192.168.1.5:12345",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			trustProxy: true,
			want:       "192.168.1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := clientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := newRateLimiter(1.0, 1)

	for i := range 5 {
		rl.allow(fmt.Sprintf("10.0.0.%d", i))
	}

	// Age every visitor past the stale threshold and force a cleanup pass.
	rl.mu.Lock()
	for _, v := range rl.visitors {
		v.lastSeen = v.lastSeen.Add(-2 * rateLimiterStaleThreshold)
	}
	rl.lastCleanup = rl.lastCleanup.Add(-2 * rateLimiterCleanupInterval)
	rl.mu.Unlock()

	rl.allow("10.0.1.1")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.visitors) != 1 {
		t.Errorf("visitors after cleanup = %d, want 1", len(rl.visitors))
	}
}
