package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medisave/alternatives-api/config"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		expectedCost int64
	}{
		{"Health endpoint", "/health", 5},
		{"Metrics endpoint", "/metrics", 5},
		{"Alternatives lookup", "/alternatives/paracetamol", 100},
		{"Medicine search", "/medicines/paracetamol", 50},
		{"Paged catalog", "/medicines/page/1", 20},
		{"Group lookup", "/groups/3", 20},
		{"Unknown endpoint", "/unknown", 20},
		{"Root path", "/", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			cost := getTokenCost(req)
			if cost != tt.expectedCost {
				t.Errorf("Expected cost %d for path %s, got %d", tt.expectedCost, tt.path, cost)
			}
		})
	}
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		expected   string
	}{
		{"No forwarded header", "", "10.0.0.1:1234", "10.0.0.1:1234"},
		{"Single forwarded IP", "203.0.113.7", "10.0.0.1:1234", "203.0.113.7"},
		{"Multiple forwarded IPs", "203.0.113.7, 10.0.0.2", "10.0.0.1:1234", "203.0.113.7"},
		{"Forwarded IP with spaces", "  203.0.113.7  ", "10.0.0.1:1234", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.RemoteAddr
			}))

			req := httptest.NewRequest("GET", "/health", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)
			if seen != tt.expected {
				t.Errorf("Expected RemoteAddr %q, got %q", tt.expected, seen)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{
		MaxRequestBody: 1024,
		MaxHeaderSize:  1024,
	}

	handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Normal request passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
	})

	t.Run("Oversized body rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Content-Length", "2048")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d", rec.Code)
		}
	})

	t.Run("Oversized headers rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		for i := 0; i < 20; i++ {
			req.Header.Set(
				string(rune('A'+i))+"-Padding-Header",
				string(make([]byte, 100)),
			)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestHeaderFieldsTooLarge {
			t.Errorf("Expected 431, got %d", rec.Code)
		}
	})
}

func TestRateLimiterBucketReuse(t *testing.T) {
	rl := NewRateLimiter()

	first := rl.getBucket("203.0.113.7")
	second := rl.getBucket("203.0.113.7")
	if first != second {
		t.Error("Expected the same bucket for the same client IP")
	}

	other := rl.getBucket("203.0.113.8")
	if first == other {
		t.Error("Expected distinct buckets for distinct client IPs")
	}
}

func TestRateLimitHandlerSetsHeaders(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "203.0.113.50:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Errorf("Expected X-RateLimit-Limit header, got %q", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected X-RateLimit-Remaining header")
	}
}

func TestRateLimitHandlerExhaustion(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// The alternatives endpoint costs 100 tokens; a fresh bucket holds
	// 1000, so the 11th immediate request must be rejected.
	var lastCode int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest("GET", "/alternatives/paracetamol", nil)
		req.RemoteAddr = "203.0.113.99:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after exhausting the bucket, got %d", lastCode)
	}
}
