package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/designer/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = addr
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(requestFrom("192.168.1.1:12345")))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})

	t.Run("RemoteAddr without port", func(t *testing.T) {
		require.Equal(t, "unix-socket", httpx.IPKeyExtractor(requestFrom("unix-socket")))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	fixed := func(v string) httpx.KeyExtractor {
		return func(*http.Request) string { return v }
	}

	req := requestFrom("192.168.1.1:12345")
	require.Equal(t, "192.168.1.1:alice",
		httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, fixed("alice"))(req))
	require.Equal(t, "192.168.1.1",
		httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, fixed(""))(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3})(okHandler)

		for i := range 3 {
			rec := serve(h, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := serve(h, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))

		var body httpx.Message
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, httpx.MsgRateLimited, body.Message)
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})(okHandler)

		require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1:1")).Code)
		require.Equal(t, http.StatusTooManyRequests, serve(h, requestFrom("192.168.1.1:2")).Code)
		require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.2:1")).Code)
	})

	t.Run("burst defaults to requests per window", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Hour})(okHandler)

		require.Equal(t, http.StatusOK, serve(h, requestFrom("10.0.0.1:1")).Code)
		require.Equal(t, http.StatusOK, serve(h, requestFrom("10.0.0.1:1")).Code)
		require.Equal(t, http.StatusTooManyRequests, serve(h, requestFrom("10.0.0.1:1")).Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		empty := func(*http.Request) string { return "" }
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, empty)(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("10.0.0.1:1")).Code)
		}
	})

	t.Run("disabled config passes everything", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{})(okHandler)
		for range 50 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("10.0.0.1:1")).Code)
		}
	})
}

func TestRateLimitByUser(t *testing.T) {
	h := httpx.RateLimitByUser(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})(okHandler)

	asUser := func(name string) *http.Request {
		req := requestFrom("192.168.1.1:12345")
		return req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyUsername, name))
	}

	require.Equal(t, http.StatusOK, serve(h, asUser("alice")).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(h, asUser("alice")).Code)
	// Same IP, different user.
	require.Equal(t, http.StatusOK, serve(h, asUser("bob")).Code)
}

func TestRateLimitProfiles(t *testing.T) {
	for name, cfg := range map[string]httpx.RateLimitConfig{
		"credential": httpx.CredentialLimit,
		"lenient":    httpx.LenientLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.True(t, cfg.Enabled())
			require.Positive(t, cfg.Burst)
		})
	}
	require.Less(t, httpx.CredentialLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000})(okHandler)
	req := requestFrom("192.168.1.1:12345")

	for b.Loop() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
