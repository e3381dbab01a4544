// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/ctxutil"
	"github.com/taibuivan/inkwell/internal/platform/middleware"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

type stubVerifier map[string]*sec.AuthClaims

func (stub stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	claims, ok := stub[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return claims, nil
}

// # Helpers

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(handler http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request = request.WithContext(ctxutil.WithLogger(request.Context(), discardLogger()))
	handler.ServeHTTP(recorder, request)
	return recorder
}

var ok = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

// # Tests

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("reused", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "req-1")
		recorder := serve(handler, request)
		assert.Equal(t, "req-1", seen)
		assert.Equal(t, "req-1", recorder.Header().Get(constants.HeaderXRequestID))
	})
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, 1, 2)
	handler := limiter.Handler(ok)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, "10.0.0.1")
		statuses = append(statuses, serve(handler, request).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	// Another client keeps its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set(constants.HeaderXRealIP, "10.0.0.2")
	assert.Equal(t, http.StatusOK, serve(handler, other).Code)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:4000"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}

func TestAuthenticate(t *testing.T) {
	verifier := stubVerifier{"good": {UserID: 7, Role: string(sec.RoleReader)}}

	var viewer sec.Viewer
	handler := middleware.Authenticate(verifier)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		viewer = ctxutil.Viewer(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
		authed bool
	}{
		{"anonymous", "", http.StatusOK, false},
		{"valid", "Bearer good", http.StatusOK, true},
		{"lowercase_scheme", "bearer good", http.StatusOK, true},
		{"malformed", "Token good", http.StatusUnauthorized, false},
		{"unknown", "Bearer bad", http.StatusUnauthorized, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			viewer = sec.Anonymous()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				request.Header.Set("Authorization", tc.header)
			}

			recorder := serve(handler, request)
			assert.Equal(t, tc.status, recorder.Code)
			assert.Equal(t, tc.authed, viewer.IsAuthenticated())
			if tc.authed {
				require.NotNil(t, viewer.ID)
				assert.Equal(t, int64(7), *viewer.ID)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := middleware.RequireRole(sec.RoleAuthor)(ok)

	tests := []struct {
		name   string
		claims *sec.AuthClaims
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"reader", &sec.AuthClaims{UserID: 1, Role: string(sec.RoleReader)}, http.StatusForbidden},
		{"author", &sec.AuthClaims{UserID: 2, Role: string(sec.RoleAuthor)}, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPut, "/", nil)
			if tc.claims != nil {
				request = request.WithContext(ctxutil.WithAuthUser(request.Context(), tc.claims))
			}
			assert.Equal(t, tc.status, serve(handler, request).Code)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(ok)

	assert.Equal(t, http.StatusUnauthorized, serve(handler, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: 3, Role: string(sec.RoleReader)}))
	assert.Equal(t, http.StatusOK, serve(handler, request).Code)
}

func TestCORS(t *testing.T) {
	production := fakeConfig(false)
	handler := middleware.CORS(production, "https://partner.example")(ok)

	allowed := httptest.NewRequest(http.MethodOptions, "/", nil)
	allowed.Header.Set(constants.HeaderOrigin, "https://partner.example")
	recorder := serve(handler, allowed)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://partner.example", recorder.Header().Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest(http.MethodGet, "/", nil)
	foreign.Header.Set(constants.HeaderOrigin, "https://evil.example")
	recorder = serve(handler, foreign)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

type fakeConfig bool

func (development fakeConfig) IsDevelopment() bool { return bool(development) }
