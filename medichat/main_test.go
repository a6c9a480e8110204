package main

import (
	"fmt"
	"medichat/medichat/config"
	"medichat/medichat/controllers"
	"medichat/medichat/services/llm"
	"medichat/medichat/sources/history"
	"medichat/medichat/sources/ratelimit"
	"medichat/medichat/sources/session"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, trustProxy bool, limit int) http.Handler {
	t.Helper()
	model := config.DefaultModelSettings()
	manager := controllers.NewSessionManager(llm.NewEchoClient(), history.NewStore(model.MaxHistory), model, "sk-default", 0)
	tokens, err := session.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	cfg := config.Config{
		AllowedOrigins:    config.DefaultAllowedOrigins,
		TrustProxyHeaders: trustProxy,
		FrontendDir:       filepath.Join(t.TempDir(), "missing"),
	}
	return newRouter(cfg, controllers.NewGateway(manager, tokens, "secret"), ratelimit.NewMemoryLimiter(limit, time.Minute))
}

// postFromForwardedClients sends one guess per forged X-Forwarded-For value,
// all from the same peer.
func postFromForwardedClients(h http.Handler, n int) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi","use_password_mode":true,"password":"guess"}`))
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	return codes
}

func TestRouterLimitsByPeerAddress(t *testing.T) {
	h := newTestRouter(t, false, 1)

	codes := postFromForwardedClients(h, 5)
	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestRouterTrustsProxyHeadersWhenConfigured(t *testing.T) {
	h := newTestRouter(t, true, 1)

	for _, code := range postFromForwardedClients(h, 3) {
		assert.Equal(t, http.StatusOK, code)
	}
}

func TestRouterHealth(t *testing.T) {
	h := newTestRouter(t, false, 1)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"API running"}`, w.Body.String())
}
