package middlewares

import (
	"medichat/medichat/sources/ratelimit"
	"medichat/medichat/types"
	httputils "medichat/medichat/utils/http"
	"medichat/medichat/utils/logging"
	"net"
	"net/http"

	"go.uber.org/zap"
)

const RateLimitedMessage = "Too many requests, please try again later"

// RateLimit rejects clients over the limiter's budget with 429. Limiter
// errors let the request through.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Allow(r, limiter) {
				httputils.WriteJSON(w, http.StatusTooManyRequests, types.ErrorResult(RateLimitedMessage))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allow records one hit for the request's client. Limiter errors allow.
func Allow(r *http.Request, limiter ratelimit.Limiter) bool {
	ok, err := limiter.Allow(r.Context(), ClientKey(r))
	if err != nil {
		logging.ErrorLogger.Error("rate limiter error", zap.Error(err))
	}
	return ok
}

// ClientKey is the host part of RemoteAddr. Forwarding headers are only
// reflected here when middleware.RealIP ran, which main enables solely for
// TRUST_PROXY_HEADERS.
func ClientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
