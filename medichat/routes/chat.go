package routes

import (
	"context"
	"encoding/json"
	"errors"
	"medichat/medichat/controllers"
	"medichat/medichat/middlewares"
	"medichat/medichat/sources/ratelimit"
	"medichat/medichat/types"
	httputils "medichat/medichat/utils/http"
	"medichat/medichat/utils/logging"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgInvalidBody = "invalid request body"

// ChatRoutes mounts the chat endpoints. A nil limiter disables rate
// limiting. allowedOrigins gates browser WebSocket handshakes.
func ChatRoutes(gw *controllers.Gateway, limiter ratelimit.Limiter, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		if limiter != nil {
			gr.Use(middlewares.RateLimit(limiter))
		}
		// POST /chat : one turn; errors travel in the body with status 200
		gr.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req types.ChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputils.WriteJSON(w, http.StatusOK, types.ErrorResult(msgInvalidBody))
				return
			}
			httputils.WriteJSON(w, http.StatusOK, gw.Handle(r.Context(), req))
		})
	})

	// GET /chat/ws : one ChatResult per ChatRequest frame, each frame limited
	patterns := originPatterns(allowedOrigins)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveChatSocket(w, r, gw, limiter, patterns)
	})

	// DELETE /chat/session : forget one session's history
	r.Delete("/session", func(w http.ResponseWriter, r *http.Request) {
		var req types.ClearSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputils.WriteJSON(w, http.StatusOK, types.ErrorResult(msgInvalidBody))
			return
		}
		if err := gw.ClearSession(req.SessionToken); err != nil {
			httputils.WriteJSON(w, http.StatusOK, types.ErrorResult(err.Error()))
			return
		}
		httputils.WriteJSON(w, http.StatusOK, types.MessageResponse{Message: "session cleared"})
	})
	return r
}

// originPatterns keeps scheme://host so http and https origins stay distinct.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}

// serveChatSocket keeps the latest session token per connection so frames
// without one continue the connection's conversation.
func serveChatSocket(w http.ResponseWriter, r *http.Request, gw *controllers.Gateway, limiter ratelimit.Limiter, patterns []string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: patterns})
	if err != nil {
		logging.AppLogger.Info("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	var lastToken string
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logging.AppLogger.Info("websocket read", zap.Error(err))
			}
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}

		var result types.ChatResult
		if limiter != nil && !middlewares.Allow(r, limiter) {
			result = types.ErrorResult(middlewares.RateLimitedMessage)
		} else {
			result = handleFrame(ctx, gw, data, &lastToken)
		}

		if err := wsjson.Write(ctx, conn, result); err != nil {
			return
		}
	}
}

func handleFrame(ctx context.Context, gw *controllers.Gateway, data []byte, lastToken *string) types.ChatResult {
	var req types.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return types.ErrorResult(msgInvalidBody)
	}
	if req.SessionToken == "" && !req.NewSession {
		req.SessionToken = *lastToken
	}
	result := gw.Handle(ctx, req)
	if result.SessionToken != "" {
		*lastToken = result.SessionToken
	}
	return result
}
