// medichat/controllers/gateway.go
package controllers

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"medichat/medichat/sources/session"
	"medichat/medichat/types"
	"medichat/medichat/utils/logging"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	authAPIKey   = "api_key"
	authPassword = "password"
)

// Gateway authorizes chat requests and shapes their results.
// Requests without a session token share one default conversation.
type Gateway struct {
	sessions       *SessionManager
	tokens         *session.Tokens
	adminPassword  string
	defaultSession string
	now            func() time.Time
}

// NewGateway returns a gateway checking password mode against
// adminPassword. An empty adminPassword rejects every password.
func NewGateway(sessions *SessionManager, tokens *session.Tokens, adminPassword string) *Gateway {
	defaultSession := session.NewSessionID()
	sessions.Keep(defaultSession)
	return &Gateway{
		sessions:       sessions,
		tokens:         tokens,
		adminPassword:  adminPassword,
		defaultSession: defaultSession,
		now:            time.Now,
	}
}

func (g *Gateway) timestamp() string {
	return g.now().UTC().Format(time.RFC3339Nano)
}

// Handle never returns an error: every failure, including panics, becomes
// a result carrying only Error.
func (g *Gateway) Handle(ctx context.Context, req types.ChatRequest) (result types.ChatResult) {
	start := time.Now()
	requestTS := g.timestamp()

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("chat handler panic", zap.Any("recover", r))
			result = types.ErrorResult(fmt.Sprint(r))
		}
	}()

	credential, mode, err := g.authorize(req)
	if err != nil {
		logging.AppLogger.Info("chat rejected", zap.String("reason", err.Error()))
		return types.ErrorResult(err.Error())
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return types.ErrorResult(msgMessageRequired)
	}

	sessionID, err := g.resolveSession(req)
	if err != nil {
		return types.ErrorResult(err.Error())
	}

	answer, err := g.sessions.Ask(ctx, sessionID, message, credential)
	if err != nil {
		var perr *ProviderError
		if !errors.As(err, &perr) {
			logging.ErrorLogger.Error("chat failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		return types.ErrorResult(err.Error())
	}

	token, err := g.tokens.Issue(sessionID)
	if err != nil {
		return types.ErrorResult(fmt.Sprintf("issue session token: %v", err))
	}

	logging.AppLogger.Info("chat answered",
		zap.String("auth", mode),
		zap.String("session_id", sessionID),
		zap.Duration("duration", time.Since(start)),
	)
	return types.ChatResult{
		Response:     answer,
		RequestTS:    requestTS,
		ResponseTS:   g.timestamp(),
		SessionToken: token,
	}
}

// authorize returns the caller's credential (empty in password mode, which
// uses the process default) and the path taken.
func (g *Gateway) authorize(req types.ChatRequest) (string, string, error) {
	if req.APIKey != nil && *req.APIKey != "" {
		return *req.APIKey, authAPIKey, nil
	}
	if req.UsePasswordMode {
		if g.adminPassword == "" || req.Password == nil || !passwordMatches(*req.Password, g.adminPassword) {
			return "", authPassword, &AuthorizationError{Reason: msgInvalidPassword}
		}
		return "", authPassword, nil
	}
	return "", "", &AuthorizationError{Reason: msgNoAuthPath}
}

// passwordMatches compares case-insensitively in constant time.
func passwordMatches(given, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(given)), []byte(strings.ToLower(secret))) == 1
}

// resolveSession picks a fresh session when asked, the token's session when
// one is given, and the shared default conversation otherwise.
func (g *Gateway) resolveSession(req types.ChatRequest) (string, error) {
	if req.NewSession {
		return session.NewSessionID(), nil
	}
	if req.SessionToken == "" {
		return g.defaultSession, nil
	}
	return g.tokens.Parse(req.SessionToken)
}

// ClearSession forgets the history behind token.
func (g *Gateway) ClearSession(token string) error {
	sessionID, err := g.tokens.Parse(token)
	if err != nil {
		return err
	}
	g.sessions.Reset(sessionID)
	return nil
}
