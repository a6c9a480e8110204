// medichat/controllers/session.go
package controllers

import (
	"context"
	"medichat/medichat/config"
	"medichat/medichat/services/llm"
	"medichat/medichat/sources/history"
	"medichat/medichat/utils/logging"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SessionManager owns conversation history and mediates provider calls.
type SessionManager struct {
	provider   llm.Provider
	store      *history.Store
	model      config.ModelSettings
	defaultKey string
	timeout    time.Duration
}

// NewSessionManager returns a manager that falls back to defaultKey when a
// caller supplies no credential. A zero timeout leaves provider calls bound
// only by ctx.
func NewSessionManager(provider llm.Provider, store *history.Store, model config.ModelSettings, defaultKey string, timeout time.Duration) *SessionManager {
	return &SessionManager{
		provider:   provider,
		store:      store,
		model:      model,
		defaultKey: defaultKey,
		timeout:    timeout,
	}
}

func (m *SessionManager) params() llm.Params {
	return llm.Params{
		Model:           m.model.Name,
		Temperature:     m.model.Temperature,
		TopP:            m.model.TopP,
		MaxOutputTokens: m.model.MaxOutputTokens,
	}
}

// Ask sends message within the session's conversation and returns the
// trimmed answer. On provider failure the user message stays in history
// and no answer is recorded.
func (m *SessionManager) Ask(ctx context.Context, sessionID, message, credential string) (string, error) {
	key := credential
	if key == "" {
		key = m.defaultKey
	}
	if key == "" {
		return "", &ConfigurationError{Reason: "no credential available: provide api_key or set OPENAI_API_KEY"}
	}

	h, release := m.store.Acquire(sessionID)
	defer release()

	h.Append(llm.RoleUser, message)
	prompt := h.Prompt(m.model.Persona)

	callCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	answer, err := m.provider.Complete(callCtx, key, prompt, m.params())
	if err != nil {
		// the user message is kept; trimming here keeps the bound across
		// consecutive failures
		h.Trim()
		logging.ErrorLogger.Error("provider call failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return "", &ProviderError{Err: err}
	}

	answer = strings.TrimSpace(answer)
	h.Append(llm.RoleAssistant, answer)
	h.Trim()
	return answer, nil
}

// History returns a copy of the session's stored messages.
func (m *SessionManager) History(sessionID string) []history.Message {
	return m.store.Snapshot(sessionID)
}

// Keep protects the session from idle expiry.
func (m *SessionManager) Keep(sessionID string) {
	m.store.Pin(sessionID)
}

// Reset forgets the session's history.
func (m *SessionManager) Reset(sessionID string) bool {
	return m.store.Delete(sessionID)
}
