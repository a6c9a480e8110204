// medichat/types/chat.go
package types

import "encoding/json"

// ChatRequest is the body of POST /chat and of each /chat/ws frame.
type ChatRequest struct {
	Message         string  `json:"message"`
	APIKey          *string `json:"api_key,omitempty"`
	UsePasswordMode bool    `json:"use_password_mode"`
	Password        *string `json:"password,omitempty"`
	SessionToken    string  `json:"session_token,omitempty"`
	NewSession      bool    `json:"new_session,omitempty"`
}

// ChatResult carries either a response or an error, never both.
// RequestTS and ResponseTS are RFC 3339 UTC timestamps.
type ChatResult struct {
	Response     string `json:"response"`
	RequestTS    string `json:"request_ts"`
	ResponseTS   string `json:"response_ts"`
	SessionToken string `json:"session_token,omitempty"`
	Error        string `json:"error,omitempty"`
}

func ErrorResult(msg string) ChatResult {
	return ChatResult{Error: msg}
}

func (r ChatResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	return json.Marshal(struct {
		Response     string `json:"response"`
		RequestTS    string `json:"request_ts"`
		ResponseTS   string `json:"response_ts"`
		SessionToken string `json:"session_token,omitempty"`
	}{r.Response, r.RequestTS, r.ResponseTS, r.SessionToken})
}

type ClearSessionRequest struct {
	SessionToken string `json:"session_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
