// medichat/services/llm/llm.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Params are the generation settings sent with every completion.
type Params struct {
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

var (
	ErrNoCompletions = errors.New("no completions returned")
	ErrNoMessage     = errors.New("no message included in completion")
)

// Provider turns a prompt sequence into generated text.
type Provider interface {
	Complete(ctx context.Context, credential string, messages []Message, params Params) (string, error)
}

const (
	KindOpenAI = "openai"
	KindCompat = "compat"
	KindEcho   = "echo"
)

// NewProvider builds the provider named by kind.
func NewProvider(kind, baseURL string) (Provider, error) {
	switch kind {
	case KindOpenAI, "":
		return NewOpenAIClient(baseURL), nil
	case KindCompat:
		return NewCompatClient(baseURL, http.DefaultClient), nil
	case KindEcho:
		return NewEchoClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", kind)
	}
}
