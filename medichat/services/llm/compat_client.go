package llm

import (
	"context"
	"fmt"
	httputils "medichat/medichat/utils/http"
	"medichat/medichat/utils/logging"
	"net/http"
	"strings"
)

// CompatClient speaks the OpenAI chat completions wire format over plain
// HTTP, for Groq, Ollama's /v1 endpoint and similar gateways.
type CompatClient struct {
	baseURL string
	client  *http.Client
}

func NewCompatClient(baseURL string, client *http.Client) *CompatClient {
	return &CompatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type compatChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	TopP        float32   `json:"top_p"`
	MaxTokens   int32     `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type compatChatResponse struct {
	Choices []struct {
		Message *Message `json:"message"`
	} `json:"choices"`
}

func (c *CompatClient) Complete(ctx context.Context, credential string, messages []Message, params Params) (string, error) {
	defer logging.LogDuration(ctx, "compat_complete")()

	req := compatChatRequest{
		Model:       params.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxOutputTokens,
	}
	var resp compatChatResponse
	if err := httputils.PostJSONWithAuth(ctx, c.client, c.baseURL+"/chat/completions", credential, req, &resp); err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCompletions
	}
	if resp.Choices[0].Message == nil {
		return "", ErrNoMessage
	}
	return resp.Choices[0].Message.Content, nil
}
