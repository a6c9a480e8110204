package llm

import (
	"context"
	"errors"
	"fmt"
	"medichat/medichat/utils/logging"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"go.uber.org/zap"
)

// maxCachedClients bounds the per-credential SDK clients kept alive.
const maxCachedClients = 64

// OpenAIClient talks to the public OpenAI API through the azopenai SDK.
// SDK clients are cached per credential since callers may bring their own key.
type OpenAIClient struct {
	baseURL string
	options *azopenai.ClientOptions

	mu      sync.Mutex
	clients map[string]*azopenai.Client
}

func NewOpenAIClient(baseURL string) *OpenAIClient {
	return NewOpenAIClientWithOptions(baseURL, nil)
}

// NewOpenAIClientWithOptions passes options (transport, retries) to every
// SDK client it builds.
func NewOpenAIClientWithOptions(baseURL string, options *azopenai.ClientOptions) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		baseURL: baseURL,
		options: options,
		clients: make(map[string]*azopenai.Client),
	}
}

func (c *OpenAIClient) client(credential string) (*azopenai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[credential]; ok {
		return client, nil
	}
	client, err := azopenai.NewClientForOpenAI(c.baseURL, azcore.NewKeyCredential(credential), c.options)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	if len(c.clients) >= maxCachedClients {
		clear(c.clients)
	}
	c.clients[credential] = client
	return client, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, credential string, messages []Message, params Params) (string, error) {
	defer logging.LogDuration(ctx, "openai_complete")()

	client, err := c.client(credential)
	if err != nil {
		return "", err
	}

	resp, err := client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		Messages:       toRequestMessages(messages),
		DeploymentName: to.Ptr(params.Model),
		Temperature:    to.Ptr(params.Temperature),
		TopP:           to.Ptr(params.TopP),
		MaxTokens:      to.Ptr(params.MaxOutputTokens),
		N:              to.Ptr(int32(1)),
	}, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			logging.ErrorLogger.Error("openai response error",
				zap.Int("status", respErr.StatusCode),
				zap.String("code", respErr.ErrorCode),
			)
		}
		return "", fmt.Errorf("failed to get completions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletions
	}
	choice := resp.Choices[0]
	if choice.Message == nil || choice.Message.Content == nil {
		return "", ErrNoMessage
	}
	return *choice.Message.Content, nil
}

func toRequestMessages(messages []Message) []azopenai.ChatRequestMessageClassification {
	out := make([]azopenai.ChatRequestMessageClassification, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, &azopenai.ChatRequestSystemMessage{Content: to.Ptr(m.Content)})
		case RoleAssistant:
			out = append(out, &azopenai.ChatRequestAssistantMessage{Content: to.Ptr(m.Content)})
		default:
			out = append(out, &azopenai.ChatRequestUserMessage{Content: azopenai.NewChatRequestUserMessageContent(m.Content)})
		}
	}
	return out
}
