package llm

import (
	"context"
	"fmt"
	"strings"
)

// EchoClient is an offline provider that echoes the prompt back.
type EchoClient struct{}

func NewEchoClient() *EchoClient {
	return &EchoClient{}
}

func (c *EchoClient) Complete(ctx context.Context, credential string, messages []Message, params Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "model: %s\n", params.Model)
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
	}
	return sb.String(), nil
}
