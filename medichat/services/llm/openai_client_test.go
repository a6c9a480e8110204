package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Drink water."}}],
	"usage": {"completion_tokens": 2, "prompt_tokens": 5, "total_tokens": 7}
}`

// newTLSOpenAIClient points the SDK at srv; the key credential policy
// refuses plain HTTP endpoints.
func newTLSOpenAIClient(srv *httptest.Server) *OpenAIClient {
	return NewOpenAIClientWithOptions(srv.URL+"/v1", &azopenai.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: srv.Client(),
			Retry:     policy.RetryOptions{MaxRetries: -1},
		},
	})
}

func TestOpenAIClientComplete(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-demo", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	out, err := newTLSOpenAIClient(srv).Complete(context.Background(), "sk-demo", []Message{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "How much water?"},
		{Role: RoleAssistant, Content: "About two litres."},
		{Role: RoleUser, Content: "Thanks"},
	}, testParams)
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", out)

	assert.Equal(t, "test-model", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-6)
	assert.InDelta(t, 0.9, body["top_p"], 1e-6)
	assert.EqualValues(t, 400, body["max_tokens"])

	messages, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 4)
	roles := make([]string, 0, len(messages))
	for _, m := range messages {
		roles = append(roles, m.(map[string]interface{})["role"].(string))
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	assert.Equal(t, "persona", messages[0].(map[string]interface{})["content"])
}

func TestOpenAIClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"no choices", http.StatusOK, `{"id":"x","created":1700000000,"choices":[]}`, ErrNoCompletions},
		{"no content", http.StatusOK, `{"id":"x","created":1700000000,"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant"}}]}`, ErrNoMessage},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","code":"invalid_api_key"}}`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTLSOpenAIClient(srv).Complete(context.Background(), "sk", []Message{{Role: RoleUser, Content: "hi"}}, testParams)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr))
				return
			}
			var respErr *azcore.ResponseError
			require.True(t, errors.As(err, &respErr))
			assert.Equal(t, http.StatusUnauthorized, respErr.StatusCode)
		})
	}
}

func TestOpenAIClientCachesPerCredential(t *testing.T) {
	c := NewOpenAIClient("")

	a1, err := c.client("sk-a")
	require.NoError(t, err)
	a2, err := c.client("sk-a")
	require.NoError(t, err)
	b, err := c.client("sk-b")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)

	for i := 0; i < maxCachedClients+5; i++ {
		_, err := c.client(string(rune('A' + i)))
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, len(c.clients), maxCachedClients)
}
