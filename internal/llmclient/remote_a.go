package llmclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// remoteAProvider is the compact-model chat-completions back-end. The
// teacher's own go.mod already declares github.com/sashabaranov/go-openai
// but never imports it; this is that dependency's first real use.
type remoteAProvider struct {
	client *openai.Client
	model  string
}

func newRemoteAProvider(apiKey, model string) *remoteAProvider {
	return &remoteAProvider{client: openai.NewClient(apiKey), model: model}
}

func (p *remoteAProvider) name() string { return "remote-a" }

func (p *remoteAProvider) generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: float32(lowTemperature),
	})
	if err != nil {
		if isRateLimitErr(err) {
			return "", ErrProviderRateLimited
		}
		return "", fmt.Errorf("llmclient: remote-a chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llmclient: remote-a returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *remoteAProvider) embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		if isRateLimitErr(err) {
			return nil, ErrProviderRateLimited
		}
		return nil, fmt.Errorf("llmclient: remote-a embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("llmclient: remote-a returned no embedding")
	}
	out := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		out[i] = float64(v)
	}
	return out, nil
}

func isRateLimitErr(err error) bool {
	var apiErr *openai.APIError
	if ok := asOpenAIError(err, &apiErr); ok {
		return apiErr.HTTPStatusCode == 429
	}
	return false
}

func asOpenAIError(err error, target **openai.APIError) bool {
	apiErr, ok := err.(*openai.APIError)
	if !ok {
		return false
	}
	*target = apiErr
	return true
}
