package llmclient

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// remoteBProvider is the content-generation back-end. Grounded on
// rcliao-briefly's cmd/handlers/digest_generate.go, whose import of
// github.com/google/generative-ai-go/genai matches that repo's own
// go.mod declaration (internal/llm/llm.go in the same repo imports a
// different, newer SDK instead — a mismatch in the source repo itself
// that this package does not carry forward).
type remoteBProvider struct {
	client         *genai.Client
	model          *genai.GenerativeModel
	embeddingModel *genai.EmbeddingModel
}

func newRemoteBProvider(ctx context.Context, apiKey, modelName string) (*remoteBProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llmclient: remote-b client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(lowTemperature))
	return &remoteBProvider{
		client:         client,
		model:          model,
		embeddingModel: client.EmbeddingModel("embedding-001"),
	}, nil
}

func (p *remoteBProvider) name() string { return "remote-b" }

func (p *remoteBProvider) generate(ctx context.Context, system, prompt string) (string, error) {
	model := p.model
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llmclient: remote-b generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("llmclient: remote-b returned no candidates")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("llmclient: remote-b returned non-text part")
	}
	return string(text), nil
}

func (p *remoteBProvider) embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := p.embeddingModel.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("llmclient: remote-b embed content: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("llmclient: remote-b returned no embedding")
	}
	out := make([]float64, len(resp.Embedding.Values))
	for i, v := range resp.Embedding.Values {
		out[i] = float64(v)
	}
	return out, nil
}
