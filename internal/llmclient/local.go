package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// localProvider talks to a local Ollama-compatible server: POST /api/generate
// for text, POST /api/embeddings for vectors. Grounded directly on the
// teacher's own Ollama client (same request/response shapes, same
// http.Client-per-call pattern), generalized to the LLM Client's shared
// provider interface and given an actual embeddings path (the teacher's
// ai.go never called one).
type localProvider struct {
	baseURL         string
	generationModel string
	embeddingModel  string
	httpClient      *http.Client
}

func newLocalProvider(baseURL, generationModel, embeddingModel string) *localProvider {
	return &localProvider{
		baseURL:         baseURL,
		generationModel: generationModel,
		embeddingModel:  embeddingModel,
		httpClient:      &http.Client{Timeout: callTimeout},
	}
}

type ollamaGenerateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *localProvider) name() string { return "local" }

func (p *localProvider) generate(ctx context.Context, system, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:       p.generationModel,
		Prompt:      prompt,
		System:      system,
		Stream:      false,
		Temperature: lowTemperature,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("llmclient: build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llmclient: calling local provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrProviderRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llmclient: local provider status %d: %s", resp.StatusCode, string(body))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llmclient: decode local provider response: %w", err)
	}
	return out.Response, nil
}

func (p *localProvider) embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := ollamaEmbeddingRequest{Model: p.embeddingModel, Prompt: text}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("llmclient: build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llmclient: calling local provider embeddings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("llmclient: local provider embeddings status %d: %s", resp.StatusCode, string(body))
	}

	var out ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("llmclient: decode embedding response: %w", err)
	}
	return out.Embedding, nil
}

// probe checks the local provider's health endpoint is reachable, part of
// provider selection when no remote credential is configured (§4.2).
func (p *localProvider) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
