package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLocalProviderGenerateReturnsResponseText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("generate request set Stream = true, want false")
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "hello back", Done: true})
	}))
	defer srv.Close()

	p := newLocalProvider(srv.URL, "gen-model", "embed-model")
	got, err := p.generate(context.Background(), "system", "prompt")
	if err != nil {
		t.Fatalf("generate() error = %v", err)
	}
	if got != "hello back" {
		t.Errorf("generate() = %q, want %q", got, "hello back")
	}
}

func TestLocalProviderGenerateRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := newLocalProvider(srv.URL, "gen-model", "embed-model")
	_, err := p.generate(context.Background(), "system", "prompt")
	if err != ErrProviderRateLimited {
		t.Errorf("generate() error = %v, want ErrProviderRateLimited", err)
	}
}

func TestLocalProviderEmbedReturnsVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	p := newLocalProvider(srv.URL, "gen-model", "embed-model")
	vec, err := p.embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("embed() error = %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("embed() = %v, want [0.1 0.2 0.3]", vec)
	}
}

func TestLocalProviderProbe(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	if p := newLocalProvider(ok.URL, "g", "e"); !p.probe(context.Background()) {
		t.Error("probe() = false for a healthy server, want true")
	}
	if p := newLocalProvider(down.URL, "g", "e"); p.probe(context.Background()) {
		t.Error("probe() = true for an unhealthy server, want false")
	}
}
