package llmclient

import "context"

// provider is the narrow capability set {generate, embed} shared by all
// three back-ends (§9: "model as a tagged variant or a narrow interface
// with three implementations; never as a class hierarchy"). It is
// unexported: callers only ever see *Client, never pick a provider
// themselves.
type provider interface {
	// name identifies the provider for logging and job records.
	name() string
	// generate sends a single prompt (with optional system message) at
	// low temperature and returns the raw text response.
	generate(ctx context.Context, system, prompt string) (string, error)
	// embed maps text to a fixed-dimension vector. Providers without a
	// dedicated embedding endpoint return an error, which the Embedding
	// Service treats as "no signal" (§4.4).
	embed(ctx context.Context, text string) ([]float64, error)
}
