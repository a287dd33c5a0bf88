// Package llmclient is the LLM Client (C3): a unified interface over three
// model providers — local, remote-A, remote-B — selected once per process
// and held immutable afterwards (§9's "global model client" design note).
package llmclient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/config"
)

const (
	callTimeout    = 30 * time.Second
	maxAttempts    = 3
	lowTemperature = 0.2
)

// Client is the process-wide LLM Client. Its provider is selected once, at
// construction, and never re-probed per call.
type Client struct {
	p provider
}

// New performs provider selection per §4.2: remote-A credential, then
// remote-B credential, then a local-provider health probe; ErrNoProviderAvailable
// if none qualify. Selection happens exactly once, here.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.RemoteAAPIKey != "" {
		log.Info().Str("provider", "remote-a").Msg("llmclient: selected provider")
		return &Client{p: newRemoteAProvider(cfg.RemoteAAPIKey, cfg.RemoteACompactModel)}, nil
	}
	if cfg.RemoteBAPIKey != "" {
		p, err := newRemoteBProvider(ctx, cfg.RemoteBAPIKey, cfg.RemoteBModel)
		if err != nil {
			return nil, err
		}
		log.Info().Str("provider", "remote-b").Msg("llmclient: selected provider")
		return &Client{p: p}, nil
	}
	local := newLocalProvider(cfg.LocalProviderBaseURL, cfg.LocalGenerationModel, cfg.LocalEmbeddingModel)
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if local.probe(probeCtx) {
		log.Info().Str("provider", "local").Msg("llmclient: selected provider")
		return &Client{p: local}, nil
	}
	return nil, ErrNoProviderAvailable
}

// callWithRetry applies the per-call policy from §4.2: 30s timeout per
// attempt, up to 3 attempts with linear backoff (1s × attempt).
func (c *Client) callWithRetry(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		resp, err := c.p.generate(callCtx, system, prompt)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if callCtx.Err() == context.DeadlineExceeded {
			lastErr = fmt.Errorf("%w: %v", ErrProviderTimeout, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("provider", c.p.name()).Msg("llmclient: call failed, retrying")
		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

// Embed produces an embedding vector via the selected provider, or an
// error the Embedding Service turns into the empty-vector "no signal"
// contract (§4.4). Goes through the same 30s/3-attempt retry policy as
// the generation calls (§4.2 covers all three LLM Client operations).
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, err := c.embedWithRetry(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("llmclient: embed: %w", err)
	}
	return vec, nil
}

// embedWithRetry mirrors callWithRetry's policy for the embed call, whose
// provider method returns a vector instead of a string.
func (c *Client) embedWithRetry(ctx context.Context, text string) ([]float64, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		vec, err := c.p.embed(callCtx, text)
		cancel()
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if callCtx.Err() == context.DeadlineExceeded {
			lastErr = fmt.Errorf("%w: %v", ErrProviderTimeout, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("provider", c.p.name()).Msg("llmclient: embed call failed, retrying")
		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// ProviderName reports the selected provider, for job-record logging.
func (c *Client) ProviderName() string {
	return c.p.name()
}
