package llmclient

import "errors"

// Sentinel errors per §7's named failure kinds. Checked with errors.Is.
var (
	ErrNoProviderAvailable = errors.New("llmclient: no provider available")
	ErrProviderTimeout     = errors.New("llmclient: provider timeout")
	ErrProviderRateLimited = errors.New("llmclient: provider rate limited")
	ErrResponseUnparseable = errors.New("llmclient: response unparseable")
)
