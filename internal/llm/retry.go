package llm

import (
	"context"

	atlaserrors "atlas/internal/errors"
	"atlas/internal/logging"
)

// retryClient wraps a Client with transient-error retries.
type retryClient struct {
	base   Client
	config atlaserrors.RetryConfig
	logger logging.Logger
}

// WrapWithRetry adds bounded exponential-backoff retries around an LLM client.
// Permanent failures (auth errors, malformed requests) are returned as-is.
func WrapWithRetry(client Client, config atlaserrors.RetryConfig) Client {
	if client == nil {
		return nil
	}
	return &retryClient{
		base:   client,
		config: config,
		logger: logging.NewComponentLogger("llm.retry"),
	}
}

func (c *retryClient) Model() string {
	return c.base.Model()
}

func (c *retryClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var resp *CompletionResponse
	err := atlaserrors.Retry(ctx, c.config, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.base.Complete(ctx, req)
		return callErr
	}, c.logger)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
