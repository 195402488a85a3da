package ai

import (
	"context"
	"errors"

	"github.com/mindwell-health/practice-api/pkg/logging"
)

// FallbackClient tries the primary LLM and falls over to a secondary when
// the primary fails. Both failures are joined so the caller sees the full
// picture.
type FallbackClient struct {
	primary   LLMClient
	secondary LLMClient
	logger    *logging.Logger
}

func NewFallbackClient(primary, secondary LLMClient, logger *logging.Logger) *FallbackClient {
	if primary == nil {
		panic("ai: primary client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{primary: primary, secondary: secondary, logger: logger}
}

func (c *FallbackClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, primaryErr := c.primary.Complete(ctx, req)
	if primaryErr == nil {
		return resp, nil
	}
	if c.secondary == nil {
		return LLMResponse{}, primaryErr
	}

	c.logger.Warn("primary LLM failed, using fallback", "error", primaryErr)
	resp, secondaryErr := c.secondary.Complete(ctx, req)
	if secondaryErr != nil {
		return LLMResponse{}, errors.Join(primaryErr, secondaryErr)
	}
	return resp, nil
}
