package llm

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/spinlab/coach/agent/contract"
	openrouterx "github.com/spinlab/coach/pkg/openrouter"
)

// New builds the chat model selected by cfg.Driver.
func New(ctx context.Context, cfg openrouterx.Config) (contractx.ChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	switch strings.TrimSpace(cfg.Driver) {
	case "openai":
		client, err := openrouterx.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		return NewSDKModel(client, cfg.Model, cfg.MaxCompletionToken, cfg.Temperature), nil
	default:
		base, err := cfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		return NewEinoModel(base), nil
	}
}
