package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type CompletionRequest struct {
	Messages []*schema.Message
	// Tools is empty for the forced final answer.
	Tools []ToolDefinition
}

// ChatModel is the LLM port. Implementations return the assistant message,
// which may carry tool calls.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (*schema.Message, error)
}

// Authenticator turns a bearer token into the auth user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// CallerResolver loads the employee/company identity for an auth user.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, userID string) (*Caller, error)
}

type Toolbox interface {
	Catalog(caller *Caller) []ToolDefinition
	Execute(ctx context.Context, caller *Caller, name string, rawArgs string) ToolOutcome
}
