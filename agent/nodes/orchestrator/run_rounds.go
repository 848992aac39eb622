package orchestratornode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/spinlab/coach/agent/contract"
)

type RoundRunner interface {
	Run(
		ctx context.Context,
		caller *contractx.Caller,
		conversation []*schema.Message,
		tools []contractx.ToolDefinition,
	) (contractx.TurnResult, error)
}

func RunRounds(ctx context.Context, in *GraphState, runner RoundRunner) (*GraphState, error) {
	if in == nil || in.Caller == nil || len(in.Conversation) == 0 {
		return nil, fmt.Errorf("%w: conversation is not built", contractx.ErrValidation)
	}

	turn, err := runner.Run(ctx, in.Caller, in.Conversation, in.Tools)
	if err != nil {
		return nil, err
	}
	in.Turn = turn
	return in, nil
}
