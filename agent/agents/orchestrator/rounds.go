package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	contractx "github.com/spinlab/coach/agent/contract"
	logx "github.com/spinlab/coach/pkg/logger"
	"github.com/spinlab/coach/pkg/metrics"
)

const (
	DefaultMaxRounds = 5
	// maxParallelTools bounds the fan-out of one round.
	maxParallelTools = 8
)

// RoundLoop drives the bounded function-calling loop: up to maxRounds
// model calls offered the caller's tools, then one forced call without tools.
type RoundLoop struct {
	model     contractx.ChatModel
	tools     contractx.Toolbox
	maxRounds int
	forced    string
}

func NewRoundLoop(model contractx.ChatModel, tools contractx.Toolbox, maxRounds int, forcedInstruction string) *RoundLoop {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &RoundLoop{
		model:     model,
		tools:     tools,
		maxRounds: maxRounds,
		forced:    forcedInstruction,
	}
}

func (l *RoundLoop) Run(
	ctx context.Context,
	caller *contractx.Caller,
	conversation []*schema.Message,
	tools []contractx.ToolDefinition,
) (contractx.TurnResult, error) {
	log := logx.From(ctx)
	msgs := append([]*schema.Message(nil), conversation...)

	var result contractx.TurnResult
	seen := make(map[string]struct{})

	for round := 1; round <= l.maxRounds; round++ {
		resp, err := l.model.Complete(ctx, contractx.CompletionRequest{Messages: msgs, Tools: tools})
		metrics.RecordLLMCall("round", err == nil)
		result.LLMCalls++
		if err != nil {
			return result, fmt.Errorf("round %d: %w", round, err)
		}
		if resp == nil {
			return result, fmt.Errorf("%w: round %d returned no message", contractx.ErrModelInvoke, round)
		}
		result.Rounds = round

		if len(resp.ToolCalls) == 0 {
			result.Answer = resp.Content
			metrics.RecordRounds(result.Rounds)
			return result, nil
		}

		calls := withCallIDs(resp.ToolCalls, round)
		msgs = append(msgs, &schema.Message{
			Role:      schema.Assistant,
			Content:   resp.Content,
			ToolCalls: calls,
		})

		outcomes := l.execute(ctx, caller, calls)
		for i, call := range calls {
			msgs = append(msgs, schema.ToolMessage(outcomes[i].Content, call.ID))
			if _, ok := seen[call.Function.Name]; !ok {
				seen[call.Function.Name] = struct{}{}
				result.ToolsUsed = append(result.ToolsUsed, call.Function.Name)
			}
		}
		log.Debug().Int("round", round).Int("tool_calls", len(calls)).Msg("round executed tools")
	}

	msgs = append(msgs, schema.SystemMessage(l.forced))
	resp, err := l.model.Complete(ctx, contractx.CompletionRequest{Messages: msgs})
	metrics.RecordLLMCall("forced", err == nil)
	result.LLMCalls++
	result.Forced = true
	metrics.RecordRounds(result.Rounds)
	if err != nil {
		return result, fmt.Errorf("forced final answer: %w", err)
	}
	if resp == nil {
		return result, fmt.Errorf("%w: forced call returned no message", contractx.ErrModelInvoke)
	}

	log.Info().Int("rounds", result.Rounds).Msg("round limit reached, forced final answer")
	result.Answer = resp.Content
	return result, nil
}

// execute runs one round's calls concurrently. Outcomes keep request order
// and a failing tool never aborts its siblings.
func (l *RoundLoop) execute(ctx context.Context, caller *contractx.Caller, calls []schema.ToolCall) []contractx.ToolOutcome {
	outcomes := make([]contractx.ToolOutcome, len(calls))

	var g errgroup.Group
	g.SetLimit(maxParallelTools)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			outcomes[i] = l.tools.Execute(ctx, caller, call.Function.Name, call.Function.Arguments)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// withCallIDs fills missing call ids so every tool message can reference
// the call it answers.
func withCallIDs(calls []schema.ToolCall, round int) []schema.ToolCall {
	out := make([]schema.ToolCall, len(calls))
	for i, call := range calls {
		if call.ID == "" {
			call.ID = fmt.Sprintf("call_%d_%d", round, i)
		}
		if call.Type == "" {
			call.Type = "function"
		}
		out[i] = call
	}
	return out
}
