package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/spinlab/coach/agent/contract"
	nodex "github.com/spinlab/coach/agent/nodes/orchestrator"
	"github.com/spinlab/coach/agent/prompt"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrMessageTooLong = nodex.ErrMessageTooLong
)

const DefaultHistoryLimit = 20

type Config struct {
	MaxRounds    int `split_words:"true" default:"5"`
	HistoryLimit int `split_words:"true" default:"20"`
}

type Orchestrator struct {
	resolver contractx.CallerResolver
	toolbox  contractx.Toolbox
	prompts  *prompt.Builder
	loop     *RoundLoop

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	historyLimit int
	now          func() time.Time
}

func New(
	model contractx.ChatModel,
	resolver contractx.CallerResolver,
	toolbox contractx.Toolbox,
	prompts *prompt.Builder,
	cfg Config,
) (*Orchestrator, error) {
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	if resolver == nil {
		return nil, errors.New("caller resolver is required")
	}
	if toolbox == nil {
		return nil, errors.New("toolbox is required")
	}
	if prompts == nil {
		return nil, errors.New("prompt builder is required")
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	o := &Orchestrator{
		resolver:     resolver,
		toolbox:      toolbox,
		prompts:      prompts,
		loop:         NewRoundLoop(model, toolbox, cfg.MaxRounds, prompts.ForcedFinal()),
		historyLimit: historyLimit,
		now:          time.Now,
	}

	graphRunner, err := o.compileChatGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleChat runs one turn for the authenticated user.
func (o *Orchestrator) HandleChat(ctx context.Context, userID string, req contractx.ChatRequest) (contractx.ChatResponse, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		UserID:  userID,
		Request: req,
	})
	if err != nil {
		return contractx.ChatResponse{}, err
	}
	return out.Response, nil
}
