package orchestratornode

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/spinlab/coach/agent/contract"
)

// SystemPrompter renders the per-caller system prompt.
type SystemPrompter interface {
	System(caller *contractx.Caller, tools []contractx.ToolDefinition) (string, error)
}

// BuildConversation seeds [system, ...history, user]. Only user and
// assistant history entries with content survive, newest historyLimit kept.
func BuildConversation(
	in *GraphState,
	toolbox contractx.Toolbox,
	prompts SystemPrompter,
	historyLimit int,
) (*GraphState, error) {
	if in == nil || in.Caller == nil {
		return nil, fmt.Errorf("%w: caller is not resolved", contractx.ErrValidation)
	}

	in.Tools = toolbox.Catalog(in.Caller)
	system, err := prompts.System(in.Caller, in.Tools)
	if err != nil {
		return nil, err
	}

	history := FilterHistory(in.History, historyLimit)
	conv := make([]*schema.Message, 0, len(history)+2)
	conv = append(conv, schema.SystemMessage(system))
	conv = append(conv, history...)
	conv = append(conv, schema.UserMessage(in.Message))

	in.Conversation = conv
	return in, nil
}

// FilterHistory converts client history into model messages. Entries with
// other roles are dropped so a client cannot inject system or tool turns.
func FilterHistory(history []contractx.HistoryMessage, limit int) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, h := range history {
		content := strings.TrimSpace(h.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(h.Role)) {
		case string(schema.User):
			out = append(out, schema.UserMessage(content))
		case string(schema.Assistant):
			out = append(out, schema.AssistantMessage(content, nil))
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
