package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/markup"
)

// EmptyAnswerFallback replaces a blank final answer.
const EmptyAnswerFallback = "Desculpe, não consegui gerar uma resposta agora. Pode reformular a pergunta?"

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Caller == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	answer := strings.TrimSpace(markup.Normalize(in.Turn.Answer))
	if answer == "" {
		answer = EmptyAnswerFallback
	}
	in.Turn.Answer = answer

	tools := in.Turn.ToolsUsed
	if tools == nil {
		tools = []string{}
	}

	return GraphOutput{
		Response: contractx.ChatResponse{
			Response:  answer,
			ToolsUsed: tools,
			IsManager: in.Caller.IsManager(),
		},
		Turn: in.Turn,
	}, nil
}
