package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	contractx "github.com/spinlab/coach/agent/contract"
)

// SDKModel calls the chat completions endpoint through openai-go directly.
type SDKModel struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewSDKModel(client *openai.Client, model string, maxTokens int, temperature float32) *SDKModel {
	return &SDKModel{
		client:      client,
		model:       strings.TrimSpace(model),
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (m *SDKModel) Complete(ctx context.Context, req contractx.CompletionRequest) (*schema.Message, error) {
	messages, err := toSDKMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(m.model),
		Messages:    messages,
		Temperature: openai.Float(float64(m.temperature)),
	}
	if m.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(m.maxTokens))
	}
	for _, d := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  shared.FunctionParameters(d.JSONSchema()),
			},
		})
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion has no choices", contractx.ErrSchemaViolation)
	}

	choice := resp.Choices[0].Message
	out := &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Content,
	}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out, nil
}

func toSDKMessages(msgs []*schema.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for i, msg := range msgs {
		if msg == nil {
			return nil, fmt.Errorf("%w: nil message at index %d", contractx.ErrValidation, i)
		}
		switch msg.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(msg.Content))
		case schema.User:
			out = append(out, openai.UserMessage(msg.Content))
		case schema.Assistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				asst.Content.OfString = openai.String(msg.Content)
			}
			for _, tc := range msg.ToolCalls {
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case schema.Tool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			return nil, fmt.Errorf("%w: unsupported role %q at index %d", contractx.ErrValidation, msg.Role, i)
		}
	}
	return out, nil
}
