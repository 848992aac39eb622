package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/spinlab/coach/agent/contract"
)

// EinoModel adapts an eino tool-calling chat model to contract.ChatModel.
type EinoModel struct {
	base einomodel.ToolCallingChatModel
}

func NewEinoModel(base einomodel.ToolCallingChatModel) *EinoModel {
	return &EinoModel{base: base}
}

func (m *EinoModel) Complete(ctx context.Context, req contractx.CompletionRequest) (*schema.Message, error) {
	chat := m.base
	if len(req.Tools) > 0 {
		bound, err := m.base.WithTools(ToolInfos(req.Tools))
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
		}
		chat = bound
	}

	msg, err := chat.Generate(ctx, req.Messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}
	return msg, nil
}

// ToolInfos converts catalog definitions into eino tool infos, keeping order.
func ToolInfos(defs []contractx.ToolDefinition) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, d := range defs {
		params := make(map[string]*schema.ParameterInfo, len(d.Params))
		for name, p := range d.Params {
			params[name] = parameterInfo(p)
		}
		info := &schema.ToolInfo{
			Name: d.Name,
			Desc: d.Description,
		}
		if len(params) > 0 {
			info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
		}
		infos = append(infos, info)
	}
	return infos
}

func parameterInfo(p contractx.ToolParam) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type:     dataType(p.Type),
		Desc:     p.Description,
		Required: p.Required,
		Enum:     append([]string(nil), p.Enum...),
	}
	if p.Type == contractx.ParamArray {
		items := p.Items
		if items == "" {
			items = contractx.ParamString
		}
		info.ElemInfo = &schema.ParameterInfo{Type: dataType(items)}
	}
	return info
}

func dataType(t contractx.ToolParamType) schema.DataType {
	switch t {
	case contractx.ParamInteger:
		return schema.Integer
	case contractx.ParamNumber:
		return schema.Number
	case contractx.ParamBoolean:
		return schema.Boolean
	case contractx.ParamArray:
		return schema.Array
	default:
		return schema.String
	}
}
