package contract

import (
	"sort"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "gestor"
	RoleSeller  Role = "vendedor"
)

// ParseRole accepts the role spellings stored in employees.role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleManager:
		return RoleManager, true
	case RoleSeller:
		return RoleSeller, true
	default:
		return "", false
	}
}

func (r Role) IsManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// ViewingContext describes the dashboard page the caller had open when
// asking. Managers use it to ask about the employee they are looking at.
type ViewingContext struct {
	Page         string `json:"page,omitempty"`
	EmployeeID   string `json:"employeeId,omitempty"`
	EmployeeName string `json:"employeeName,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
}

// Caller is the per-request identity every tool is scoped by.
type Caller struct {
	UserID      string
	CompanyID   string
	CompanyName string
	EmployeeID  string
	Name        string
	Email       string
	Role        Role
	Viewing     ViewingContext
}

func (c *Caller) IsManager() bool {
	return c != nil && c.Role.IsManager()
}

type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string           `json:"message"`
	History []HistoryMessage `json:"conversationHistory,omitempty"`
	Viewing ViewingContext   `json:"viewingContext,omitempty"`
}

type ChatResponse struct {
	Response  string   `json:"response"`
	ToolsUsed []string `json:"toolsUsed"`
	IsManager bool     `json:"isManager"`
}

// TurnResult is what one pass of the round loop produced.
type TurnResult struct {
	Answer    string
	ToolsUsed []string
	Rounds    int
	LLMCalls  int
	Forced    bool
}

type ToolParamType string

const (
	ParamString  ToolParamType = "string"
	ParamInteger ToolParamType = "integer"
	ParamNumber  ToolParamType = "number"
	ParamBoolean ToolParamType = "boolean"
	ParamArray   ToolParamType = "array"
)

type ToolParam struct {
	Type        ToolParamType
	Description string
	Required    bool
	Enum        []string
	// Items is the element type when Type is ParamArray.
	Items ToolParamType
}

// ToolDefinition is provider-neutral tool metadata; the model adapters
// translate it to their own wire shapes.
type ToolDefinition struct {
	Name        string
	Description string
	Params      map[string]ToolParam
}

// JSONSchema renders the parameters as a JSON-schema object.
func (d ToolDefinition) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for name, p := range d.Params {
		prop := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = append([]string(nil), p.Enum...)
		}
		if p.Type == ParamArray {
			items := p.Items
			if items == "" {
				items = ParamString
			}
			prop["items"] = map[string]any{"type": string(items)}
		}
		properties[name] = prop
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// ToolOutcome is one executed tool call, already encoded for the model.
type ToolOutcome struct {
	Tool    string
	Content string
	Failed  bool
}
