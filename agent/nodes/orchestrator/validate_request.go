package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/spinlab/coach/agent/contract"
)

var (
	ErrInvalidMessage = fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	ErrMessageTooLong = fmt.Errorf("%w: message is too long", contractx.ErrValidation)
	ErrInvalidUser    = errors.New("user id is empty")
)

// MaxMessageRunes bounds one user message.
const MaxMessageRunes = 4000

type GraphInput struct {
	UserID  string
	Request contractx.ChatRequest
}

type GraphOutput struct {
	Response contractx.ChatResponse
	Turn     contractx.TurnResult
}

type GraphState struct {
	UserID  string
	Message string
	History []contractx.HistoryMessage
	Viewing contractx.ViewingContext
	Now     time.Time

	Caller       *contractx.Caller
	Tools        []contractx.ToolDefinition
	Conversation []*schema.Message

	Turn contractx.TurnResult
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: %v", contractx.ErrUnauthorized, ErrInvalidUser)
	}

	text := strings.TrimSpace(in.Request.Message)
	if text == "" {
		return nil, ErrInvalidMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	return &GraphState{
		UserID:  userID,
		Message: text,
		History: in.Request.History,
		Viewing: trimViewing(in.Request.Viewing),
		Now:     nowFn().UTC(),
	}, nil
}

func trimViewing(v contractx.ViewingContext) contractx.ViewingContext {
	return contractx.ViewingContext{
		Page:         strings.TrimSpace(v.Page),
		EmployeeID:   strings.TrimSpace(v.EmployeeID),
		EmployeeName: strings.TrimSpace(v.EmployeeName),
		SessionID:    strings.TrimSpace(v.SessionID),
	}
}
