package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	contractx "github.com/spinlab/coach/agent/contract"
	logx "github.com/spinlab/coach/pkg/logger"
	"github.com/spinlab/coach/pkg/metrics"
)

type handler func(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error)

// Dispatcher executes catalog tools against the tenant data and calendar.
// It never returns a Go error: every failure becomes an ErrorPayload.
type Dispatcher struct {
	data     DataStore
	calendar CalendarProvider
	policy   AggregationPolicy
	window   WorkWindow
	loc      *time.Location
	now      func() time.Time
	handlers map[string]handler
}

type Option func(*Dispatcher)

func WithPolicy(p AggregationPolicy) Option {
	return func(d *Dispatcher) { d.policy = p.withDefaults() }
}

func WithWorkWindow(w WorkWindow) Option {
	return func(d *Dispatcher) {
		if w.End > w.Start {
			d.window = w
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(data DataStore, cal CalendarProvider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		data:     data,
		calendar: cal,
		policy:   DefaultAggregationPolicy(),
		window:   DefaultWorkWindow(),
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handler{
		ToolPerformanceSummary:  d.performanceSummary,
		ToolRoleplaySessions:    d.roleplaySessions,
		ToolSessionDetails:      d.sessionDetails,
		ToolSpinAnalysis:        d.spinAnalysis,
		ToolDailyChallenges:     d.dailyChallenges,
		ToolChallengeStats:      d.challengeStats,
		ToolMeetEvaluations:     d.meetEvaluations,
		ToolCalendarEvents:      d.calendarEvents,
		ToolFreeSlots:           d.freeSlots,
		ToolCreateCalendarEvent: d.createCalendarEvent,
		ToolUpdateCalendarEvent: d.updateCalendarEvent,
		ToolDeleteCalendarEvent: d.deleteCalendarEvent,
		ToolToggleMeetingBot:    d.toggleMeetingBot,
		ToolColleagues:          d.colleagues,
		ToolShareEvaluation:     d.shareEvaluation,
		ToolSharedWithMe:        d.sharedWithMe,
		ToolNotifications:       d.notifications,
		ToolTeamOverview:        d.teamOverview,
		ToolTeamRanking:         d.teamRanking,
		ToolEmployeePerformance: d.employeePerformance,
		ToolTeamSpinAverages:    d.teamSpinAverages,
		ToolTeamChallenges:      d.teamChallenges,
		ToolUpdateEmployeeRole:  d.updateEmployeeRole,
	}
	return d
}

func (d *Dispatcher) Catalog(caller *contractx.Caller) []contractx.ToolDefinition {
	if caller == nil {
		return CatalogFor("")
	}
	return CatalogFor(caller.Role)
}

// Names lists every tool the dispatcher can run.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one tool call. rawArgs must be empty or a JSON object.
func (d *Dispatcher) Dispatch(ctx context.Context, caller *contractx.Caller, name, rawArgs string) (out Payload) {
	logger := logx.From(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("tool", name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tool handler panicked")
			out = ErrorPayload{Error: fmt.Sprintf("Erro interno ao executar %s", name)}
		}
	}()

	h, ok := d.handlers[name]
	if !ok {
		return ErrorPayload{Error: "Função desconhecida: " + name}
	}
	if caller == nil || caller.UserID == "" || caller.CompanyID == "" {
		return ErrorPayload{Error: "Usuário sem empresa associada"}
	}
	if !isJSONObject(rawArgs) {
		return ErrorPayload{Error: fmt.Sprintf("Argumentos inválidos para %s: JSON malformado", name)}
	}

	payload, err := h(ctx, caller, json.RawMessage(rawArgs))
	if err != nil {
		logger.Warn().Err(err).Str("tool", name).Msg("tool returned error")
		return ErrorPayload{Error: errorMessage(name, err)}
	}
	if payload == nil {
		return ErrorPayload{Error: fmt.Sprintf("%s não retornou resultado", name)}
	}
	return payload
}

// Execute dispatches and encodes the payload for the tool message.
func (d *Dispatcher) Execute(ctx context.Context, caller *contractx.Caller, name, rawArgs string) contractx.ToolOutcome {
	started := time.Now()
	payload := d.Dispatch(ctx, caller, name, rawArgs)
	_, failed := payload.(ErrorPayload)

	content, err := json.Marshal(payload)
	if err != nil {
		failed = true
		content, _ = json.Marshal(ErrorPayload{Error: fmt.Sprintf("Falha ao serializar resultado de %s", name)})
	}

	metrics.RecordToolCall(name, !failed, time.Since(started))
	logx.From(ctx).Debug().
		Str("tool", name).
		Bool("failed", failed).
		Dur("took", time.Since(started)).
		Msg("tool executed")

	return contractx.ToolOutcome{Tool: name, Content: string(content), Failed: failed}
}

func errorMessage(tool string, err error) string {
	switch {
	case errors.Is(err, contractx.ErrCalendarNotConnected):
		return "Google Calendar não conectado. Conecte sua agenda nas configurações para usar esta função."
	case errors.Is(err, contractx.ErrForbidden):
		return "Acesso restrito a gestores e administradores."
	case errors.Is(err, contractx.ErrNotFound):
		return "Registro não encontrado."
	case errors.Is(err, contractx.ErrValidation):
		return strings.TrimPrefix(err.Error(), contractx.ErrValidation.Error()+": ")
	default:
		return fmt.Sprintf("Erro ao executar %s: %v", tool, err)
	}
}

func (d *Dispatcher) today() time.Time {
	return startOfDay(d.now().In(d.loc))
}

func formatDate(t time.Time) string { return t.Format(time.DateOnly) }

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
