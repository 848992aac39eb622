package tool

import (
	"context"
	"encoding/json"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
)

const (
	defaultListLimit = 10
	maxListLimit     = 50
	// recompute window for the fallback summary
	summarySampleLimit = 100
)

func (d *Dispatcher) performanceSummary(ctx context.Context, caller *contractx.Caller, _ json.RawMessage) (Payload, error) {
	return d.resolvePerformance(ctx, caller.CompanyID, caller.UserID)
}

// resolvePerformance prefers the precomputed summary row and falls back to
// recomputing from evaluated sessions and meet evaluations.
func (d *Dispatcher) resolvePerformance(ctx context.Context, companyID, userID string) (Payload, error) {
	row, err := d.data.GetPerformanceSummary(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if row != nil && row.TotalSessions > 0 {
		return d.policy.FromStored(row), nil
	}

	sessions, err := d.data.ListSessions(ctx, store.SessionQuery{
		CompanyID:     companyID,
		UserID:        userID,
		Status:        "completed",
		EvaluatedOnly: true,
		Limit:         summarySampleLimit,
	})
	if err != nil {
		return nil, err
	}
	meets, err := d.data.ListMeetEvaluations(ctx, store.MeetQuery{
		CompanyID: companyID,
		UserID:    userID,
		Limit:     summarySampleLimit,
	})
	if err != nil {
		return nil, err
	}

	summary, ok := d.policy.Summarize(sessions, meets)
	if !ok {
		return NoPerformancePayload{Message: NoPerformanceMessage}, nil
	}
	return summary, nil
}

type sessionsArgs struct {
	Limit  looseInt `json:"limit"`
	Status string   `json:"status"`
}

func (d *Dispatcher) roleplaySessions(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[sessionsArgs](raw)
	if err != nil {
		return nil, err
	}
	rows, err := d.data.ListSessions(ctx, store.SessionQuery{
		CompanyID: caller.CompanyID,
		UserID:    caller.UserID,
		Status:    args.Status,
		Limit:     clampLimit(args.Limit, defaultListLimit, maxListLimit),
	})
	if err != nil {
		return nil, err
	}

	out := RoleplaySessionsPayload{Total: len(rows), Sessions: make([]SessionItem, 0, len(rows))}
	for i := range rows {
		out.Sessions = append(out.Sessions, d.sessionItem(&rows[i]))
	}
	return out, nil
}

func (d *Dispatcher) sessionItem(s *store.RoleplaySession) SessionItem {
	item := SessionItem{
		ID:         s.ID,
		Status:     s.Status,
		ClientName: s.ClientName,
		Segment:    s.Segment,
		Difficulty: s.Difficulty,
		CreatedAt:  formatTimestamp(s.CreatedAt.In(d.loc)),
	}
	if s.Evaluation != nil {
		score := round(d.policy.Normalize(s.Evaluation.OverallScore), 1)
		item.OverallScore = &score
	}
	return item
}

type sessionDetailsArgs struct {
	SessionID string `json:"session_id"`
}

func (d *Dispatcher) sessionDetails(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[sessionDetailsArgs](raw)
	if err != nil {
		return nil, err
	}
	if args.SessionID == "" {
		args.SessionID = caller.Viewing.SessionID
	}
	if args.SessionID == "" {
		return nil, validation("session_id é obrigatório")
	}

	s, err := d.data.GetSession(ctx, caller.CompanyID, caller.UserID, args.SessionID)
	if err != nil {
		return nil, err
	}

	out := SessionDetailsPayload{SessionItem: d.sessionItem(s)}
	if s.EndedAt != nil {
		out.EndedAt = formatTimestamp(s.EndedAt.In(d.loc))
	}
	if ev := s.Evaluation; ev != nil {
		spin := d.policy.normalizeSpin(ev.Spin)
		out.Spin = &spin
		out.TopStrengths = ev.TopStrengths
		out.CriticalGaps = ev.CriticalGaps
		out.ExecutiveSummary = ev.ExecutiveSummary
	}
	return out, nil
}

type limitArgs struct {
	Limit looseInt `json:"limit"`
}

func (d *Dispatcher) spinAnalysis(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[limitArgs](raw)
	if err != nil {
		return nil, err
	}
	rows, err := d.data.ListSessions(ctx, store.SessionQuery{
		CompanyID:     caller.CompanyID,
		UserID:        caller.UserID,
		EvaluatedOnly: true,
		Limit:         clampLimit(args.Limit, defaultListLimit, maxListLimit),
	})
	if err != nil {
		return nil, err
	}

	out := SpinAnalysisPayload{Sessions: make([]SpinSessionItem, 0, len(rows))}
	var sum SpinAverages
	for _, s := range rows {
		if s.Evaluation == nil {
			continue
		}
		spin := d.policy.normalizeSpin(s.Evaluation.Spin)
		sum = addSpin(sum, spin)
		out.Sessions = append(out.Sessions, SpinSessionItem{
			SessionID: s.ID,
			CreatedAt: formatTimestamp(s.CreatedAt.In(d.loc)),
			Spin:      spin,
		})
	}
	out.Total = len(out.Sessions)
	if out.Total > 0 {
		out.Averages = divideSpin(sum, out.Total)
		out.Strongest, out.Weakest = spinExtremes(out.Averages)
	}
	return out, nil
}

func (d *Dispatcher) meetEvaluations(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[limitArgs](raw)
	if err != nil {
		return nil, err
	}
	rows, err := d.data.ListMeetEvaluations(ctx, store.MeetQuery{
		CompanyID: caller.CompanyID,
		UserID:    caller.UserID,
		Limit:     clampLimit(args.Limit, defaultListLimit, maxListLimit),
	})
	if err != nil {
		return nil, err
	}

	out := MeetEvaluationsPayload{Total: len(rows), Evaluations: make([]MeetEvaluationItem, 0, len(rows))}
	for i := range rows {
		m := &rows[i]
		out.Evaluations = append(out.Evaluations, MeetEvaluationItem{
			ID:           m.ID,
			MeetingTitle: m.MeetingTitle,
			CreatedAt:    formatTimestamp(m.CreatedAt.In(d.loc)),
			OverallScore: round(d.policy.Normalize(m.OverallScore), 1),
			Spin:         d.policy.normalizeSpin(m.Spin()),
			Strengths:    m.Strengths,
			Gaps:         m.Gaps,
			Summary:      m.Summary,
		})
	}
	return out, nil
}

func addSpin(a, b SpinAverages) SpinAverages {
	return SpinAverages{
		Situation:   a.Situation + b.Situation,
		Problem:     a.Problem + b.Problem,
		Implication: a.Implication + b.Implication,
		NeedPayoff:  a.NeedPayoff + b.NeedPayoff,
	}
}

func divideSpin(sum SpinAverages, n int) SpinAverages {
	if n == 0 {
		return SpinAverages{}
	}
	f := float64(n)
	return SpinAverages{
		Situation:   round(sum.Situation/f, 1),
		Problem:     round(sum.Problem/f, 1),
		Implication: round(sum.Implication/f, 1),
		NeedPayoff:  round(sum.NeedPayoff/f, 1),
	}
}
