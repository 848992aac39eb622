package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
)

const (
	evaluationRoleplay = "roleplay"
	evaluationMeet     = "meet"

	notificationEvaluationShared = "evaluation_shared"
)

func colleagueItem(e *store.Employee) ColleagueItem {
	return ColleagueItem{
		EmployeeID: e.ID,
		UserID:     e.UserID,
		Name:       e.Name,
		Role:       e.Role,
		Position:   e.Position,
	}
}

func (d *Dispatcher) colleagues(ctx context.Context, caller *contractx.Caller, _ json.RawMessage) (Payload, error) {
	rows, err := d.data.ListEmployees(ctx, caller.CompanyID)
	if err != nil {
		return nil, err
	}
	out := ColleaguesPayload{Colleagues: make([]ColleagueItem, 0, len(rows))}
	for i := range rows {
		if rows[i].UserID == caller.UserID {
			continue
		}
		out.Colleagues = append(out.Colleagues, colleagueItem(&rows[i]))
	}
	out.Total = len(out.Colleagues)
	return out, nil
}

type shareArgs struct {
	EvaluationID   string   `json:"evaluation_id"`
	EvaluationType string   `json:"evaluation_type"`
	RecipientIDs   []string `json:"recipient_ids"`
	Message        string   `json:"message"`
}

func (d *Dispatcher) shareEvaluation(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[shareArgs](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.EvaluationID) == "" {
		return nil, validation("evaluation_id é obrigatório")
	}
	recipients := trimmedIDs(args.RecipientIDs)
	if len(recipients) == 0 {
		return nil, validation("informe ao menos um destinatário em recipient_ids")
	}

	// Only the owner may share an evaluation.
	switch args.EvaluationType {
	case evaluationRoleplay:
		_, err = d.data.GetSession(ctx, caller.CompanyID, caller.UserID, args.EvaluationID)
	case evaluationMeet:
		_, err = d.data.GetMeetEvaluation(ctx, caller.CompanyID, caller.UserID, args.EvaluationID)
	default:
		return nil, validation("evaluation_type deve ser roleplay ou meet")
	}
	if err != nil {
		return nil, err
	}

	employees, err := d.data.ListEmployees(ctx, caller.CompanyID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*store.Employee, len(employees)*2)
	for i := range employees {
		e := &employees[i]
		byID[e.UserID] = e
		byID[e.ID] = e
	}

	var (
		shares  = make([]store.SharedEvaluation, 0, len(recipients))
		notes   = make([]store.Notification, 0, len(recipients))
		names   = make([]string, 0, len(recipients))
		unknown []string
		seen    = map[string]struct{}{}
	)
	for _, id := range recipients {
		e, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		if e.UserID == caller.UserID {
			continue
		}
		if _, dup := seen[e.UserID]; dup {
			continue
		}
		seen[e.UserID] = struct{}{}

		shares = append(shares, store.SharedEvaluation{
			EvaluationID:   args.EvaluationID,
			EvaluationType: args.EvaluationType,
			SharedBy:       caller.UserID,
			SharedWith:     e.UserID,
			CompanyID:      caller.CompanyID,
			Message:        strings.TrimSpace(args.Message),
		})
		notes = append(notes, store.Notification{
			UserID:    e.UserID,
			CompanyID: caller.CompanyID,
			Type:      notificationEvaluationShared,
			Title:     "Avaliação compartilhada",
			Message:   fmt.Sprintf("%s compartilhou uma avaliação com você", callerName(caller)),
			Data: map[string]any{
				"evaluation_id":   args.EvaluationID,
				"evaluation_type": args.EvaluationType,
				"shared_by":       caller.UserID,
			},
		})
		names = append(names, e.Name)
	}
	if len(unknown) > 0 {
		return nil, validation(fmt.Sprintf("destinatários não encontrados na empresa: %s", strings.Join(unknown, ", ")))
	}
	if len(shares) == 0 {
		return nil, validation("nenhum destinatário válido além do próprio usuário")
	}

	if err := d.data.ShareEvaluation(ctx, shares, notes); err != nil {
		return nil, err
	}
	return ShareEvaluationPayload{
		Success:    true,
		Message:    fmt.Sprintf("Avaliação compartilhada com %d colega(s)", len(shares)),
		SharedWith: names,
	}, nil
}

func callerName(c *contractx.Caller) string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	if c.Email != "" {
		return c.Email
	}
	return "Um colega"
}

func (d *Dispatcher) sharedWithMe(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[limitArgs](raw)
	if err != nil {
		return nil, err
	}
	rows, err := d.data.ListSharedWith(ctx, caller.CompanyID, caller.UserID, clampLimit(args.Limit, defaultListLimit, maxListLimit))
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if len(rows) > 0 {
		employees, err := d.data.ListEmployees(ctx, caller.CompanyID)
		if err != nil {
			return nil, err
		}
		for _, e := range employees {
			names[e.UserID] = e.Name
		}
	}

	out := SharedWithMePayload{Total: len(rows), Items: make([]SharedItem, 0, len(rows))}
	for _, r := range rows {
		by := names[r.SharedBy]
		if by == "" {
			by = r.SharedBy
		}
		out.Items = append(out.Items, SharedItem{
			EvaluationID:   r.EvaluationID,
			EvaluationType: r.EvaluationType,
			SharedBy:       by,
			Message:        r.Message,
			SharedAt:       formatTimestamp(r.CreatedAt.In(d.loc)),
		})
	}
	return out, nil
}

type notificationsArgs struct {
	UnreadOnly looseBool `json:"unread_only"`
	Limit      looseInt  `json:"limit"`
}

func (d *Dispatcher) notifications(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[notificationsArgs](raw)
	if err != nil {
		return nil, err
	}
	rows, err := d.data.ListNotifications(ctx, caller.CompanyID, caller.UserID, args.UnreadOnly.value, clampLimit(args.Limit, defaultListLimit, maxListLimit))
	if err != nil {
		return nil, err
	}

	out := NotificationsPayload{Total: len(rows), Notifications: make([]NotificationItem, 0, len(rows))}
	for _, n := range rows {
		if !n.Read {
			out.Unread++
		}
		out.Notifications = append(out.Notifications, NotificationItem{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: formatTimestamp(n.CreatedAt.In(d.loc)),
		})
	}
	return out, nil
}
