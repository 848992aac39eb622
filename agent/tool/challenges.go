package tool

import (
	"context"
	"encoding/json"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
)

const (
	challengeCompleted = "completed"
	challengePending   = "pending"
	challengeSkipped   = "skipped"

	statsWindow = 365
)

type challengesArgs struct {
	Limit  looseInt `json:"limit"`
	Status string   `json:"status"`
}

func (d *Dispatcher) dailyChallenges(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[challengesArgs](raw)
	if err != nil {
		return nil, err
	}
	rows, err := d.data.ListChallenges(ctx, store.ChallengeQuery{
		CompanyID: caller.CompanyID,
		UserID:    caller.UserID,
		Status:    args.Status,
		Limit:     clampLimit(args.Limit, defaultListLimit, maxListLimit),
	})
	if err != nil {
		return nil, err
	}

	out := DailyChallengesPayload{Total: len(rows), Challenges: make([]ChallengeItem, 0, len(rows))}
	for i := range rows {
		out.Challenges = append(out.Challenges, d.challengeItem(&rows[i]))
	}
	return out, nil
}

func (d *Dispatcher) challengeItem(c *store.DailyChallenge) ChallengeItem {
	item := ChallengeItem{
		ID:             c.ID,
		Date:           formatDate(c.ChallengeDate),
		Title:          c.Title,
		Description:    c.Description,
		TargetWeakness: c.TargetWeakness,
		Difficulty:     c.Difficulty,
		Status:         c.Status,
	}
	if c.ResultScore != nil {
		score := round(d.policy.Normalize(*c.ResultScore), 1)
		item.ResultScore = &score
	}
	return item
}

func (d *Dispatcher) challengeStats(ctx context.Context, caller *contractx.Caller, _ json.RawMessage) (Payload, error) {
	rows, err := d.data.ListChallenges(ctx, store.ChallengeQuery{
		CompanyID: caller.CompanyID,
		UserID:    caller.UserID,
		Limit:     statsWindow,
	})
	if err != nil {
		return nil, err
	}
	return d.challengeStatsFrom(rows), nil
}

func (d *Dispatcher) challengeStatsFrom(rows []store.DailyChallenge) ChallengeStatsPayload {
	out := ChallengeStatsPayload{Total: len(rows)}
	completedDays := make(map[string]struct{}, len(rows))

	var scoreSum float64
	var scored int
	for _, c := range rows {
		switch c.Status {
		case challengeCompleted:
			out.Completed++
			completedDays[formatDate(c.ChallengeDate)] = struct{}{}
		case challengeSkipped:
			out.Skipped++
		default:
			out.Pending++
		}
		if c.ResultScore != nil {
			scoreSum += d.policy.Normalize(*c.ResultScore)
			scored++
		}
	}
	if out.Total > 0 {
		out.CompletionRate = round(float64(out.Completed)/float64(out.Total)*100, 1)
	}
	if scored > 0 {
		avg := round(scoreSum/float64(scored), 1)
		out.AverageScore = &avg
	}

	// The streak survives until the end of today even if today's challenge is still open.
	day := d.today()
	if _, ok := completedDays[formatDate(day)]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	for {
		if _, ok := completedDays[formatDate(day)]; !ok {
			break
		}
		out.CurrentStreak++
		day = day.AddDate(0, 0, -1)
	}
	return out
}
