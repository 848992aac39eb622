package store

import (
	"time"

	"github.com/uptrace/bun"
)

type Company struct {
	bun.BaseModel `bun:"table:companies,alias:c"`

	ID   string `bun:"id,pk,type:uuid"`
	Name string `bun:"name"`
}

type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e"`

	ID        string    `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,type:uuid"`
	CompanyID string    `bun:"company_id,type:uuid"`
	Name      string    `bun:"name"`
	Email     string    `bun:"email"`
	Role      string    `bun:"role"`
	Position  string    `bun:"position"`
	CreatedAt time.Time `bun:"created_at"`
}

type SpinScores struct {
	Situation   float64 `json:"situation"`
	Problem     float64 `json:"problem"`
	Implication float64 `json:"implication"`
	NeedPayoff  float64 `json:"need_payoff"`
}

// RoleplayEvaluation is the jsonb written by the evaluator after a session ends.
type RoleplayEvaluation struct {
	OverallScore     float64    `json:"overall_score"`
	Spin             SpinScores `json:"spin_evaluation"`
	TopStrengths     []string   `json:"top_strengths"`
	CriticalGaps     []string   `json:"critical_gaps"`
	ExecutiveSummary string     `json:"executive_summary"`
}

type RoleplaySession struct {
	bun.BaseModel `bun:"table:roleplay_sessions,alias:rs"`

	ID         string              `bun:"id,pk,type:uuid"`
	UserID     string              `bun:"user_id,type:uuid"`
	CompanyID  string              `bun:"company_id,type:uuid"`
	Status     string              `bun:"status"`
	ClientName string              `bun:"client_name"`
	Segment    string              `bun:"segment"`
	Difficulty string              `bun:"difficulty"`
	CreatedAt  time.Time           `bun:"created_at"`
	EndedAt    *time.Time          `bun:"ended_at"`
	Evaluation *RoleplayEvaluation `bun:"evaluation,type:jsonb"`
}

type MeetEvaluation struct {
	bun.BaseModel `bun:"table:meet_evaluations,alias:me"`

	ID              string    `bun:"id,pk,type:uuid"`
	UserID          string    `bun:"user_id,type:uuid"`
	CompanyID       string    `bun:"company_id,type:uuid"`
	MeetingTitle    string    `bun:"meeting_title"`
	SellerName      string    `bun:"seller_name"`
	OverallScore    float64   `bun:"overall_score"`
	SpinSituation   float64   `bun:"spin_situation"`
	SpinProblem     float64   `bun:"spin_problem"`
	SpinImplication float64   `bun:"spin_implication"`
	SpinNeedPayoff  float64   `bun:"spin_need_payoff"`
	Strengths       []string  `bun:"strengths,type:jsonb"`
	Gaps            []string  `bun:"gaps,type:jsonb"`
	Summary         string    `bun:"summary"`
	CreatedAt       time.Time `bun:"created_at"`
}

func (m *MeetEvaluation) Spin() SpinScores {
	return SpinScores{
		Situation:   m.SpinSituation,
		Problem:     m.SpinProblem,
		Implication: m.SpinImplication,
		NeedPayoff:  m.SpinNeedPayoff,
	}
}

type PerformanceSummary struct {
	bun.BaseModel `bun:"table:user_performance_summaries,alias:ps"`

	UserID         string    `bun:"user_id,pk,type:uuid"`
	CompanyID      string    `bun:"company_id,type:uuid"`
	TotalSessions  int       `bun:"total_sessions"`
	OverallAverage float64   `bun:"overall_average"`
	BestScore      float64   `bun:"best_score"`
	LastScore      float64   `bun:"last_score"`
	SpinSituation  float64   `bun:"spin_s_average"`
	SpinProblem    float64   `bun:"spin_p_average"`
	SpinImplic     float64   `bun:"spin_i_average"`
	SpinNeedPayoff float64   `bun:"spin_n_average"`
	TopStrengths   []string  `bun:"top_strengths,type:jsonb"`
	CriticalGaps   []string  `bun:"critical_gaps,type:jsonb"`
	Trend          string    `bun:"trend"`
	UpdatedAt      time.Time `bun:"updated_at"`
}

type DailyChallenge struct {
	bun.BaseModel `bun:"table:daily_challenges,alias:dc"`

	ID             string     `bun:"id,pk,type:uuid"`
	UserID         string     `bun:"user_id,type:uuid"`
	CompanyID      string     `bun:"company_id,type:uuid"`
	ChallengeDate  time.Time  `bun:"challenge_date,type:date"`
	Title          string     `bun:"title"`
	Description    string     `bun:"description"`
	TargetWeakness string     `bun:"target_weakness"`
	Difficulty     string     `bun:"difficulty"`
	Status         string     `bun:"status"`
	ResultScore    *float64   `bun:"result_score"`
	CompletedAt    *time.Time `bun:"completed_at"`
}

// CalendarEvent mirrors provider events so the meeting bot can be toggled.
type CalendarEvent struct {
	bun.BaseModel `bun:"table:calendar_events,alias:ce"`

	ID            string    `bun:"id,pk,type:uuid"`
	UserID        string    `bun:"user_id,type:uuid"`
	CompanyID     string    `bun:"company_id,type:uuid"`
	GoogleEventID string    `bun:"google_event_id"`
	Title         string    `bun:"title"`
	StartTime     time.Time `bun:"start_time"`
	EndTime       time.Time `bun:"end_time"`
	MeetLink      string    `bun:"meet_link"`
	BotEnabled    bool      `bun:"bot_enabled"`
	BotStatus     string    `bun:"bot_status"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

type CalendarConnection struct {
	bun.BaseModel `bun:"table:google_calendar_connections,alias:gc"`

	UserID       string    `bun:"user_id,pk,type:uuid"`
	AccessToken  string    `bun:"access_token"`
	RefreshToken string    `bun:"refresh_token"`
	TokenExpiry  time.Time `bun:"token_expiry"`
	CalendarID   string    `bun:"calendar_id"`
}

type SharedEvaluation struct {
	bun.BaseModel `bun:"table:shared_evaluations,alias:se"`

	ID             string    `bun:"id,pk,type:uuid"`
	EvaluationID   string    `bun:"evaluation_id,type:uuid"`
	EvaluationType string    `bun:"evaluation_type"`
	SharedBy       string    `bun:"shared_by,type:uuid"`
	SharedWith     string    `bun:"shared_with,type:uuid"`
	CompanyID      string    `bun:"company_id,type:uuid"`
	Message        string    `bun:"message"`
	CreatedAt      time.Time `bun:"created_at"`
}

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        string         `bun:"id,pk,type:uuid"`
	UserID    string         `bun:"user_id,type:uuid"`
	CompanyID string         `bun:"company_id,type:uuid"`
	Type      string         `bun:"type"`
	Title     string         `bun:"title"`
	Message   string         `bun:"message"`
	Data      map[string]any `bun:"data,type:jsonb"`
	Read      bool           `bun:"read"`
	CreatedAt time.Time      `bun:"created_at"`
}
