package tool

// Payload is the result of one tool call. Every tool has its own concrete
// type, so the JSON the model sees has a fixed shape per tool name.
type Payload interface {
	isPayload()
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type SpinAverages struct {
	Situation   float64 `json:"situation"`
	Problem     float64 `json:"problem"`
	Implication float64 `json:"implication"`
	NeedPayoff  float64 `json:"need_payoff"`
}

/* ----------------------------- performance ------------------------------ */

type PerformanceSummaryPayload struct {
	Source               string       `json:"source"`
	TotalSessions        int          `json:"total_sessions"`
	TotalMeetEvaluations int          `json:"total_meet_evaluations"`
	OverallAverage       float64      `json:"overall_average"`
	BestScore            float64      `json:"best_score"`
	LastScore            float64      `json:"last_score"`
	Spin                 SpinAverages `json:"spin_averages"`
	TopStrengths         []string     `json:"top_strengths"`
	CriticalGaps         []string     `json:"critical_gaps"`
	Trend                string       `json:"trend"`
	UpdatedAt            string       `json:"updated_at,omitempty"`
}

// NoPerformancePayload is returned when the user has nothing evaluated yet.
// It deliberately carries no numbers.
type NoPerformancePayload struct {
	Message string `json:"message"`
}

/* ------------------------------- sessions ------------------------------- */

type SessionItem struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	ClientName   string   `json:"client_name,omitempty"`
	Segment      string   `json:"segment,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	CreatedAt    string   `json:"created_at"`
	OverallScore *float64 `json:"overall_score,omitempty"`
}

type RoleplaySessionsPayload struct {
	Total    int           `json:"total"`
	Sessions []SessionItem `json:"sessions"`
}

type SessionDetailsPayload struct {
	SessionItem
	EndedAt          string        `json:"ended_at,omitempty"`
	Spin             *SpinAverages `json:"spin,omitempty"`
	TopStrengths     []string      `json:"top_strengths,omitempty"`
	CriticalGaps     []string      `json:"critical_gaps,omitempty"`
	ExecutiveSummary string        `json:"executive_summary,omitempty"`
}

type SpinSessionItem struct {
	SessionID string       `json:"session_id"`
	CreatedAt string       `json:"created_at"`
	Spin      SpinAverages `json:"spin"`
}

type SpinAnalysisPayload struct {
	Total     int               `json:"total"`
	Averages  SpinAverages      `json:"averages"`
	Strongest string            `json:"strongest,omitempty"`
	Weakest   string            `json:"weakest,omitempty"`
	Sessions  []SpinSessionItem `json:"sessions"`
}

/* ------------------------------ challenges ------------------------------ */

type ChallengeItem struct {
	ID             string   `json:"id"`
	Date           string   `json:"date"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	TargetWeakness string   `json:"target_weakness,omitempty"`
	Difficulty     string   `json:"difficulty,omitempty"`
	Status         string   `json:"status"`
	ResultScore    *float64 `json:"result_score,omitempty"`
}

type DailyChallengesPayload struct {
	Total      int             `json:"total"`
	Challenges []ChallengeItem `json:"challenges"`
}

type ChallengeStatsPayload struct {
	Total          int      `json:"total"`
	Completed      int      `json:"completed"`
	Pending        int      `json:"pending"`
	Skipped        int      `json:"skipped"`
	CompletionRate float64  `json:"completion_rate"`
	AverageScore   *float64 `json:"average_score,omitempty"`
	CurrentStreak  int      `json:"current_streak"`
}

/* ---------------------------- meet evaluations --------------------------- */

type MeetEvaluationItem struct {
	ID           string       `json:"id"`
	MeetingTitle string       `json:"meeting_title"`
	CreatedAt    string       `json:"created_at"`
	OverallScore float64      `json:"overall_score"`
	Spin         SpinAverages `json:"spin"`
	Strengths    []string     `json:"strengths,omitempty"`
	Gaps         []string     `json:"gaps,omitempty"`
	Summary      string       `json:"summary,omitempty"`
}

type MeetEvaluationsPayload struct {
	Total       int                  `json:"total"`
	Evaluations []MeetEvaluationItem `json:"evaluations"`
}

/* ------------------------------- calendar ------------------------------- */

type EventItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	StartTime  string   `json:"start_time,omitempty"`
	EndTime    string   `json:"end_time,omitempty"`
	AllDay     bool     `json:"all_day,omitempty"`
	MeetLink   string   `json:"meet_link,omitempty"`
	Attendees  []string `json:"attendees,omitempty"`
	BotEnabled bool     `json:"bot_enabled,omitempty"`
}

type CalendarEventsPayload struct {
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Total     int         `json:"total"`
	Events    []EventItem `json:"events"`
}

type SlotItem struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Minutes int    `json:"minutes"`
}

type FreeSlotsPayload struct {
	Date         string     `json:"date"`
	WorkingHours string     `json:"working_hours"`
	Total        int        `json:"total"`
	Slots        []SlotItem `json:"slots"`
}

type CreateEventPayload struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Event   EventItem `json:"event"`
}

type UpdateEventPayload struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Event   EventItem `json:"event"`
}

type DeleteEventPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EventID string `json:"event_id"`
}

type MeetingBotPayload struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	EventID    string `json:"event_id"`
	BotEnabled bool   `json:"bot_enabled"`
	BotStatus  string `json:"bot_status"`
}

/* ------------------------ colleagues and sharing ------------------------ */

type ColleagueItem struct {
	EmployeeID string `json:"employee_id"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Position   string `json:"position,omitempty"`
}

type ColleaguesPayload struct {
	Total      int             `json:"total"`
	Colleagues []ColleagueItem `json:"colleagues"`
}

type ShareEvaluationPayload struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	SharedWith []string `json:"shared_with"`
}

type SharedItem struct {
	EvaluationID   string `json:"evaluation_id"`
	EvaluationType string `json:"evaluation_type"`
	SharedBy       string `json:"shared_by"`
	Message        string `json:"message,omitempty"`
	SharedAt       string `json:"shared_at"`
}

type SharedWithMePayload struct {
	Total int          `json:"total"`
	Items []SharedItem `json:"items"`
}

type NotificationItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type NotificationsPayload struct {
	Total         int                `json:"total"`
	Unread        int                `json:"unread"`
	Notifications []NotificationItem `json:"notifications"`
}

/* --------------------------------- team --------------------------------- */

type MemberSummary struct {
	EmployeeID   string   `json:"employee_id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Sessions     int      `json:"sessions"`
	AverageScore *float64 `json:"average_score,omitempty"`
	LastActivity string   `json:"last_activity,omitempty"`
}

type TeamOverviewPayload struct {
	TeamSize      int             `json:"team_size"`
	ActiveMembers int             `json:"active_members"`
	TotalSessions int             `json:"total_sessions"`
	TeamAverage   *float64        `json:"team_average,omitempty"`
	PeriodDays    int             `json:"period_days"`
	Members       []MemberSummary `json:"members"`
}

type RankingEntry struct {
	Position     int      `json:"position"`
	EmployeeID   string   `json:"employee_id"`
	Name         string   `json:"name"`
	Sessions     int      `json:"sessions"`
	AverageScore *float64 `json:"average_score,omitempty"`
}

type TeamRankingPayload struct {
	Metric  string         `json:"metric"`
	Total   int            `json:"total"`
	Ranking []RankingEntry `json:"ranking"`
}

type EmployeePerformancePayload struct {
	Employee    *ColleagueItem             `json:"employee,omitempty"`
	Performance *PerformanceSummaryPayload `json:"performance,omitempty"`
	Message     string                     `json:"message,omitempty"`
	Candidates  []ColleagueItem            `json:"candidates,omitempty"`
}

type MemberSpin struct {
	EmployeeID string       `json:"employee_id"`
	Name       string       `json:"name"`
	Sessions   int          `json:"sessions"`
	Spin       SpinAverages `json:"spin"`
}

type TeamSpinPayload struct {
	Sessions  int          `json:"sessions"`
	Averages  SpinAverages `json:"averages"`
	Weakest   string       `json:"weakest,omitempty"`
	PerMember []MemberSpin `json:"per_member"`
}

type TeamChallengeItem struct {
	EmployeeID  string   `json:"employee_id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	ResultScore *float64 `json:"result_score,omitempty"`
}

type TeamChallengesPayload struct {
	Date       string              `json:"date"`
	Total      int                 `json:"total"`
	Completed  int                 `json:"completed"`
	Pending    int                 `json:"pending"`
	Challenges []TeamChallengeItem `json:"challenges"`
}

type RoleUpdatePayload struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

func (ErrorPayload) isPayload()               {}
func (PerformanceSummaryPayload) isPayload()  {}
func (NoPerformancePayload) isPayload()       {}
func (RoleplaySessionsPayload) isPayload()    {}
func (SessionDetailsPayload) isPayload()      {}
func (SpinAnalysisPayload) isPayload()        {}
func (DailyChallengesPayload) isPayload()     {}
func (ChallengeStatsPayload) isPayload()      {}
func (MeetEvaluationsPayload) isPayload()     {}
func (CalendarEventsPayload) isPayload()      {}
func (FreeSlotsPayload) isPayload()           {}
func (CreateEventPayload) isPayload()         {}
func (UpdateEventPayload) isPayload()         {}
func (DeleteEventPayload) isPayload()         {}
func (MeetingBotPayload) isPayload()          {}
func (ColleaguesPayload) isPayload()          {}
func (ShareEvaluationPayload) isPayload()     {}
func (SharedWithMePayload) isPayload()        {}
func (NotificationsPayload) isPayload()       {}
func (TeamOverviewPayload) isPayload()        {}
func (TeamRankingPayload) isPayload()         {}
func (EmployeePerformancePayload) isPayload() {}
func (TeamSpinPayload) isPayload()            {}
func (TeamChallengesPayload) isPayload()      {}
func (RoleUpdatePayload) isPayload()          {}
