package tool

import (
	"context"
	"time"

	"github.com/spinlab/coach/agent/calendar"
	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
)

// DataStore is the slice of the tenant repository the handlers use.
type DataStore interface {
	ListEmployees(ctx context.Context, companyID string) ([]store.Employee, error)
	GetEmployee(ctx context.Context, companyID, employeeID string) (*store.Employee, error)
	FindEmployeesByName(ctx context.Context, companyID, name string) ([]store.Employee, error)
	UpdateEmployeeRole(ctx context.Context, companyID, employeeID string, role contractx.Role) error

	ListSessions(ctx context.Context, q store.SessionQuery) ([]store.RoleplaySession, error)
	GetSession(ctx context.Context, companyID, userID, sessionID string) (*store.RoleplaySession, error)
	ListMeetEvaluations(ctx context.Context, q store.MeetQuery) ([]store.MeetEvaluation, error)
	GetMeetEvaluation(ctx context.Context, companyID, userID, id string) (*store.MeetEvaluation, error)
	GetPerformanceSummary(ctx context.Context, companyID, userID string) (*store.PerformanceSummary, error)

	ListChallenges(ctx context.Context, q store.ChallengeQuery) ([]store.DailyChallenge, error)

	ListCalendarEvents(ctx context.Context, companyID, userID string, from, to time.Time) ([]store.CalendarEvent, error)
	UpsertCalendarEvent(ctx context.Context, ev *store.CalendarEvent) error
	DeleteCalendarEvent(ctx context.Context, companyID, userID, googleEventID string) error
	SetMeetingBot(ctx context.Context, companyID, userID, googleEventID string, enabled bool) (*store.CalendarEvent, error)

	ShareEvaluation(ctx context.Context, shares []store.SharedEvaluation, notes []store.Notification) error
	ListSharedWith(ctx context.Context, companyID, userID string, limit int) ([]store.SharedEvaluation, error)
	ListNotifications(ctx context.Context, companyID, userID string, unreadOnly bool, limit int) ([]store.Notification, error)
}

// CalendarProvider is the per-user calendar API.
type CalendarProvider interface {
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]calendar.Event, error)
	GetEvent(ctx context.Context, userID, eventID string) (*calendar.Event, error)
	CreateEvent(ctx context.Context, userID string, in calendar.EventInput) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, userID, eventID string, patch calendar.EventPatch) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
}

var (
	_ DataStore         = (*store.Repository)(nil)
	_ CalendarProvider  = (*calendar.Service)(nil)
	_ contractx.Toolbox = (*Dispatcher)(nil)
)
