package tool

import (
	"context"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/spinlab/coach/agent/calendar"
	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
)

type fakeStore struct {
	mu sync.Mutex

	employees     []store.Employee
	sessions      []store.RoleplaySession
	sessionsErr   error
	meets         []store.MeetEvaluation
	summary       *store.PerformanceSummary
	challenges    []store.DailyChallenge
	challengesErr error
	mirror        []store.CalendarEvent
	shares        []store.SharedEvaluation
	notes         []store.Notification
	notifications []store.Notification
	sharedWith    []store.SharedEvaluation

	sessionQueries []store.SessionQuery
	roleUpdates    map[string]contractx.Role
	panicOn        string
}

func (f *fakeStore) maybePanic(method string) {
	if f.panicOn == method {
		panic("boom in " + method)
	}
}

func (f *fakeStore) ListEmployees(ctx context.Context, companyID string) ([]store.Employee, error) {
	f.maybePanic("ListEmployees")
	var out []store.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) GetEmployee(ctx context.Context, companyID, employeeID string) (*store.Employee, error) {
	for i := range f.employees {
		e := f.employees[i]
		if e.CompanyID == companyID && e.ID == employeeID {
			return &e, nil
		}
	}
	return nil, contractx.ErrNotFound
}

func (f *fakeStore) FindEmployeesByName(ctx context.Context, companyID, name string) ([]store.Employee, error) {
	var out []store.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && containsFold(e.Name, name) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateEmployeeRole(ctx context.Context, companyID, employeeID string, role contractx.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleUpdates == nil {
		f.roleUpdates = map[string]contractx.Role{}
	}
	f.roleUpdates[employeeID] = role
	return nil
}

func (f *fakeStore) ListSessions(ctx context.Context, q store.SessionQuery) ([]store.RoleplaySession, error) {
	f.maybePanic("ListSessions")
	f.mu.Lock()
	f.sessionQueries = append(f.sessionQueries, q)
	f.mu.Unlock()
	if f.sessionsErr != nil {
		return nil, f.sessionsErr
	}
	var out []store.RoleplaySession
	for _, s := range f.sessions {
		if s.CompanyID != q.CompanyID {
			continue
		}
		if q.UserID != "" && s.UserID != q.UserID {
			continue
		}
		if q.EvaluatedOnly && s.Evaluation == nil {
			continue
		}
		if q.Status != "" && s.Status != q.Status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) GetSession(ctx context.Context, companyID, userID, sessionID string) (*store.RoleplaySession, error) {
	for i := range f.sessions {
		s := f.sessions[i]
		if s.CompanyID == companyID && s.UserID == userID && s.ID == sessionID {
			return &s, nil
		}
	}
	return nil, contractx.ErrNotFound
}

func (f *fakeStore) ListMeetEvaluations(ctx context.Context, q store.MeetQuery) ([]store.MeetEvaluation, error) {
	var out []store.MeetEvaluation
	for _, m := range f.meets {
		if m.CompanyID == q.CompanyID && (q.UserID == "" || m.UserID == q.UserID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMeetEvaluation(ctx context.Context, companyID, userID, id string) (*store.MeetEvaluation, error) {
	for i := range f.meets {
		m := f.meets[i]
		if m.CompanyID == companyID && m.UserID == userID && m.ID == id {
			return &m, nil
		}
	}
	return nil, contractx.ErrNotFound
}

func (f *fakeStore) GetPerformanceSummary(ctx context.Context, companyID, userID string) (*store.PerformanceSummary, error) {
	if f.summary != nil && f.summary.CompanyID == companyID && f.summary.UserID == userID {
		return f.summary, nil
	}
	return nil, nil
}

func (f *fakeStore) ListChallenges(ctx context.Context, q store.ChallengeQuery) ([]store.DailyChallenge, error) {
	if f.challengesErr != nil {
		return nil, f.challengesErr
	}
	var out []store.DailyChallenge
	for _, c := range f.challenges {
		if c.CompanyID != q.CompanyID || (q.UserID != "" && c.UserID != q.UserID) {
			continue
		}
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		if !q.Date.IsZero() && c.ChallengeDate.Format(time.DateOnly) != q.Date.Format(time.DateOnly) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) ListCalendarEvents(ctx context.Context, companyID, userID string, from, to time.Time) ([]store.CalendarEvent, error) {
	return f.mirror, nil
}

func (f *fakeStore) UpsertCalendarEvent(ctx context.Context, ev *store.CalendarEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.mirror {
		if f.mirror[i].GoogleEventID == ev.GoogleEventID {
			f.mirror[i] = *ev
			return nil
		}
	}
	f.mirror = append(f.mirror, *ev)
	return nil
}

func (f *fakeStore) DeleteCalendarEvent(ctx context.Context, companyID, userID, googleEventID string) error {
	return nil
}

func (f *fakeStore) SetMeetingBot(ctx context.Context, companyID, userID, googleEventID string, enabled bool) (*store.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.mirror {
		if f.mirror[i].GoogleEventID == googleEventID {
			f.mirror[i].BotEnabled = enabled
			f.mirror[i].BotStatus = "scheduled"
			if !enabled {
				f.mirror[i].BotStatus = "disabled"
			}
			ev := f.mirror[i]
			return &ev, nil
		}
	}
	return nil, contractx.ErrNotFound
}

func (f *fakeStore) ShareEvaluation(ctx context.Context, shares []store.SharedEvaluation, notes []store.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shares = append(f.shares, shares...)
	f.notes = append(f.notes, notes...)
	return nil
}

func (f *fakeStore) ListSharedWith(ctx context.Context, companyID, userID string, limit int) ([]store.SharedEvaluation, error) {
	return f.sharedWith, nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, companyID, userID string, unreadOnly bool, limit int) ([]store.Notification, error) {
	var out []store.Notification
	for _, n := range f.notifications {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

type fakeCalendar struct {
	mu      sync.Mutex
	events  []calendar.Event
	err     error
	created []calendar.EventInput
	patches map[string]calendar.EventPatch
}

func (f *fakeCalendar) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []calendar.Event
	for _, ev := range f.events {
		if ev.Start.Before(to) && ev.End.After(from) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeCalendar) GetEvent(ctx context.Context, userID, eventID string) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.events {
		if f.events[i].ID == eventID {
			ev := f.events[i]
			return &ev, nil
		}
	}
	return nil, contractx.ErrNotFound
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, userID string, in calendar.EventInput) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	ev := calendar.Event{ID: "created-1", Title: in.Title, Start: in.Start, End: in.End}
	if in.AddMeet {
		ev.MeetLink = "https://meet.google.com/new"
	}
	return &ev, nil
}

func (f *fakeCalendar) UpdateEvent(ctx context.Context, userID, eventID string, patch calendar.EventPatch) (*calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patches == nil {
		f.patches = map[string]calendar.EventPatch{}
	}
	f.patches[eventID] = patch
	for i := range f.events {
		if f.events[i].ID != eventID {
			continue
		}
		ev := f.events[i]
		if patch.Title != nil {
			ev.Title = *patch.Title
		}
		if patch.Start != nil {
			ev.Start = *patch.Start
		}
		if patch.End != nil {
			ev.End = *patch.End
		}
		return &ev, nil
	}
	return nil, contractx.ErrNotFound
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, userID, eventID string) error {
	return f.err
}

func containsFold(s, sub string) bool {
	return sub != "" && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

const (
	companyID = "company-1"
	sellerID  = "user-seller"
)

func sellerCaller() *contractx.Caller {
	return &contractx.Caller{
		UserID:     sellerID,
		CompanyID:  companyID,
		EmployeeID: "emp-seller",
		Name:       "Ana Souza",
		Role:       contractx.RoleSeller,
	}
}

func managerCaller() *contractx.Caller {
	return &contractx.Caller{
		UserID:     "user-manager",
		CompanyID:  companyID,
		EmployeeID: "emp-manager",
		Name:       "Carlos Lima",
		Role:       contractx.RoleManager,
	}
}

func baseEmployees() []store.Employee {
	return []store.Employee{
		{ID: "emp-seller", UserID: sellerID, CompanyID: companyID, Name: "Ana Souza", Role: "vendedor"},
		{ID: "emp-manager", UserID: "user-manager", CompanyID: companyID, Name: "Carlos Lima", Role: "gestor"},
		{ID: "emp-admin", UserID: "user-admin", CompanyID: companyID, Name: "Beatriz Rocha", Role: "admin"},
		{ID: "emp-other", UserID: "user-other", CompanyID: "company-2", Name: "Diego Alves", Role: "vendedor"},
	}
}

func saoPaulo() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	return loc
}

func newTestDispatcher(data *fakeStore, cal *fakeCalendar) *Dispatcher {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, saoPaulo())
	return NewDispatcher(data, cal,
		WithLocation(saoPaulo()),
		WithClock(func() time.Time { return now }),
	)
}
