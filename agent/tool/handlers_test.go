package tool

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spinlab/coach/agent/calendar"
	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
)

func TestTeamToolsRevalidateRole(t *testing.T) {
	t.Parallel()

	data := &fakeStore{employees: baseEmployees()}
	d := newTestDispatcher(data, &fakeCalendar{})

	for _, name := range []string{
		ToolTeamOverview, ToolTeamRanking, ToolEmployeePerformance,
		ToolTeamSpinAverages, ToolTeamChallenges, ToolUpdateEmployeeRole,
	} {
		out := d.Execute(context.Background(), sellerCaller(), name, "{}")
		if !out.Failed || !strings.Contains(out.Content, "Acesso restrito") {
			t.Fatalf("%s: seller must be rejected, got %s", name, out.Content)
		}
	}

	// The caller claims to be a manager but the database says otherwise.
	stale := managerCaller()
	stale.EmployeeID = "emp-seller"
	if _, ok := d.Dispatch(context.Background(), stale, ToolTeamOverview, "").(ErrorPayload); !ok {
		t.Fatal("role must be checked against the stored employee")
	}
}

func TestTeamOverviewAndRanking(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	data := &fakeStore{
		employees: baseEmployees(),
		sessions: []store.RoleplaySession{
			evaluatedSession("s1", now, 80, nil, nil),
			evaluatedSession("s2", now, 6, nil, nil),
			{ID: "s3", UserID: "user-admin", CompanyID: companyID, Status: "active", CreatedAt: now},
			{ID: "s4", UserID: "user-manager", CompanyID: companyID, Status: "completed", CreatedAt: now,
				Evaluation: &store.RoleplayEvaluation{OverallScore: 9}},
		},
	}
	d := newTestDispatcher(data, &fakeCalendar{})

	overview, ok := d.Dispatch(context.Background(), managerCaller(), ToolTeamOverview, "").(TeamOverviewPayload)
	if !ok {
		t.Fatal("expected overview payload")
	}
	if overview.TeamSize != 3 || overview.ActiveMembers != 3 || overview.TotalSessions != 4 {
		t.Fatalf("unexpected overview: %+v", overview)
	}
	if overview.TeamAverage == nil || *overview.TeamAverage != 7.7 {
		t.Fatalf("unexpected team average: %v", overview.TeamAverage)
	}

	ranking, ok := d.Dispatch(context.Background(), managerCaller(), ToolTeamRanking, `{"metric":"average_score"}`).(TeamRankingPayload)
	if !ok {
		t.Fatal("expected ranking payload")
	}
	if ranking.Total != 2 || ranking.Ranking[0].Name != "Carlos Lima" || ranking.Ranking[1].Position != 2 {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}

	bySessions, _ := d.Dispatch(context.Background(), managerCaller(), ToolTeamRanking, `{"metric":"sessions","limit":1}`).(TeamRankingPayload)
	if bySessions.Total != 1 || bySessions.Ranking[0].Name != "Ana Souza" {
		t.Fatalf("unexpected sessions ranking: %+v", bySessions)
	}
}

func TestEmployeePerformanceUsesViewingContext(t *testing.T) {
	t.Parallel()

	data := &fakeStore{
		employees: baseEmployees(),
		sessions:  []store.RoleplaySession{evaluatedSession("s1", time.Now(), 7, nil, nil)},
	}
	d := newTestDispatcher(data, &fakeCalendar{})

	caller := managerCaller()
	caller.Viewing = contractx.ViewingContext{EmployeeID: "emp-seller"}
	got, ok := d.Dispatch(context.Background(), caller, ToolEmployeePerformance, "{}").(EmployeePerformancePayload)
	if !ok {
		t.Fatal("expected employee performance payload")
	}
	if got.Employee == nil || got.Employee.Name != "Ana Souza" || got.Performance == nil {
		t.Fatalf("unexpected payload: %+v", got)
	}

	noData, _ := d.Dispatch(context.Background(), caller, ToolEmployeePerformance, `{"employee_name":"beatriz"}`).(EmployeePerformancePayload)
	if noData.Performance != nil || !strings.HasPrefix(noData.Message, "Nenhum dado") {
		t.Fatalf("expected no-data message, got %+v", noData)
	}

	// other tenants are invisible
	if _, ok := d.Dispatch(context.Background(), caller, ToolEmployeePerformance, `{"employee_id":"emp-other"}`).(ErrorPayload); !ok {
		t.Fatal("expected not found for another company's employee")
	}
}

func TestEmployeePerformanceAmbiguousName(t *testing.T) {
	t.Parallel()

	employees := append(baseEmployees(), store.Employee{ID: "emp-ana2", UserID: "user-ana2", CompanyID: companyID, Name: "Ana Paula", Role: "vendedor"})
	d := newTestDispatcher(&fakeStore{employees: employees}, &fakeCalendar{})

	got, ok := d.Dispatch(context.Background(), managerCaller(), ToolEmployeePerformance, `{"employee_name":"Ana"}`).(EmployeePerformancePayload)
	if !ok || len(got.Candidates) != 2 || got.Employee != nil {
		t.Fatalf("expected candidates, got %+v", got)
	}
}

func TestUpdateEmployeeRole(t *testing.T) {
	t.Parallel()

	data := &fakeStore{employees: baseEmployees()}
	d := newTestDispatcher(data, &fakeCalendar{})
	ctx := context.Background()

	if _, ok := d.Dispatch(ctx, managerCaller(), ToolUpdateEmployeeRole, `{"employee_id":"emp-seller","role":"admin"}`).(ErrorPayload); !ok {
		t.Fatal("gestor must not grant admin")
	}
	if _, ok := d.Dispatch(ctx, managerCaller(), ToolUpdateEmployeeRole, `{"employee_id":"emp-admin","role":"vendedor"}`).(ErrorPayload); !ok {
		t.Fatal("gestor must not demote an admin")
	}
	if _, ok := d.Dispatch(ctx, managerCaller(), ToolUpdateEmployeeRole, `{"employee_id":"emp-manager","role":"vendedor"}`).(ErrorPayload); !ok {
		t.Fatal("self role change must be rejected")
	}
	if _, ok := d.Dispatch(ctx, managerCaller(), ToolUpdateEmployeeRole, `{"employee_id":"emp-seller","role":"chefe"}`).(ErrorPayload); !ok {
		t.Fatal("unknown role must be rejected")
	}

	got, ok := d.Dispatch(ctx, managerCaller(), ToolUpdateEmployeeRole, `{"employee_id":"emp-seller","role":"gestor"}`).(RoleUpdatePayload)
	if !ok || !got.Success {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if data.roleUpdates["emp-seller"] != contractx.RoleManager {
		t.Fatalf("role was not persisted: %v", data.roleUpdates)
	}

	admin := &contractx.Caller{UserID: "user-admin", CompanyID: companyID, EmployeeID: "emp-admin", Role: contractx.RoleAdmin}
	if _, ok := d.Dispatch(ctx, admin, ToolUpdateEmployeeRole, `{"employee_id":"emp-manager","role":"admin"}`).(RoleUpdatePayload); !ok {
		t.Fatal("admin may grant admin")
	}
}

func TestShareEvaluation(t *testing.T) {
	t.Parallel()

	data := &fakeStore{
		employees: baseEmployees(),
		sessions:  []store.RoleplaySession{evaluatedSession("s1", time.Now(), 8, nil, nil)},
	}
	d := newTestDispatcher(data, &fakeCalendar{})
	ctx := context.Background()

	got, ok := d.Dispatch(ctx, sellerCaller(), ToolShareEvaluation,
		`{"evaluation_id":"s1","evaluation_type":"roleplay","recipient_ids":["user-manager","emp-admin","user-manager","`+sellerID+`"],"message":"olha isso"}`,
	).(ShareEvaluationPayload)
	if !ok || !got.Success {
		t.Fatalf("unexpected payload: %#v", got)
	}
	if len(data.shares) != 2 || len(data.notes) != 2 {
		t.Fatalf("expected 2 shares and 2 notifications, got %d/%d", len(data.shares), len(data.notes))
	}
	if data.shares[1].SharedWith != "user-admin" || data.shares[0].SharedBy != sellerID {
		t.Fatalf("unexpected shares: %+v", data.shares)
	}
	if data.notes[0].UserID != "user-manager" || data.notes[0].Type != notificationEvaluationShared {
		t.Fatalf("unexpected notification: %+v", data.notes[0])
	}

	// recipients from another company are refused
	if _, ok := d.Dispatch(ctx, sellerCaller(), ToolShareEvaluation,
		`{"evaluation_id":"s1","evaluation_type":"roleplay","recipient_ids":["user-other"]}`).(ErrorPayload); !ok {
		t.Fatal("expected error for foreign recipient")
	}
	// evaluations owned by someone else cannot be shared
	if _, ok := d.Dispatch(ctx, managerCaller(), ToolShareEvaluation,
		`{"evaluation_id":"s1","evaluation_type":"roleplay","recipient_ids":["user-admin"]}`).(ErrorPayload); !ok {
		t.Fatal("expected error for evaluation of another user")
	}
	if _, ok := d.Dispatch(ctx, sellerCaller(), ToolShareEvaluation,
		`{"evaluation_id":"s1","evaluation_type":"pdf","recipient_ids":["user-admin"]}`).(ErrorPayload); !ok {
		t.Fatal("expected error for unknown evaluation type")
	}
}

func TestFreeSlotsHandler(t *testing.T) {
	t.Parallel()

	loc := saoPaulo()
	at := func(h, m int) time.Time { return time.Date(2026, 3, 10, h, m, 0, 0, loc) }
	cal := &fakeCalendar{events: []calendar.Event{
		{ID: "a", Start: at(7, 30), End: at(9, 0)},
		{ID: "b", Start: at(13, 0), End: at(14, 0)},
		{ID: "c", Start: at(13, 30), End: at(14, 30)},
		{ID: "d", Start: at(0, 0), End: at(0, 0).AddDate(0, 0, 1), AllDay: true},
	}}
	d := newTestDispatcher(&fakeStore{}, cal)

	got, ok := d.Dispatch(context.Background(), sellerCaller(), ToolFreeSlots, `{"date":"2026-03-10"}`).(FreeSlotsPayload)
	if !ok {
		t.Fatal("expected free slots payload")
	}
	if got.WorkingHours != "08:00-18:00" || got.Total != 2 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Slots[0].Start != "09:00" || got.Slots[0].End != "13:00" || got.Slots[0].Minutes != 240 {
		t.Fatalf("unexpected first slot: %+v", got.Slots[0])
	}
	if got.Slots[1].Start != "14:30" || got.Slots[1].End != "18:00" {
		t.Fatalf("unexpected second slot: %+v", got.Slots[1])
	}

	if _, ok := d.Dispatch(context.Background(), sellerCaller(), ToolFreeSlots, "{}").(ErrorPayload); !ok {
		t.Fatal("date is required")
	}
}

func TestCreateAndUpdateCalendarEvent(t *testing.T) {
	t.Parallel()

	loc := saoPaulo()
	cal := &fakeCalendar{events: []calendar.Event{{
		ID: "ev1", Title: "Demo",
		Start: time.Date(2026, 3, 11, 10, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 11, 10, 45, 0, 0, loc),
	}}}
	data := &fakeStore{}
	d := newTestDispatcher(data, cal)
	ctx := context.Background()

	created, ok := d.Dispatch(ctx, sellerCaller(), ToolCreateCalendarEvent,
		`{"title":"Follow-up","date":"2026-03-12","start_time":"15h","add_meet":"true"}`).(CreateEventPayload)
	if !ok {
		t.Fatal("expected create payload")
	}
	in := cal.created[0]
	if in.End.Sub(in.Start) != time.Hour || in.Start.Hour() != 15 || !in.AddMeet {
		t.Fatalf("unexpected event input: %+v", in)
	}
	if created.Event.MeetLink == "" || created.Event.StartTime != "15:00" {
		t.Fatalf("unexpected created event: %+v", created)
	}
	if len(data.mirror) != 1 || data.mirror[0].GoogleEventID != "created-1" {
		t.Fatalf("created event must be mirrored: %+v", data.mirror)
	}

	if _, ok := d.Dispatch(ctx, sellerCaller(), ToolCreateCalendarEvent,
		`{"title":"x","date":"2026-03-12","start_time":"15:00","end_time":"14:00"}`).(ErrorPayload); !ok {
		t.Fatal("end before start must be rejected")
	}

	updated, ok := d.Dispatch(ctx, sellerCaller(), ToolUpdateCalendarEvent, `{"event_id":"ev1","start_time":"16:00"}`).(UpdateEventPayload)
	if !ok {
		t.Fatal("expected update payload")
	}
	if updated.Event.StartTime != "16:00" || updated.Event.EndTime != "16:45" {
		t.Fatalf("duration must be kept: %+v", updated.Event)
	}
	if patch := cal.patches["ev1"]; patch.Title != nil {
		t.Fatalf("title must not be patched: %+v", patch)
	}

	if _, ok := d.Dispatch(ctx, sellerCaller(), ToolUpdateCalendarEvent, `{"event_id":"ev1"}`).(ErrorPayload); !ok {
		t.Fatal("empty update must be rejected")
	}
}

func TestToggleMeetingBotMirrorsMissingEvent(t *testing.T) {
	t.Parallel()

	cal := &fakeCalendar{events: []calendar.Event{{
		ID: "ev9", Title: "Cliente X", MeetLink: "https://meet.google.com/x",
		Start: time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 11, 11, 0, 0, 0, time.UTC),
	}}}
	data := &fakeStore{}
	d := newTestDispatcher(data, cal)

	got, ok := d.Dispatch(context.Background(), sellerCaller(), ToolToggleMeetingBot, `{"event_id":"ev9","enabled":true}`).(MeetingBotPayload)
	if !ok || !got.BotEnabled || got.BotStatus != "scheduled" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(data.mirror) != 1 || data.mirror[0].CompanyID != companyID {
		t.Fatalf("event must be mirrored before toggling: %+v", data.mirror)
	}

	if _, ok := d.Dispatch(context.Background(), sellerCaller(), ToolToggleMeetingBot, `{"event_id":"ev9"}`).(ErrorPayload); !ok {
		t.Fatal("enabled is required")
	}
}

func TestChallengeStats(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	score := 80.0
	data := &fakeStore{challenges: []store.DailyChallenge{
		{ID: "c1", UserID: sellerID, CompanyID: companyID, ChallengeDate: day(10), Status: "pending"},
		{ID: "c2", UserID: sellerID, CompanyID: companyID, ChallengeDate: day(9), Status: "completed", ResultScore: &score},
		{ID: "c3", UserID: sellerID, CompanyID: companyID, ChallengeDate: day(8), Status: "completed"},
		{ID: "c4", UserID: sellerID, CompanyID: companyID, ChallengeDate: day(6), Status: "completed"},
		{ID: "c5", UserID: sellerID, CompanyID: companyID, ChallengeDate: day(5), Status: "skipped"},
	}}
	d := newTestDispatcher(data, &fakeCalendar{})

	got, ok := d.Dispatch(context.Background(), sellerCaller(), ToolChallengeStats, "").(ChallengeStatsPayload)
	if !ok {
		t.Fatal("expected stats payload")
	}
	if got.Total != 5 || got.Completed != 3 || got.Pending != 1 || got.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.CompletionRate != 60 || got.AverageScore == nil || *got.AverageScore != 8 {
		t.Fatalf("unexpected rates: %+v", got)
	}
	if got.CurrentStreak != 2 {
		t.Fatalf("expected streak 2, got %d", got.CurrentStreak)
	}
}

func TestNotificationsAndColleagues(t *testing.T) {
	t.Parallel()

	data := &fakeStore{
		employees: baseEmployees(),
		notifications: []store.Notification{
			{ID: "n1", Title: "a", Read: false},
			{ID: "n2", Title: "b", Read: true},
		},
	}
	d := newTestDispatcher(data, &fakeCalendar{})

	notes, _ := d.Dispatch(context.Background(), sellerCaller(), ToolNotifications, `{"unread_only":false}`).(NotificationsPayload)
	if notes.Total != 2 || notes.Unread != 1 {
		t.Fatalf("unexpected notifications: %+v", notes)
	}

	colleagues, _ := d.Dispatch(context.Background(), sellerCaller(), ToolColleagues, "").(ColleaguesPayload)
	if colleagues.Total != 2 {
		t.Fatalf("expected the two other employees of the company, got %+v", colleagues)
	}
	for _, c := range colleagues.Colleagues {
		if c.UserID == sellerID || c.UserID == "user-other" {
			t.Fatalf("unexpected colleague: %+v", c)
		}
	}
}
