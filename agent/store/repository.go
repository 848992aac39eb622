package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	contractx "github.com/spinlab/coach/agent/contract"
)

// Repository reads and writes the tenant tables. Every method takes the
// company id explicitly and refuses to run without it.
type Repository struct {
	db  bun.IDB
	now func() time.Time
}

func New(db bun.IDB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func requireTenant(companyID string) error {
	if strings.TrimSpace(companyID) == "" {
		return fmt.Errorf("%w: company id is required", contractx.ErrValidation)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", contractx.ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

/* ------------------------------- callers -------------------------------- */

// callerEmployeeQuery picks the oldest employee row so a user present in more
// than one company always resolves to the same tenant.
func (r *Repository) callerEmployeeQuery(emp *Employee, userID string) *bun.SelectQuery {
	return r.db.NewSelect().Model(emp).
		Where("e.user_id = ?", userID).
		OrderExpr("e.created_at ASC, e.id ASC").
		Limit(1)
}

func (r *Repository) ResolveCaller(ctx context.Context, userID string) (*contractx.Caller, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrUnauthorized)
	}

	var emp Employee
	err := r.callerEmployeeQuery(&emp, userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no employee for user %s", contractx.ErrNoTenant, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load employee: %w", err)
	}
	if strings.TrimSpace(emp.CompanyID) == "" {
		return nil, fmt.Errorf("%w: employee %s", contractx.ErrNoTenant, emp.ID)
	}

	role, ok := contractx.ParseRole(emp.Role)
	if !ok {
		role = contractx.RoleSeller
	}

	caller := &contractx.Caller{
		UserID:     emp.UserID,
		CompanyID:  emp.CompanyID,
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Role:       role,
	}

	var company Company
	err = r.db.NewSelect().Model(&company).Where("c.id = ?", emp.CompanyID).Limit(1).Scan(ctx)
	switch {
	case err == nil:
		caller.CompanyName = company.Name
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: company %s", contractx.ErrNoTenant, emp.CompanyID)
	default:
		return nil, fmt.Errorf("load company: %w", err)
	}

	return caller, nil
}

/* ------------------------------ employees ------------------------------- */

func (r *Repository) ListEmployees(ctx context.Context, companyID string) ([]Employee, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var rows []Employee
	if err := r.db.NewSelect().Model(&rows).
		Where("e.company_id = ?", companyID).
		Order("e.name ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return rows, nil
}

func (r *Repository) GetEmployee(ctx context.Context, companyID, employeeID string) (*Employee, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var emp Employee
	if err := r.db.NewSelect().Model(&emp).
		Where("e.company_id = ?", companyID).
		Where("e.id = ?", employeeID).
		Limit(1).
		Scan(ctx); err != nil {
		return nil, notFound(err, "employee")
	}
	return &emp, nil
}

func (r *Repository) FindEmployeesByName(ctx context.Context, companyID, name string) ([]Employee, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var rows []Employee
	if err := r.employeesByNameQuery(&rows, companyID, name).Scan(ctx); err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}
	return rows, nil
}

func (r *Repository) employeesByNameQuery(rows *[]Employee, companyID, name string) *bun.SelectQuery {
	return r.db.NewSelect().Model(rows).
		Where("e.company_id = ?", companyID).
		Where("e.name ILIKE ?", "%"+strings.TrimSpace(name)+"%").
		Order("e.name ASC").
		Limit(10)
}

func (r *Repository) UpdateEmployeeRole(ctx context.Context, companyID, employeeID string, role contractx.Role) error {
	if err := requireTenant(companyID); err != nil {
		return err
	}
	res, err := r.db.NewUpdate().Model((*Employee)(nil)).
		Set("role = ?", string(role)).
		Where("company_id = ?", companyID).
		Where("id = ?", employeeID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update employee role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: employee", contractx.ErrNotFound)
	}
	return nil
}

/* ------------------------------- sessions ------------------------------- */

type SessionQuery struct {
	CompanyID     string
	UserID        string
	Status        string
	EvaluatedOnly bool
	Since         time.Time
	Limit         int
}

func (r *Repository) ListSessions(ctx context.Context, q SessionQuery) ([]RoleplaySession, error) {
	if err := requireTenant(q.CompanyID); err != nil {
		return nil, err
	}
	var rows []RoleplaySession
	if err := r.sessionsQuery(&rows, q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return rows, nil
}

func (r *Repository) sessionsQuery(rows *[]RoleplaySession, q SessionQuery) *bun.SelectQuery {
	query := r.db.NewSelect().Model(rows).Where("rs.company_id = ?", q.CompanyID)
	if q.UserID != "" {
		query = query.Where("rs.user_id = ?", q.UserID)
	}
	if q.Status != "" {
		query = query.Where("rs.status = ?", q.Status)
	}
	if q.EvaluatedOnly {
		query = query.Where("rs.evaluation IS NOT NULL")
	}
	if !q.Since.IsZero() {
		query = query.Where("rs.created_at >= ?", q.Since)
	}
	query = query.Order("rs.created_at DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}

func (r *Repository) GetSession(ctx context.Context, companyID, userID, sessionID string) (*RoleplaySession, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var row RoleplaySession
	if err := r.db.NewSelect().Model(&row).
		Where("rs.company_id = ?", companyID).
		Where("rs.user_id = ?", userID).
		Where("rs.id = ?", sessionID).
		Limit(1).
		Scan(ctx); err != nil {
		return nil, notFound(err, "roleplay session")
	}
	return &row, nil
}

/* ---------------------------- meet evaluations --------------------------- */

type MeetQuery struct {
	CompanyID string
	UserID    string
	Limit     int
}

func (r *Repository) ListMeetEvaluations(ctx context.Context, q MeetQuery) ([]MeetEvaluation, error) {
	if err := requireTenant(q.CompanyID); err != nil {
		return nil, err
	}
	var rows []MeetEvaluation
	query := r.db.NewSelect().Model(&rows).Where("me.company_id = ?", q.CompanyID)
	if q.UserID != "" {
		query = query.Where("me.user_id = ?", q.UserID)
	}
	query = query.Order("me.created_at DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list meet evaluations: %w", err)
	}
	return rows, nil
}

func (r *Repository) GetMeetEvaluation(ctx context.Context, companyID, userID, id string) (*MeetEvaluation, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var row MeetEvaluation
	if err := r.db.NewSelect().Model(&row).
		Where("me.company_id = ?", companyID).
		Where("me.user_id = ?", userID).
		Where("me.id = ?", id).
		Limit(1).
		Scan(ctx); err != nil {
		return nil, notFound(err, "meet evaluation")
	}
	return &row, nil
}

/* ---------------------------- performance ------------------------------- */

// GetPerformanceSummary returns nil without error when no summary row exists.
func (r *Repository) GetPerformanceSummary(ctx context.Context, companyID, userID string) (*PerformanceSummary, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var row PerformanceSummary
	err := r.db.NewSelect().Model(&row).
		Where("ps.company_id = ?", companyID).
		Where("ps.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load performance summary: %w", err)
	}
	return &row, nil
}

/* ------------------------------ challenges ------------------------------ */

type ChallengeQuery struct {
	CompanyID string
	UserID    string
	Status    string
	Date      time.Time
	Limit     int
}

func (r *Repository) ListChallenges(ctx context.Context, q ChallengeQuery) ([]DailyChallenge, error) {
	if err := requireTenant(q.CompanyID); err != nil {
		return nil, err
	}
	var rows []DailyChallenge
	query := r.db.NewSelect().Model(&rows).Where("dc.company_id = ?", q.CompanyID)
	if q.UserID != "" {
		query = query.Where("dc.user_id = ?", q.UserID)
	}
	if q.Status != "" {
		query = query.Where("dc.status = ?", q.Status)
	}
	if !q.Date.IsZero() {
		query = query.Where("dc.challenge_date = ?", q.Date.Format(time.DateOnly))
	}
	query = query.Order("dc.challenge_date DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return rows, nil
}

/* ------------------------------- calendar ------------------------------- */

// GetCalendarConnection returns nil without error when the user never connected.
func (r *Repository) GetCalendarConnection(ctx context.Context, userID string) (*CalendarConnection, error) {
	var row CalendarConnection
	err := r.db.NewSelect().Model(&row).Where("gc.user_id = ?", userID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load calendar connection: %w", err)
	}
	return &row, nil
}

// UpdateCalendarToken stores a refreshed OAuth token. An empty refresh token
// keeps the one already on file.
func (r *Repository) UpdateCalendarToken(ctx context.Context, userID, accessToken, refreshToken string, expiry time.Time) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: calendar token needs a user", contractx.ErrValidation)
	}
	if _, err := r.updateCalendarTokenQuery(userID, accessToken, refreshToken, expiry).Exec(ctx); err != nil {
		return fmt.Errorf("update calendar token: %w", err)
	}
	return nil
}

func (r *Repository) updateCalendarTokenQuery(userID, accessToken, refreshToken string, expiry time.Time) *bun.UpdateQuery {
	q := r.db.NewUpdate().Model((*CalendarConnection)(nil)).
		Set("access_token = ?", accessToken).
		Set("token_expiry = ?", expiry)
	if refreshToken != "" {
		q = q.Set("refresh_token = ?", refreshToken)
	}
	return q.Where("gc.user_id = ?", userID)
}

func (r *Repository) ListCalendarEvents(ctx context.Context, companyID, userID string, from, to time.Time) ([]CalendarEvent, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var rows []CalendarEvent
	if err := r.db.NewSelect().Model(&rows).
		Where("ce.company_id = ?", companyID).
		Where("ce.user_id = ?", userID).
		Where("ce.start_time < ?", to).
		Where("ce.end_time > ?", from).
		Order("ce.start_time ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return rows, nil
}

func (r *Repository) UpsertCalendarEvent(ctx context.Context, ev *CalendarEvent) error {
	if err := requireTenant(ev.CompanyID); err != nil {
		return err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if strings.TrimSpace(ev.UserID) == "" {
		return fmt.Errorf("%w: calendar event user id is required", contractx.ErrValidation)
	}
	ev.UpdatedAt = r.now().UTC()
	if _, err := r.upsertCalendarEventQuery(ev).Exec(ctx); err != nil {
		return fmt.Errorf("upsert calendar event: %w", err)
	}
	return nil
}

// upsertCalendarEventQuery keys the mirror per user: attendees of one meeting
// share the provider event id but each owns a separate row.
func (r *Repository) upsertCalendarEventQuery(ev *CalendarEvent) *bun.InsertQuery {
	return r.db.NewInsert().Model(ev).
		On("CONFLICT (user_id, google_event_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("start_time = EXCLUDED.start_time").
		Set("end_time = EXCLUDED.end_time").
		Set("meet_link = EXCLUDED.meet_link").
		Set("updated_at = EXCLUDED.updated_at").
		Where("ce.company_id = EXCLUDED.company_id")
}

func (r *Repository) DeleteCalendarEvent(ctx context.Context, companyID, userID, googleEventID string) error {
	if err := requireTenant(companyID); err != nil {
		return err
	}
	if _, err := r.db.NewDelete().Model((*CalendarEvent)(nil)).
		Where("company_id = ?", companyID).
		Where("user_id = ?", userID).
		Where("google_event_id = ?", googleEventID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

func (r *Repository) SetMeetingBot(ctx context.Context, companyID, userID, googleEventID string, enabled bool) (*CalendarEvent, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	status := "disabled"
	if enabled {
		status = "scheduled"
	}

	var ev CalendarEvent
	res, err := r.db.NewUpdate().Model(&ev).
		Set("bot_enabled = ?", enabled).
		Set("bot_status = ?", status).
		Set("updated_at = ?", r.now().UTC()).
		Where("company_id = ?", companyID).
		Where("user_id = ?", userID).
		Where("google_event_id = ?", googleEventID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("toggle meeting bot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: calendar event", contractx.ErrNotFound)
	}
	return &ev, nil
}

/* ------------------------- sharing/notifications ------------------------- */

// ShareEvaluation upserts the share rows and inserts their notifications in
// one transaction. Re-sharing the same evaluation with the same person only
// refreshes the message.
func (r *Repository) ShareEvaluation(ctx context.Context, shares []SharedEvaluation, notes []Notification) error {
	if len(shares) == 0 {
		return nil
	}
	for i := range shares {
		if err := requireTenant(shares[i].CompanyID); err != nil {
			return err
		}
		if shares[i].ID == "" {
			shares[i].ID = uuid.NewString()
		}
		if shares[i].CreatedAt.IsZero() {
			shares[i].CreatedAt = r.now().UTC()
		}
	}
	for i := range notes {
		if notes[i].ID == "" {
			notes[i].ID = uuid.NewString()
		}
		if notes[i].CreatedAt.IsZero() {
			notes[i].CreatedAt = r.now().UTC()
		}
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&shares).
			On("CONFLICT (evaluation_id, shared_by, shared_with) DO UPDATE").
			Set("message = EXCLUDED.message").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert shares: %w", err)
		}
		if len(notes) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&notes).Exec(ctx); err != nil {
			return fmt.Errorf("insert notifications: %w", err)
		}
		return nil
	})
}

func (r *Repository) ListSharedWith(ctx context.Context, companyID, userID string, limit int) ([]SharedEvaluation, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var rows []SharedEvaluation
	query := r.db.NewSelect().Model(&rows).
		Where("se.company_id = ?", companyID).
		Where("se.shared_with = ?", userID).
		Order("se.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list shared evaluations: %w", err)
	}
	return rows, nil
}

func (r *Repository) ListNotifications(ctx context.Context, companyID, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	if err := requireTenant(companyID); err != nil {
		return nil, err
	}
	var rows []Notification
	query := r.db.NewSelect().Model(&rows).
		Where("n.company_id = ?", companyID).
		Where("n.user_id = ?", userID)
	if unreadOnly {
		query = query.Where("n.read = FALSE")
	}
	query = query.Order("n.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.NewSelect().ColumnExpr("1").Scan(ctx, &one); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}
