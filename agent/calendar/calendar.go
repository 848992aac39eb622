package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
	logx "github.com/spinlab/coach/pkg/logger"
)

const primaryCalendar = "primary"

type Config struct {
	ClientID     string        `envconfig:"CLIENT_ID"`
	ClientSecret string        `envconfig:"CLIENT_SECRET"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"15s"`
}

// ConnectionStore loads the OAuth credentials a user granted when linking a
// calendar and keeps them current after a refresh.
type ConnectionStore interface {
	GetCalendarConnection(ctx context.Context, userID string) (*store.CalendarConnection, error)
	UpdateCalendarToken(ctx context.Context, userID, accessToken, refreshToken string, expiry time.Time) error
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay,omitempty"`
	MeetLink    string    `json:"meetLink,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
	Link        string    `json:"link,omitempty"`
}

type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
	AddMeet     bool
}

// EventPatch carries only the fields being changed.
type EventPatch struct {
	Title       *string
	Description *string
	Start       *time.Time
	End         *time.Time
}

type Service struct {
	oauth      *oauth2.Config
	conns      ConnectionStore
	httpClient *http.Client
	endpoint   string
	loc        *time.Location
}

type Option func(*Service)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithTokenURL overrides the OAuth token endpoint, used by tests.
func WithTokenURL(url string) Option {
	return func(s *Service) { s.oauth.Endpoint.TokenURL = url }
}

// WithEndpoint points the API client at another base URL, used by tests.
func WithEndpoint(url string) Option {
	return func(s *Service) { s.endpoint = url }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(cfg Config, conns ConnectionStore, opts ...Option) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	s := &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gcal.CalendarScope},
		},
		conns:      conns,
		httpClient: &http.Client{Timeout: timeout},
		loc:        time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) client(ctx context.Context, userID string) (*gcal.Service, string, error) {
	conn, err := s.conns.GetCalendarConnection(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if conn == nil || (conn.AccessToken == "" && conn.RefreshToken == "") {
		return nil, "", contractx.ErrCalendarNotConnected
	}

	token := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
		TokenType:    "Bearer",
	}
	// the refresh exchange must go through the same transport as the API calls
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	authed := oauth2.NewClient(ctx, &savingTokenSource{
		ctx:    ctx,
		base:   s.oauth.TokenSource(ctx, token),
		conns:  s.conns,
		userID: userID,
		last:   token.AccessToken,
	})
	authed.Timeout = s.httpClient.Timeout

	opts := []option.ClientOption{option.WithHTTPClient(authed)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("calendar client: %w", err)
	}

	calendarID := strings.TrimSpace(conn.CalendarID)
	if calendarID == "" {
		calendarID = primaryCalendar
	}
	return svc, calendarID, nil
}

// savingTokenSource writes a token back to the store whenever the access
// token differs from the last one seen. Save failures are logged and the
// token is still returned.
type savingTokenSource struct {
	ctx    context.Context
	base   oauth2.TokenSource
	conns  ConnectionStore
	userID string

	mu   sync.Mutex
	last string
}

func (t *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := t.base.Token()
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	changed := tok.AccessToken != t.last
	t.last = tok.AccessToken
	t.mu.Unlock()

	if changed {
		if err := t.conns.UpdateCalendarToken(t.ctx, t.userID, tok.AccessToken, tok.RefreshToken, tok.Expiry); err != nil {
			logx.From(t.ctx).Warn().Err(err).Str("user_id", t.userID).Msg("calendar token not persisted")
		}
	}
	return tok, nil
}

func (s *Service) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]Event, error) {
	svc, calendarID, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError("list events", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Status == "cancelled" {
			continue
		}
		events = append(events, s.toEvent(item))
	}
	return events, nil
}

func (s *Service) CreateEvent(ctx context.Context, userID string, in EventInput) (*Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: event title is required", contractx.ErrValidation)
	}
	if !in.End.After(in.Start) {
		return nil, fmt.Errorf("%w: event must end after it starts", contractx.ErrValidation)
	}

	svc, calendarID, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	ev := &gcal.Event{
		Summary:     in.Title,
		Description: in.Description,
		Start:       s.eventTime(in.Start),
		End:         s.eventTime(in.End),
	}
	for _, email := range in.Attendees {
		if email = strings.TrimSpace(email); email != "" {
			ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: email})
		}
	}

	call := svc.Events.Insert(calendarID, ev).Context(ctx)
	if in.AddMeet {
		ev.ConferenceData = &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
		call = call.ConferenceDataVersion(1)
	}
	if len(ev.Attendees) > 0 {
		call = call.SendUpdates("all")
	}

	created, err := call.Do()
	if err != nil {
		return nil, providerError("create event", err)
	}
	out := s.toEvent(created)
	return &out, nil
}

func (s *Service) UpdateEvent(ctx context.Context, userID, eventID string, patch EventPatch) (*Event, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, fmt.Errorf("%w: event id is required", contractx.ErrValidation)
	}
	svc, calendarID, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	ev := &gcal.Event{}
	if patch.Title != nil {
		ev.Summary = *patch.Title
	}
	if patch.Description != nil {
		ev.Description = *patch.Description
	}
	if patch.Start != nil {
		ev.Start = s.eventTime(*patch.Start)
	}
	if patch.End != nil {
		ev.End = s.eventTime(*patch.End)
	}

	updated, err := svc.Events.Patch(calendarID, eventID, ev).Context(ctx).Do()
	if err != nil {
		return nil, providerError("update event", err)
	}
	out := s.toEvent(updated)
	return &out, nil
}

func (s *Service) GetEvent(ctx context.Context, userID, eventID string) (*Event, error) {
	svc, calendarID, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}
	ev, err := svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, providerError("get event", err)
	}
	out := s.toEvent(ev)
	return &out, nil
}

func (s *Service) DeleteEvent(ctx context.Context, userID, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return fmt.Errorf("%w: event id is required", contractx.ErrValidation)
	}
	svc, calendarID, err := s.client(ctx, userID)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return providerError("delete event", err)
	}
	return nil
}

func (s *Service) eventTime(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{
		DateTime: t.In(s.loc).Format(time.RFC3339),
		TimeZone: s.loc.String(),
	}
}

func (s *Service) toEvent(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		MeetLink:    item.HangoutLink,
		Link:        item.HtmlLink,
	}
	ev.Start, ev.AllDay = s.parseTime(item.Start)
	ev.End, _ = s.parseTime(item.End)

	if ev.MeetLink == "" && item.ConferenceData != nil {
		for _, ep := range item.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				ev.MeetLink = ep.Uri
				break
			}
		}
	}
	for _, a := range item.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev
}

func (s *Service) parseTime(dt *gcal.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t.In(s.loc), false
		}
	}
	if dt.Date != "" {
		if t, err := time.ParseInLocation(time.DateOnly, dt.Date, s.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func providerError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%w: %s: event", contractx.ErrNotFound, op)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s: authorization expired", contractx.ErrCalendarNotConnected, op)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
