package tool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spinlab/coach/agent/calendar"
	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/store"
	logx "github.com/spinlab/coach/pkg/logger"
)

const (
	defaultEventMinutes = 60
	defaultEventDays    = 7
	maxEventDays        = 62
)

type calendarEventsArgs struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (d *Dispatcher) calendarEvents(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[calendarEventsArgs](raw)
	if err != nil {
		return nil, err
	}

	from := d.today()
	if args.StartDate != "" {
		if from, err = parseDate(args.StartDate, d.loc); err != nil {
			return nil, err
		}
	}
	to := from.AddDate(0, 0, defaultEventDays)
	if args.EndDate != "" {
		end, err := parseDate(args.EndDate, d.loc)
		if err != nil {
			return nil, err
		}
		// end_date is inclusive
		to = end.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return nil, validation("end_date deve ser igual ou posterior a start_date")
	}
	if to.Sub(from) > maxEventDays*24*time.Hour {
		to = from.AddDate(0, 0, maxEventDays)
	}

	events, err := d.calendar.ListEvents(ctx, caller.UserID, from, to)
	if err != nil {
		return nil, err
	}

	bots := map[string]bool{}
	if mirrored, err := d.data.ListCalendarEvents(ctx, caller.CompanyID, caller.UserID, from, to); err == nil {
		for _, m := range mirrored {
			bots[m.GoogleEventID] = m.BotEnabled
		}
	} else {
		logx.From(ctx).Warn().Err(err).Msg("load calendar mirror")
	}

	out := CalendarEventsPayload{
		StartDate: formatDate(from),
		EndDate:   formatDate(to.AddDate(0, 0, -1)),
		Total:     len(events),
		Events:    make([]EventItem, 0, len(events)),
	}
	for _, ev := range events {
		item := d.eventItem(ev)
		item.BotEnabled = bots[ev.ID]
		out.Events = append(out.Events, item)
	}
	return out, nil
}

type freeSlotsArgs struct {
	Date string `json:"date"`
}

func (d *Dispatcher) freeSlots(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[freeSlotsArgs](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Date) == "" {
		return nil, validation("date é obrigatório")
	}
	day, err := parseDate(args.Date, d.loc)
	if err != nil {
		return nil, err
	}

	events, err := d.calendar.ListEvents(ctx, caller.UserID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	opens, closes := d.window.Bounds(day)
	busy := make([]Interval, 0, len(events))
	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		busy = append(busy, Interval{Start: ev.Start, End: ev.End})
	}
	free := FreeSlots(clipToWindow(busy, opens, closes), opens, closes)

	out := FreeSlotsPayload{
		Date:         formatDate(day),
		WorkingHours: d.window.String(),
		Total:        len(free),
		Slots:        make([]SlotItem, 0, len(free)),
	}
	for _, slot := range free {
		out.Slots = append(out.Slots, SlotItem{
			Start:   slot.Start.In(d.loc).Format("15:04"),
			End:     slot.End.In(d.loc).Format("15:04"),
			Minutes: int(slot.Duration().Minutes()),
		})
	}
	return out, nil
}

type createEventArgs struct {
	Title           string    `json:"title"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes looseInt  `json:"duration_minutes"`
	Description     string    `json:"description"`
	Attendees       []string  `json:"attendees"`
	AddMeet         looseBool `json:"add_meet"`
}

func (d *Dispatcher) createCalendarEvent(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[createEventArgs](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Title) == "" || args.Date == "" || args.StartTime == "" {
		return nil, validation("title, date e start_time são obrigatórios")
	}

	day, err := parseDate(args.Date, d.loc)
	if err != nil {
		return nil, err
	}
	startOffset, err := parseClock(args.StartTime)
	if err != nil {
		return nil, err
	}
	start := atClock(day, startOffset)

	var end time.Time
	if args.EndTime != "" {
		endOffset, err := parseClock(args.EndTime)
		if err != nil {
			return nil, err
		}
		end = atClock(day, endOffset)
	} else {
		minutes := int(args.DurationMinutes)
		if minutes <= 0 {
			minutes = defaultEventMinutes
		}
		end = start.Add(time.Duration(minutes) * time.Minute)
	}
	if !end.After(start) {
		return nil, validation("o horário de término deve ser após o início")
	}

	created, err := d.calendar.CreateEvent(ctx, caller.UserID, calendar.EventInput{
		Title:       strings.TrimSpace(args.Title),
		Description: args.Description,
		Start:       start,
		End:         end,
		Attendees:   args.Attendees,
		AddMeet:     args.AddMeet.value,
	})
	if err != nil {
		return nil, err
	}
	d.mirrorEvent(ctx, caller, created)

	msg := "Evento criado na agenda"
	if created.MeetLink != "" {
		msg += " com link do Google Meet"
	}
	return CreateEventPayload{Success: true, Message: msg, Event: d.eventItem(*created)}, nil
}

type updateEventArgs struct {
	EventID     string  `json:"event_id"`
	Title       *string `json:"title"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Description *string `json:"description"`
}

func (d *Dispatcher) updateCalendarEvent(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[updateEventArgs](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.EventID) == "" {
		return nil, validation("event_id é obrigatório")
	}

	patch := calendar.EventPatch{Title: args.Title, Description: args.Description}
	if args.Date != "" || args.StartTime != "" || args.EndTime != "" {
		current, err := d.calendar.GetEvent(ctx, caller.UserID, args.EventID)
		if err != nil {
			return nil, err
		}
		start, end, err := d.reschedule(current, args)
		if err != nil {
			return nil, err
		}
		patch.Start, patch.End = &start, &end
	}
	if patch == (calendar.EventPatch{}) {
		return nil, validation("nenhuma alteração informada")
	}

	updated, err := d.calendar.UpdateEvent(ctx, caller.UserID, args.EventID, patch)
	if err != nil {
		return nil, err
	}
	d.mirrorEvent(ctx, caller, updated)
	return UpdateEventPayload{Success: true, Message: "Evento atualizado", Event: d.eventItem(*updated)}, nil
}

// reschedule keeps the event duration unless an explicit end time is given.
func (d *Dispatcher) reschedule(current *calendar.Event, args updateEventArgs) (time.Time, time.Time, error) {
	curStart := current.Start.In(d.loc)
	duration := current.End.Sub(current.Start)
	if duration <= 0 {
		duration = defaultEventMinutes * time.Minute
	}

	day := startOfDay(curStart)
	if args.Date != "" {
		parsed, err := parseDate(args.Date, d.loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		day = parsed
	}
	startOffset := curStart.Sub(startOfDay(curStart))
	if args.StartTime != "" {
		parsed, err := parseClock(args.StartTime)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		startOffset = parsed
	}
	start := atClock(day, startOffset)
	end := start.Add(duration)
	if args.EndTime != "" {
		endOffset, err := parseClock(args.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = atClock(day, endOffset)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, validation("o horário de término deve ser após o início")
	}
	return start, end, nil
}

type eventIDArgs struct {
	EventID string `json:"event_id"`
}

func (d *Dispatcher) deleteCalendarEvent(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[eventIDArgs](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.EventID) == "" {
		return nil, validation("event_id é obrigatório")
	}
	if err := d.calendar.DeleteEvent(ctx, caller.UserID, args.EventID); err != nil {
		return nil, err
	}
	if err := d.data.DeleteCalendarEvent(ctx, caller.CompanyID, caller.UserID, args.EventID); err != nil {
		logx.From(ctx).Warn().Err(err).Str("event_id", args.EventID).Msg("delete calendar mirror")
	}
	return DeleteEventPayload{Success: true, Message: "Evento removido da agenda", EventID: args.EventID}, nil
}

type meetingBotArgs struct {
	EventID string    `json:"event_id"`
	Enabled looseBool `json:"enabled"`
}

func (d *Dispatcher) toggleMeetingBot(ctx context.Context, caller *contractx.Caller, raw json.RawMessage) (Payload, error) {
	args, err := decodeArgs[meetingBotArgs](raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.EventID) == "" || !args.Enabled.set {
		return nil, validation("event_id e enabled são obrigatórios")
	}

	row, err := d.data.SetMeetingBot(ctx, caller.CompanyID, caller.UserID, args.EventID, args.Enabled.value)
	if errors.Is(err, contractx.ErrNotFound) {
		// not mirrored yet: pull it from the provider and try again
		ev, gerr := d.calendar.GetEvent(ctx, caller.UserID, args.EventID)
		if gerr != nil {
			return nil, gerr
		}
		if err := d.data.UpsertCalendarEvent(ctx, d.mirrorRow(caller, ev)); err != nil {
			return nil, err
		}
		row, err = d.data.SetMeetingBot(ctx, caller.CompanyID, caller.UserID, args.EventID, args.Enabled.value)
	}
	if err != nil {
		return nil, err
	}

	msg := "Bot de gravação desativado para a reunião"
	if row.BotEnabled {
		msg = "Bot de gravação ativado para a reunião"
	}
	return MeetingBotPayload{
		Success:    true,
		Message:    msg,
		EventID:    args.EventID,
		BotEnabled: row.BotEnabled,
		BotStatus:  row.BotStatus,
	}, nil
}

func (d *Dispatcher) mirrorRow(caller *contractx.Caller, ev *calendar.Event) *store.CalendarEvent {
	return &store.CalendarEvent{
		UserID:        caller.UserID,
		CompanyID:     caller.CompanyID,
		GoogleEventID: ev.ID,
		Title:         ev.Title,
		StartTime:     ev.Start.UTC(),
		EndTime:       ev.End.UTC(),
		MeetLink:      ev.MeetLink,
	}
}

// mirrorEvent keeps calendar_events in sync after a provider write. The
// provider is the source of truth, so a failed mirror is only logged.
func (d *Dispatcher) mirrorEvent(ctx context.Context, caller *contractx.Caller, ev *calendar.Event) {
	if ev == nil || ev.ID == "" {
		return
	}
	if err := d.data.UpsertCalendarEvent(ctx, d.mirrorRow(caller, ev)); err != nil {
		logx.From(ctx).Warn().Err(err).Str("event_id", ev.ID).Msg("mirror calendar event")
	}
}

func (d *Dispatcher) eventItem(ev calendar.Event) EventItem {
	item := EventItem{
		ID:        ev.ID,
		Title:     ev.Title,
		Date:      formatDate(ev.Start.In(d.loc)),
		AllDay:    ev.AllDay,
		MeetLink:  ev.MeetLink,
		Attendees: ev.Attendees,
	}
	if !ev.AllDay {
		item.StartTime = ev.Start.In(d.loc).Format("15:04")
		item.EndTime = ev.End.In(d.loc).Format("15:04")
	}
	return item
}
