package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/spinlab/coach/agent/contract"
)

func TestUnknownToolError(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&fakeStore{}, &fakeCalendar{})
	out := d.Execute(context.Background(), sellerCaller(), "do_magic", `{"x":1}`)
	if !out.Failed {
		t.Fatal("expected failure")
	}
	if out.Content != `{"error":"Função desconhecida: do_magic"}` {
		t.Fatalf("unexpected content: %s", out.Content)
	}
}

func TestInvalidArguments(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&fakeStore{}, &fakeCalendar{})
	for _, raw := range []string{"{not json", "[1,2]", `"text"`} {
		out := d.Execute(context.Background(), sellerCaller(), ToolRoleplaySessions, raw)
		if !out.Failed || !strings.Contains(out.Content, "Argumentos inválidos") {
			t.Fatalf("args %q: unexpected outcome %+v", raw, out)
		}
	}
}

func TestWrongArgumentTypeIsValidationError(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&fakeStore{}, &fakeCalendar{})
	payload := d.Dispatch(context.Background(), sellerCaller(), ToolRoleplaySessions, `{"limit":"many"}`)
	errPayload, ok := payload.(ErrorPayload)
	if !ok {
		t.Fatalf("expected error payload, got %#v", payload)
	}
	if strings.HasPrefix(errPayload.Error, contractx.ErrValidation.Error()) {
		t.Fatalf("validation prefix must be stripped: %q", errPayload.Error)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	t.Parallel()

	data := &fakeStore{employees: baseEmployees(), panicOn: "ListEmployees"}
	d := newTestDispatcher(data, &fakeCalendar{})

	out := d.Execute(context.Background(), sellerCaller(), ToolColleagues, "")
	if !out.Failed {
		t.Fatal("expected failure")
	}
	if out.Content != `{"error":"Erro interno ao executar get_colleagues"}` {
		t.Fatalf("unexpected content: %s", out.Content)
	}
}

func TestCallerWithoutTenant(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&fakeStore{}, &fakeCalendar{})
	for _, caller := range []*contractx.Caller{nil, {UserID: "u1"}} {
		if _, ok := d.Dispatch(context.Background(), caller, ToolColleagues, "").(ErrorPayload); !ok {
			t.Fatalf("expected error payload for caller %+v", caller)
		}
	}
}

func TestStoreErrorBecomesPayload(t *testing.T) {
	t.Parallel()

	data := &fakeStore{sessionsErr: errors.New("connection reset")}
	d := newTestDispatcher(data, &fakeCalendar{})

	out := d.Execute(context.Background(), sellerCaller(), ToolRoleplaySessions, `{"limit":5}`)
	if !out.Failed || !strings.Contains(out.Content, "connection reset") {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestCalendarNotConnectedMessage(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(&fakeStore{}, &fakeCalendar{err: contractx.ErrCalendarNotConnected})
	payload := d.Dispatch(context.Background(), sellerCaller(), ToolFreeSlots, `{"date":"2026-03-10"}`)
	errPayload, ok := payload.(ErrorPayload)
	if !ok || !strings.Contains(errPayload.Error, "Google Calendar não conectado") {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestLooseArguments(t *testing.T) {
	t.Parallel()

	data := &fakeStore{}
	d := newTestDispatcher(data, &fakeCalendar{})
	if _, ok := d.Dispatch(context.Background(), sellerCaller(), ToolRoleplaySessions, `{"limit":"3"}`).(RoleplaySessionsPayload); !ok {
		t.Fatal("string limit must be accepted")
	}
	if got := data.sessionQueries[0].Limit; got != 3 {
		t.Fatalf("expected limit 3, got %d", got)
	}

	d.Dispatch(context.Background(), sellerCaller(), ToolRoleplaySessions, `{"limit":500}`)
	if got := data.sessionQueries[1].Limit; got != maxListLimit {
		t.Fatalf("expected clamp to %d, got %d", maxListLimit, got)
	}
}
