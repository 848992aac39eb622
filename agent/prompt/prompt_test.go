package prompt

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/markup"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	b, err := NewBuilder(loc, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewBuilder returned error: %v", err)
	}
	return b
}

func TestSystemPromptForSeller(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	out, err := b.System(&contractx.Caller{
		UserID:      "u1",
		CompanyID:   "c1",
		CompanyName: "Acme",
		Name:        "Ana",
		Role:        contractx.RoleSeller,
	}, []contractx.ToolDefinition{{Name: "get_performance_summary"}, {Name: "get_free_slots"}})
	if err != nil {
		t.Fatalf("System returned error: %v", err)
	}

	for _, want := range []string{
		"assistente de vendas da Acme",
		"ajuda Ana",
		"terça-feira, 10/03/2026 12:30",
		"2026-03-10",
		"get_performance_summary, get_free_slots",
		"{{score|Média geral|7.8}}",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ferramentas de equipe") {
		t.Fatalf("seller prompt must not mention team tools:\n%s", out)
	}
	if strings.Contains(out, "Contexto da tela") {
		t.Fatalf("empty viewing context must be omitted:\n%s", out)
	}
}

func TestSystemPromptForManagerWithViewingContext(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	out, err := b.System(&contractx.Caller{
		UserID:    "u2",
		CompanyID: "c1",
		Role:      contractx.RoleManager,
		Viewing:   contractx.ViewingContext{Page: "equipe", EmployeeID: "e9", EmployeeName: "Bruno"},
	}, nil)
	if err != nil {
		t.Fatalf("System returned error: %v", err)
	}
	for _, want := range []string{"gestor e pode consultar", "Colaborador em foco: Bruno (employee_id e9)", "Página: equipe", "da empresa"} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestPromptExamplesAreValidWidgets(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	out, err := b.System(&contractx.Caller{UserID: "u", CompanyID: "c"}, nil)
	if err != nil {
		t.Fatalf("System returned error: %v", err)
	}
	widgets := markup.Widgets(out)
	if len(widgets) != len(markup.Tags()) {
		t.Fatalf("expected one example per tag, got %d", len(widgets))
	}
	for _, w := range widgets {
		if !w.Valid() {
			t.Fatalf("invalid example widget: %+v", w)
		}
	}
}

func TestForcedFinalAndNilCaller(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	if !strings.Contains(b.ForcedFinal(), "Não chame mais ferramentas") {
		t.Fatalf("unexpected forced instruction: %q", b.ForcedFinal())
	}
	if _, err := b.System(nil, nil); err == nil {
		t.Fatal("expected error for nil caller")
	}
}
