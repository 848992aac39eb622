package tool

import (
	"sort"
	"testing"

	contractx "github.com/spinlab/coach/agent/contract"
)

func TestCatalogMatchesDispatcher(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(&fakeStore{}, &fakeCalendar{})
	catalog := CatalogFor(contractx.RoleAdmin)

	names := make([]string, 0, len(catalog))
	seen := map[string]bool{}
	for _, def := range catalog {
		if seen[def.Name] {
			t.Fatalf("duplicate tool in catalog: %s", def.Name)
		}
		seen[def.Name] = true
		names = append(names, def.Name)
	}
	sort.Strings(names)

	handlers := d.Names()
	if len(handlers) != len(names) {
		t.Fatalf("catalog has %d tools, dispatcher has %d", len(names), len(handlers))
	}
	for i := range names {
		if names[i] != handlers[i] {
			t.Fatalf("catalog/dispatcher mismatch at %d: %s vs %s", i, names[i], handlers[i])
		}
	}
}

func TestCatalogForRole(t *testing.T) {
	t.Parallel()

	seller := CatalogFor(contractx.RoleSeller)
	if len(seller) != 17 {
		t.Fatalf("expected 17 base tools, got %d", len(seller))
	}
	for _, def := range seller {
		if IsTeamTool(def.Name) {
			t.Fatalf("seller catalog leaks team tool %s", def.Name)
		}
	}

	for _, role := range []contractx.Role{contractx.RoleManager, contractx.RoleAdmin} {
		if got := len(CatalogFor(role)); got != 23 {
			t.Fatalf("expected 23 tools for %s, got %d", role, got)
		}
	}
	if got := len(CatalogFor("")); got != 17 {
		t.Fatalf("unknown role must get the base catalog, got %d", got)
	}
}

func TestCatalogSchemas(t *testing.T) {
	t.Parallel()

	for _, def := range CatalogFor(contractx.RoleAdmin) {
		if def.Description == "" {
			t.Fatalf("tool %s has no description", def.Name)
		}
		schema := def.JSONSchema()
		if schema["type"] != "object" {
			t.Fatalf("tool %s schema is not an object", def.Name)
		}
	}

	var share contractx.ToolDefinition
	for _, def := range CatalogFor(contractx.RoleSeller) {
		if def.Name == ToolShareEvaluation {
			share = def
		}
	}
	required, _ := share.JSONSchema()["required"].([]string)
	want := []string{"evaluation_id", "evaluation_type", "recipient_ids"}
	if len(required) != len(want) {
		t.Fatalf("unexpected required params: %v", required)
	}
	for i := range want {
		if required[i] != want[i] {
			t.Fatalf("unexpected required params: %v", required)
		}
	}
}
