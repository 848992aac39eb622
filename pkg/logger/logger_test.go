package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Config{Debug: false})

	l.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %s", buf.String())
	}

	l.Info().Str("k", "v").Msg("shown")
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if line["message"] != "shown" || line["k"] != "v" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = New(&buf, Config{Debug: true})
	t.Cleanup(func() { log.Logger = prev })

	ctx, id := WithCorrelationID(context.Background(), "")
	if id == "" {
		t.Fatal("expected generated correlation id")
	}
	From(ctx).Info().Msg("hello")
	if !strings.Contains(buf.String(), id) {
		t.Fatalf("log line missing correlation id %q: %s", id, buf.String())
	}

	_, fixed := WithCorrelationID(context.Background(), "req-1")
	if fixed != "req-1" {
		t.Fatalf("correlation id = %q, want req-1", fixed)
	}
}
