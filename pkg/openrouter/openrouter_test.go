package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	openaisdk "github.com/openai/openai-go"
)

type headerCapture struct {
	mu      sync.Mutex
	referer []string
	title   []string
}

func (h *headerCapture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.referer = append(h.referer, r.Header.Get("HTTP-Referer"))
		h.title = append(h.title, r.Header.Get("X-Title"))
		h.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}],
			"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBothDriversSendAttributionHeaders(t *testing.T) {
	t.Parallel()

	capture := &headerCapture{}
	srv := capture.server(t)
	cfg := Config{
		BaseURL:  srv.URL,
		APIKey:   "k",
		Model:    "m",
		SiteURL:  "https://coach.example.com",
		SiteName: "Coach",
	}

	m, err := cfg.New(context.Background())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("oi")}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = client.Chat.Completions.New(context.Background(), openaisdk.ChatCompletionNewParams{
		Model:    "m",
		Messages: []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage("oi")},
	})
	if err != nil {
		t.Fatalf("Completions.New() error = %v", err)
	}

	capture.mu.Lock()
	defer capture.mu.Unlock()
	if len(capture.referer) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(capture.referer))
	}
	for i := range capture.referer {
		if capture.referer[i] != "https://coach.example.com" || capture.title[i] != "Coach" {
			t.Fatalf("request %d missing attribution headers: referer=%q title=%q", i, capture.referer[i], capture.title[i])
		}
	}
}

func TestHTTPClientWithoutHeaders(t *testing.T) {
	t.Parallel()

	c := (&Config{}).httpClient()
	if _, wrapped := c.Transport.(*headerTransport); wrapped {
		t.Fatal("no attribution configured, transport should not be wrapped")
	}
}
