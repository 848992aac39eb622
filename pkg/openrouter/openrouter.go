package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

// ReasoningBlacklist lists models whose reasoning output must be switched
// off, otherwise tool-call rounds spend their token budget thinking.
var ReasoningBlacklist = map[string]bool{
	"x-ai/grok-4.1-fast": true,
}

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" required:"true"`
	Model              string        `envconfig:"MODEL" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" default:"0.4"`
	Timeout            time.Duration `envconfig:"TIMEOUT" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL"`
	SiteName           string        `envconfig:"SITE_NAME"`
	// Driver picks the client: "eino" (default) or "openai" for the raw SDK.
	Driver string `envconfig:"DRIVER" default:"eino"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("openrouter api key is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("openrouter model is required")
	}
	switch strings.TrimSpace(c.Driver) {
	case "", "eino", "openai":
	default:
		return fmt.Errorf("unknown llm driver %q", c.Driver)
	}
	return nil
}

func (c *Config) headers() map[string]string {
	h := map[string]string{}
	if s := strings.TrimSpace(c.SiteURL); s != "" {
		h["HTTP-Referer"] = s
	}
	if s := strings.TrimSpace(c.SiteName); s != "" {
		h["X-Title"] = s
	}
	return h
}

// headerTransport adds the OpenRouter attribution headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// httpClient carries the timeout and the attribution headers for the eino
// driver; the openai-go driver sets both through request options.
func (c *Config) httpClient() *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if h := c.headers(); len(h) > 0 {
		transport = &headerTransport{base: transport, headers: h}
	}
	return &http.Client{Timeout: c.Timeout, Transport: transport}
}

// New builds the eino chat model for the configured endpoint.
func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	modelName := strings.TrimSpace(c.Model)
	maxTokens := c.MaxCompletionToken
	temperature := c.Temperature

	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       modelName,
		Temperature: &temperature,
		HTTPClient:  c.httpClient(),
	}
	if maxTokens > 0 {
		conf.MaxTokens = &maxTokens
	}

	extra := map[string]any{}
	if ReasoningBlacklist[modelName] {
		extra["reasoning"] = map[string]any{
			"exclude": true,
			"effort":  "none",
		}
	}
	if len(extra) > 0 {
		conf.ExtraFields = extra
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create chat model: %w", err)
	}

	return m, nil
}

// NewClient creates an openai-go client pointed at OpenRouter.
func NewClient(cfg Config) (*openaisdk.Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openrouter api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	for k, v := range cfg.headers() {
		opts = append(opts, option.WithHeader(k, v))
	}

	client := openaisdk.NewClient(opts...)
	return &client, nil
}
