package logx

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

func Init(opts ...Config) {
	conf := safe(opts...)
	log.Logger = New(os.Stdout, *conf)
	zerolog.DefaultContextLogger = &log.Logger
}

// New builds a logger with the same shape Init installs globally.
func New(out io.Writer, conf Config) zerolog.Logger {
	var l zerolog.Logger
	if conf.PrettyFormat {
		l = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}

	if conf.Debug {
		l = l.Level(zerolog.DebugLevel)
	} else {
		l = l.Level(zerolog.InfoLevel)
	}

	return l.With().Caller().Stack().Logger()
}

// NewCorrelationID returns a fresh request id.
func NewCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID attaches a child of the global logger carrying the id
// to ctx. An empty id gets a generated one.
func WithCorrelationID(ctx context.Context, correlationID string) (context.Context, string) {
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}
	l := log.Logger.With().Str("correlation_id", correlationID).Logger()
	return l.WithContext(ctx), correlationID
}

// From returns the request logger stored in ctx, or the global logger.
func From(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &log.Logger
	}
	return zerolog.Ctx(ctx)
}
