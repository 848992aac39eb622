package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"

	contractx "github.com/spinlab/coach/agent/contract"
	"github.com/spinlab/coach/agent/markup"
)

var (
	//go:embed template/coach.tmpl
	coachRaw string

	//go:embed template/forced_final.txt
	forcedFinalRaw string
)

var weekdays = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}

type systemData struct {
	Caller      *contractx.Caller
	CompanyName string
	Now         time.Time
	Timezone    string
	ToolNames   []string
}

// Builder renders the system prompt for one caller. It is safe for
// concurrent use once built.
type Builder struct {
	system      *template.Template
	forcedFinal string
	loc         *time.Location
	now         func() time.Time
}

type Option func(*Builder)

func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

func NewBuilder(loc *time.Location, opts ...Option) (*Builder, error) {
	if loc == nil {
		loc = time.UTC
	}
	funcs := sprig.TxtFuncMap()
	funcs["widget"] = markup.Format
	funcs["weekday"] = func(t time.Time) string { return weekdays[t.Weekday()] }

	tmpl, err := template.New("coach").Funcs(funcs).Option("missingkey=error").Parse(coachRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse system prompt: %v", contractx.ErrPromptMissing, err)
	}

	b := &Builder{
		system:      tmpl,
		forcedFinal: strings.TrimSpace(forcedFinalRaw),
		loc:         loc,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.forcedFinal == "" {
		return nil, fmt.Errorf("%w: forced final instruction", contractx.ErrPromptMissing)
	}
	return b, nil
}

func MustBuilder(loc *time.Location, opts ...Option) *Builder {
	b, err := NewBuilder(loc, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// System renders the system prompt for caller with the tools it is offered.
func (b *Builder) System(caller *contractx.Caller, tools []contractx.ToolDefinition) (string, error) {
	if caller == nil {
		return "", fmt.Errorf("%w: caller is required", contractx.ErrValidation)
	}
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}

	var buf bytes.Buffer
	err := b.system.Execute(&buf, systemData{
		Caller:      caller,
		CompanyName: caller.CompanyName,
		Now:         b.now().In(b.loc),
		Timezone:    b.loc.String(),
		ToolNames:   names,
	})
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// ForcedFinal is the instruction appended before the last, tool-less call.
func (b *Builder) ForcedFinal() string {
	return b.forcedFinal
}
