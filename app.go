package main

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/spinlab/coach/agent/agents/orchestrator"
	"github.com/spinlab/coach/agent/calendar"
	"github.com/spinlab/coach/agent/llm"
	"github.com/spinlab/coach/agent/prompt"
	"github.com/spinlab/coach/agent/store"
	"github.com/spinlab/coach/agent/tool"
	configx "github.com/spinlab/coach/pkg/config"
	openrouterx "github.com/spinlab/coach/pkg/openrouter"
	"github.com/spinlab/coach/pkg/postgres"
)

type CoachConfig struct {
	orchestrator.Config
	Policy    tool.AggregationPolicy
	Timezone  string        `default:"America/Sao_Paulo"`
	WorkStart time.Duration `split_words:"true" default:"8h"`
	WorkEnd   time.Duration `split_words:"true" default:"18h"`
}

// app holds everything one orchestrated turn needs.
type app struct {
	db           *bun.DB
	orchestrator *orchestrator.Orchestrator
}

func newApp(ctx context.Context) (*app, error) {
	coachCfg, err := configx.New[CoachConfig]("COACH")
	if err != nil {
		return nil, err
	}
	dbCfg, err := configx.New[postgres.Config]("DATABASE")
	if err != nil {
		return nil, err
	}
	llmCfg, err := configx.New[openrouterx.Config]("OPENROUTER")
	if err != nil {
		return nil, err
	}
	calCfg, err := configx.New[calendar.Config]("GOOGLE")
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(coachCfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", coachCfg.Timezone, err)
	}

	db, err := postgres.Open(*dbCfg)
	if err != nil {
		return nil, err
	}
	repo := store.New(db)

	cal := calendar.New(*calCfg, repo, calendar.WithLocation(loc))
	dispatcher := tool.NewDispatcher(repo, cal,
		tool.WithLocation(loc),
		tool.WithWorkWindow(tool.WorkWindow{Start: coachCfg.WorkStart, End: coachCfg.WorkEnd}),
		tool.WithPolicy(coachCfg.Policy),
	)

	prompts, err := prompt.NewBuilder(loc)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	model, err := llm.New(ctx, *llmCfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	orch, err := orchestrator.New(model, repo, dispatcher, prompts, coachCfg.Config)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{db: db, orchestrator: orch}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
