package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/bus"
	"github.com/sells-group/deal-scout/internal/config"
	"github.com/sells-group/deal-scout/internal/intake"
	"github.com/sells-group/deal-scout/internal/pipeline"
	"github.com/sells-group/deal-scout/internal/research"
	"github.com/sells-group/deal-scout/internal/scorer"
	"github.com/sells-group/deal-scout/internal/store"
	"github.com/sells-group/deal-scout/internal/verdict"
	"github.com/sells-group/deal-scout/pkg/anthropic"
	"github.com/sells-group/deal-scout/pkg/firecrawl"
	"github.com/sells-group/deal-scout/pkg/jina"
	"github.com/sells-group/deal-scout/pkg/perplexity"
)

// pipelineEnv bundles the wired pipeline components a command needs.
type pipelineEnv struct {
	Store     store.Store
	Bus       *bus.Bus
	Processor *pipeline.Processor
	Source    intake.Source
}

func (e *pipelineEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func buildProvider() (research.Provider, error) {
	var jinaClient jina.Client
	if cfg.Jina.Key != "" {
		jinaClient = jina.NewClient(cfg.Jina.Key,
			jina.WithReaderBaseURL(cfg.Jina.BaseURL),
			jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
		)
	}

	var perplexityClient perplexity.Client
	if cfg.Perplexity.Key != "" {
		perplexityClient = perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
	}

	return research.SelectProvider(jinaClient, perplexityClient)
}

// initPipeline wires the store, research stack, scorer, and verdict
// synthesizer. The Gmail source is only attached when credentials are
// configured; commands that do not read mail ignore it.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider()
	if err != nil {
		st.Close()
		return nil, err
	}
	zap.L().Info("research provider selected", zap.String("provider", provider.Name()))

	orchOpts := []research.OrchestratorOption{
		research.WithMaxResults(cfg.Research.MaxResultsPerCategory),
		research.WithRateLimit(cfg.Research.QueriesPerSecond),
	}
	if cfg.Firecrawl.Key != "" {
		orchOpts = append(orchOpts, research.WithScraper(
			firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL)),
		))
	}
	orchestrator := research.NewOrchestrator(provider, orchOpts...)

	if cfg.Anthropic.Key == "" {
		st.Close()
		return nil, eris.New("anthropic API key is required")
	}
	synthesizer := verdict.NewSynthesizer(
		anthropic.NewClient(cfg.Anthropic.Key),
		cfg.Anthropic.Model,
		verdict.WithMaxTokens(cfg.Anthropic.MaxTokens),
	)

	env := &pipelineEnv{
		Store: st,
		Bus:   bus.New(),
		Processor: pipeline.NewProcessor(
			st, orchestrator, scorer.New(scorer.DefaultConfig()), synthesizer,
		),
	}

	if cfg.Gmail.CredentialsPath != "" {
		source, err := intake.NewGmailSource(ctx,
			cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath,
			intake.WithMaxMessages(cfg.Gmail.MaxMessages),
		)
		if err != nil {
			st.Close()
			return nil, err
		}
		env.Source = source
	}

	return env, nil
}
