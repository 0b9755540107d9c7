package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/docex-labs/stakeholder-cli/internal/db"
	"github.com/docex-labs/stakeholder-cli/internal/docstore"
	"github.com/docex-labs/stakeholder-cli/internal/extractor"
	"github.com/docex-labs/stakeholder-cli/internal/graph"
	"github.com/docex-labs/stakeholder-cli/internal/query"
	"github.com/docex-labs/stakeholder-cli/internal/registry"
	"github.com/docex-labs/stakeholder-cli/internal/strategy"
	"github.com/docex-labs/stakeholder-cli/internal/vector"
	anthropicpkg "github.com/docex-labs/stakeholder-cli/pkg/anthropic"
	"github.com/docex-labs/stakeholder-cli/pkg/githubmodels"
	"github.com/docex-labs/stakeholder-cli/pkg/ollama"
)

// stores bundles the graph and document backends. For postgres both share a
// single connection pool; closing the bundle closes the pool exactly once.
type stores struct {
	graph graph.Store
	docs  docstore.Store
	pool  db.Pool
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
		return
	}
	_ = s.graph.Close()
	_ = s.docs.Close()
}

func initStores(ctx context.Context) (*stores, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		gs, err := graph.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, eris.Wrap(err, "open graph store")
		}
		ds, err := docstore.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			gs.Close()
			return nil, eris.Wrap(err, "open document store")
		}
		return &stores{graph: gs, docs: ds}, nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.Store.DatabaseURL, 0, 0)
		if err != nil {
			return nil, eris.Wrap(err, "connect postgres")
		}
		return &stores{
			graph: graph.NewPostgres(pool),
			docs:  docstore.NewPostgres(pool),
			pool:  pool,
		}, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func migrateStores(ctx context.Context, st *stores) error {
	if err := st.graph.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate graph store")
	}
	if err := st.docs.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate document store")
	}
	return nil
}

func initOllama() (ollama.Client, error) {
	return ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.DefaultModel)
}

// initExtractor wires the model registry, the per-strategy executors, and
// the fallback orchestrator.
func initExtractor(olc ollama.Client) (*extractor.Orchestrator, *registry.Registry) {
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	chatClient := githubmodels.NewClient(cfg.OpenAI.Key, cfg.OpenAI.BaseURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.Extraction.RequestsPerSecond), 1)

	set := strategy.NewSet(
		strategy.NewNativeExecutor(anthropicClient, chatClient, limiter),
		strategy.NewJSONModeExecutor(chatClient, limiter),
		strategy.NewLocalStructuredExecutor(olc, limiter),
		strategy.NewGuidedTextExecutor(olc, limiter),
	)

	reg := registry.Default()
	timeout := time.Duration(cfg.Extraction.AttemptTimeoutSecs) * time.Second
	return extractor.New(reg, set, timeout), reg
}

func initIndex() (*vector.Index, error) {
	embed, err := vector.EmbedderFor(cfg.Vector.EmbeddingProvider, cfg.Vector.EmbeddingModel, cfg.Ollama.BaseURL, cfg.OpenAI.Key)
	if err != nil {
		return nil, err
	}
	return vector.Open(cfg.Vector.Path, cfg.Vector.Collection, embed)
}

// initQuery wires the hybrid question orchestrator over an existing graph
// store and vector index.
func initQuery(gs graph.Store, index *vector.Index, olc ollama.Client) (*query.Orchestrator, error) {
	vocab := query.DefaultVocabulary()
	if cfg.Query.VocabPath != "" {
		v, err := query.LoadVocabulary(cfg.Query.VocabPath)
		if err != nil {
			return nil, eris.Wrap(err, "load vocabulary")
		}
		vocab = v
	}

	var gen query.Generator
	if cfg.Query.AnswerProvider == "openai" {
		gen = query.NewChatGenerator(githubmodels.NewClient(cfg.OpenAI.Key, cfg.OpenAI.BaseURL), cfg.Query.AnswerModel)
	} else {
		gen = query.NewOllamaGenerator(olc, cfg.Query.AnswerModel)
	}
	semantic := query.NewSemanticPath(index, gen, cfg.Query.TopK, cfg.Query.SimilarityFloor)
	return query.NewOrchestrator(query.NewClassifier(), query.NewGraphPath(gs, vocab), semantic), nil
}
