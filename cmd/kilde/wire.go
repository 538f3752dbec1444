package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nordvik-labs/kilde/internal/adapters/driven/ai"
	"github.com/nordvik-labs/kilde/internal/adapters/driven/config/file"
	"github.com/nordvik-labs/kilde/internal/adapters/driven/storage/elasticsearch"
	"github.com/nordvik-labs/kilde/internal/adapters/driven/storage/memory"
	"github.com/nordvik-labs/kilde/internal/adapters/driven/storage/postgres"
	"github.com/nordvik-labs/kilde/internal/adapters/driven/storage/sqlite"
	"github.com/nordvik-labs/kilde/internal/adapters/driving/cli"
	"github.com/nordvik-labs/kilde/internal/connectors/filesystem"
	"github.com/nordvik-labs/kilde/internal/connectors/web"
	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/core/services"
	"github.com/nordvik-labs/kilde/internal/logger"
	"github.com/nordvik-labs/kilde/internal/normalisers"
	"github.com/nordvik-labs/kilde/internal/normalisers/docx"
	"github.com/nordvik-labs/kilde/internal/normalisers/eml"
	"github.com/nordvik-labs/kilde/internal/normalisers/html"
	"github.com/nordvik-labs/kilde/internal/normalisers/markdown"
	"github.com/nordvik-labs/kilde/internal/normalisers/odt"
	"github.com/nordvik-labs/kilde/internal/normalisers/pdf"
	"github.com/nordvik-labs/kilde/internal/normalisers/plaintext"
)

// build wires the services for one command run.
func build(ctx context.Context, opts cli.Options) (*cli.App, error) {
	fileStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	settings := services.NewSettingsService(fileStore, file.NewResolver(fileStore, nil), ai.NewConfigValidator())
	if opts.SettingsOnly {
		app := &cli.App{Config: domain.DefaultConfig(), Settings: settings}
		if cfg, err := file.LoadConfig(fileStore, nil); err == nil {
			app.Config = cfg
		}
		return app, nil
	}

	cfg, err := file.LoadConfig(overlay(fileStore, opts.Overrides), nil)
	if err != nil {
		return nil, err
	}

	aiServices, err := ai.Init(ctx, cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	store, err := openStore(ctx, cfg.Store, filepath.Dir(fileStore.Path()))
	if err != nil {
		aiServices.Close()
		return nil, err
	}

	var promptStore driven.PromptStore
	if prompts, err := file.NewPromptStore("", services.DefaultPrompts); err != nil {
		logger.Warn("prompts: %v; using built-in prompts", err)
	} else {
		promptStore = prompts
	}

	var captioner driven.ImageCaptioner
	if aiServices.Vision != nil {
		captioner = services.NewCaptioner(aiServices.Vision, cfg.Caption, promptStore)
	}
	var rasterizer driven.Rasterizer
	if cfg.Caption.RenderPages {
		if err := pdf.CheckAvailable(); err != nil {
			logger.Warn("page rendering disabled: %v\n%s", err, pdf.InstallInstructions())
		} else {
			rasterizer = pdf.NewRasterizer(pdf.ExecRunner{}, cfg.Caption.RenderDPI, cfg.Caption.TargetWidth)
		}
	}

	extractors := normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		eml.New(),
		pdf.New(),
		docx.New(),
		odt.New(),
	)
	fetcher := web.NewFetcher(web.ConfigFrom(cfg.Crawler))

	indexer := services.NewFileIndexer(store, aiServices.Embedding, extractors, rasterizer, captioner, cfg)
	retriever := services.NewRetriever(aiServices.Embedding, store, store, services.StoreRetrieverConfig(cfg.Retrieval))

	return &cli.App{
		Config:      cfg,
		Indexer:     indexer,
		SiteIndexer: services.NewSiteIndexer(fetcher, indexer, cfg.Crawler),
		Crawler:     services.NewCrawler(fetcher, aiServices.Embedding, captioner, aiServices.LLM, promptStore, cfg),
		Retriever:   retriever,
		Answers:     services.NewAsker(retriever, aiServices.LLM, promptStore, cfg.Retrieval.Take),
		Settings:    settings,
		Stats:       store,
		Bootstrap: func(ctx context.Context, deleteFirst bool) error {
			return services.Bootstrap(ctx, store, aiServices.Embedding, deleteFirst)
		},
		Watch: func(ctx context.Context, req driving.IndexRequest) error {
			return filesystem.NewWatcher(indexer, req, services.SplitPatterns(req.Patterns)).Watch(ctx)
		},
		Close: func() error {
			aiServices.Close()
			return store.Close()
		},
	}, nil
}

// overlay layers run-only overrides over the config file in memory so
// they are never written back.
func overlay(base driven.ConfigStore, overrides map[string]string) driven.ConfigStore {
	if len(overrides) == 0 {
		return base
	}
	seed := make(map[string]any, len(base.Keys())+len(overrides))
	for _, k := range base.Keys() {
		if v, ok := base.Get(k); ok {
			seed[k] = v
		}
	}
	layered := memory.NewConfigStore(seed)
	for k, v := range overrides {
		_ = layered.Set(k, v)
	}
	return layered
}

// openStore connects the configured search store backend.
func openStore(ctx context.Context, cfg domain.StoreConfig, dataDir string) (driven.SearchStore, error) {
	switch cfg.Backend {
	case domain.StoreElasticsearch, "":
		return elasticsearch.NewStore(elasticsearch.Config{
			URL:      cfg.URL,
			Index:    cfg.Index,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	case domain.StoreSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dataDir, "kilde.db")
		}
		return sqlite.NewStore(path)
	case domain.StorePostgres:
		if cfg.URL == "" {
			return nil, errors.New("store.url must hold a Postgres DSN")
		}
		return postgres.NewStore(ctx, cfg.URL, cfg.Index)
	case domain.StoreMemory:
		logger.Warn("memory store: documents are lost when kilde exits")
		return memory.NewSearchStore(), nil
	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}
