// Package app wires configuration, storage and remote clients into the
// services the commands run.
package app

import (
	"context"

	"github.com/letieu/agent-directory/config"
	"github.com/letieu/agent-directory/internal/database"
	"github.com/letieu/agent-directory/internal/directory"
	"github.com/letieu/agent-directory/internal/extraction"
	"github.com/letieu/agent-directory/internal/firecrawl"
	"github.com/letieu/agent-directory/internal/flags"
	"github.com/letieu/agent-directory/internal/llm"
	"github.com/letieu/agent-directory/internal/logger"
	"github.com/letieu/agent-directory/internal/search"
	"github.com/letieu/agent-directory/internal/youtube"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *database.DB
	Pipeline  *extraction.Pipeline
	Directory *directory.Service
	Search    *search.Service
}

// New builds the app. With requireServices set, missing LLM or Firecrawl
// credentials are an error; otherwise AI search and autofill are disabled.
func New(ctx context.Context, requireServices bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, eris.Wrap(err, "app: load config")
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "app: connect to database")
	}

	a := &App{Config: cfg, Logger: log, DB: db}

	var interpreter *search.Interpreter
	if err := cfg.RequireServices(); err != nil {
		if requireServices {
			db.Close()
			return nil, err
		}
		log.Warn("remote services not configured, AI search and autofill disabled", zap.Error(err))
	} else {
		completer, err := llm.New(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		transcriber, err := youtube.NewClient(cfg, log.Named("youtube"))
		if err != nil {
			db.Close()
			return nil, err
		}
		a.Pipeline = extraction.NewPipeline(
			firecrawl.NewClient(cfg, log.Named("firecrawl")),
			transcriber,
			completer,
			log.Named("extraction"),
		)
		interpreter = search.NewInterpreter(completer, searchModel(cfg), log.Named("search"))
	}

	var autofill directory.Autofiller
	if a.Pipeline != nil {
		autofill = a.Pipeline
	}
	a.Directory = directory.NewService(db, flags.New(cfg), autofill, log.Named("directory"))
	a.Search = search.NewService(db, interpreter, log.Named("search"))
	return a, nil
}

// searchModel only applies the dedicated search model on OpenRouter, whose
// model ids it is written in.
func searchModel(cfg *config.Config) string {
	if cfg.LLM.Provider == "openrouter" {
		return cfg.LLM.SearchModel
	}
	return ""
}

func (a *App) Close() error {
	a.Logger.Sync()
	return a.DB.Close()
}
