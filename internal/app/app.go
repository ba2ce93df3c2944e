// Package app builds a Workspace and its collaborators from configuration.
// Optional backends (redis, postgres, object storage, drive) are only
// connected when configured.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/cache"
	"github.com/andresuchdata/b2b-portal/internal/config"
	"github.com/andresuchdata/b2b-portal/internal/drive"
	"github.com/andresuchdata/b2b-portal/internal/importer"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/andresuchdata/b2b-portal/internal/repository/postgres"
	"github.com/andresuchdata/b2b-portal/internal/repository/rest"
	"github.com/andresuchdata/b2b-portal/internal/service"
	"github.com/andresuchdata/b2b-portal/internal/session"
	"github.com/andresuchdata/b2b-portal/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type App struct {
	Workspace *service.Workspace
	Session   *session.Manager
	Imports   *importer.Registry

	redis *redis.Client
	db    *postgres.DB
}

// Build connects every configured backend and restores the saved session.
// profile names the token slot in redis so several CLI users can share one.
func Build(ctx context.Context, cfg *config.Config, profile string) (*App, error) {
	a := &App{}

	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
	}

	tokens, err := a.tokenStore(cfg.Session, profile)
	if err != nil {
		a.Close()
		return nil, err
	}

	client := rest.NewClient(cfg.API, tokens)
	catalogRepo := rest.NewCatalogRepository(client)
	accounts := rest.NewAccountRepository(client)
	a.Session = session.NewManager(accounts, tokens)

	journal := repository.NewNoopImportJournal()
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect import journal: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			a.Close()
			return nil, fmt.Errorf("import journal schema: %w", err)
		}
		a.db = db
		journal = postgres.NewImportJournalRepository(db)
	}

	mode, err := importer.ParseModeOf(cfg.Import.ParseMode)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Imports = importer.NewRegistry(catalogRepo,
		importer.WithJobStore(cache.NewImportJobStore(a.redis, cfg.Cache.JobTTLSeconds)),
		importer.WithJournal(journal),
		importer.WithParseMode(mode),
		importer.WithSuccessDelay(time.Duration(cfg.Import.SuccessDelayMillis)*time.Millisecond),
	)

	loader := &importer.Loader{Archive: cfg.Import.ArchiveUploads}
	if cfg.Storage.Endpoint != "" {
		objects, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
		loader.Objects = objects
	}
	if cfg.Drive.CredentialsJSON != "" {
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			log.Warn().Err(err).Msg("google drive unavailable, drive:// imports disabled")
		} else {
			loader.Drive = svc
		}
	}

	if _, err := a.Session.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("could not restore saved session")
	}

	a.Workspace = service.NewWorkspace(ctx, service.Deps{
		Session:   a.Session,
		Catalog:   catalogRepo,
		Orders:    rest.NewOrderRepository(client),
		Accounts:  accounts,
		Analytics: rest.NewAnalyticsRepository(client),
		Snapshots: cache.NewSnapshotStore(a.redis, cfg.Cache.SnapshotTTLSeconds),
		Imports:   a.Imports,
		Loader:    loader,
		Location:  time.Local,
	})

	log.Info().
		Str("api", cfg.API.BaseURL).
		Bool("redis", a.redis != nil).
		Bool("journal", a.db != nil).
		Bool("storage", loader.Objects != nil).
		Bool("drive", loader.Drive != nil).
		Msg("workspace ready")
	return a, nil
}

func (a *App) tokenStore(cfg config.SessionConfig, profile string) (session.TokenStore, error) {
	switch strings.ToLower(cfg.TokenStore) {
	case "", "file":
		return session.NewFileTokenStore(cfg.TokenFile), nil
	case "redis":
		if a.redis == nil {
			return nil, fmt.Errorf("redis token store requires CACHE_ENABLED")
		}
		return cache.NewRedisTokenStore(a.redis, profile), nil
	case "memory":
		return &session.MemoryTokenStore{}, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}

// Close waits for background imports, then releases every connection.
func (a *App) Close() {
	if a.Workspace != nil {
		a.Workspace.Close()
	}
	if a.Imports != nil {
		a.Imports.Wait()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("close import journal")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}
}
