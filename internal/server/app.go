// Package server wires the storage backends, the session registry and the
// study services together and owns their lifecycle: background jobs run
// until the process is signalled, then sessions are flushed one last time.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/studyvault/internal/dbx"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/config"
	"github.com/dmitrijs2005/studyvault/internal/server/extract"
	"github.com/dmitrijs2005/studyvault/internal/server/ingest"
	"github.com/dmitrijs2005/studyvault/internal/server/jobs"
	"github.com/dmitrijs2005/studyvault/internal/server/llm"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/dmitrijs2005/studyvault/internal/server/retrieval"
	"github.com/dmitrijs2005/studyvault/internal/server/services"
	"github.com/dmitrijs2005/studyvault/internal/server/sessions"
)

const (
	jobFlushSessions = "flush-sessions"
	jobSweepSessions = "sweep-sessions"
)

// Services is the set of operations exposed to a request layer.
type Services struct {
	Users      *services.UserService
	Profiles   *services.ProfileService
	Analytics  *services.AnalyticsService
	History    *services.HistoryService
	Bookmarks  *services.BookmarkService
	Flashcards *services.FlashcardService
	Tutor      *services.TutorService
	Documents  *ingest.Pipeline
	Retrieval  *retrieval.Engine
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	store     *records.Store
	sessions  *sessions.Registry
	scheduler *jobs.Scheduler
	Services  Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.Environment, c.LogLevel)
	app := &App{config: c, logger: logger}

	backend, err := app.newRecordBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("record storage init error: %w", err)
	}
	app.store = records.NewStore(backend, logger)

	blobStore, err := newBlobStore(ctx, c)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("blob storage init error: %w", err)
	}

	app.sessions = sessions.NewRegistry(app.store, logger, sessions.WithTTL(c.SessionTTL))
	if err := app.sessions.Init(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("sessions init error: %w", err)
	}

	dataset, err := services.LoadDataset(c.DatasetPath)
	if err != nil {
		app.close()
		return nil, err
	}

	client := llm.NewChatClient(c.LLMEndpoint, c.LLMAPIKey, c.LLMModel, c.LLMTimeout)
	engine := retrieval.NewEngine(app.store)
	analytics := services.NewAnalyticsService(app.store, logger)
	history := services.NewHistoryService(app.store)

	app.Services = Services{
		Users:      services.NewUserService(app.store, app.sessions, logger),
		Profiles:   services.NewProfileService(app.store),
		Analytics:  analytics,
		History:    history,
		Bookmarks:  services.NewBookmarkService(app.store),
		Flashcards: services.NewFlashcardService(app.store, client, logger),
		Tutor:      services.NewTutorService(app.store, engine, client, dataset, analytics, history, logger, c.MaxContextChunks),
		Documents: ingest.NewPipeline(app.store, blobStore, extract.NewRouter(), logger,
			ingest.WithChunkSize(c.ChunkSize), ingest.WithTimeout(c.ExtractionTimeout)),
		Retrieval: engine,
	}

	if err := app.initScheduler(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) newRecordBackend(ctx context.Context) (records.Backend, error) {
	switch app.config.StorageBackend {
	case config.BackendFS:
		return records.NewFileBackend(app.config.StorageDir, app.logger)
	case config.BackendPostgres:
		db, err := dbx.Open(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		pg := records.NewPostgresBackend(db)
		if err := pg.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, err
		}
		app.db = db
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", app.config.StorageBackend)
	}
}

func newBlobStore(ctx context.Context, c *config.Config) (blobs.Store, error) {
	switch c.BlobBackend {
	case config.BackendFS:
		return blobs.NewFileStore(c.StorageDir)
	case config.BackendS3:
		return blobs.NewS3Store(ctx, blobs.S3Config{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

func (app *App) initScheduler(ctx context.Context) error {
	s, err := jobs.NewScheduler(app.logger)
	if err != nil {
		return err
	}
	if err := s.Register(ctx, jobFlushSessions, app.config.SessionFlushInterval, app.sessions.Flush); err != nil {
		return err
	}
	sweep := func(ctx context.Context) error {
		_, err := app.sessions.SweepExpired(ctx)
		return err
	}
	if err := s.Register(ctx, jobSweepSessions, app.config.SessionSweepInterval, sweep); err != nil {
		return err
	}
	app.scheduler = s
	return nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run starts the background jobs and blocks until ctx is cancelled or the
// process receives a termination signal.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend, "blobs", app.config.BlobBackend)

	app.initSignalHandler(ctx, cancelFunc)
	app.scheduler.Start()

	<-ctx.Done()
	app.shutdown()
}

// shutdown stops the scheduler before the final flush so that no job
// writes the sessions record after it.
func (app *App) shutdown() {
	ctx := context.Background()
	app.logger.Info(ctx, "Shutting down...")

	if err := app.scheduler.Stop(); err != nil {
		app.logger.Error(ctx, "scheduler stop failed", "error", err)
	}
	if err := app.sessions.Flush(ctx); err != nil {
		app.logger.Error(ctx, "final sessions flush failed", "error", err)
	}
	app.close()
}

// Close stops the scheduler, flushes the sessions and releases the database
// pool. It is for processes that use the services without calling Run.
func (app *App) Close() {
	if err := app.scheduler.Stop(); err != nil {
		app.logger.Error(context.Background(), "scheduler stop failed", "error", err)
	}
	if err := app.sessions.Flush(context.Background()); err != nil {
		app.logger.Error(context.Background(), "sessions flush failed", "error", err)
	}
	app.close()
}

func (app *App) close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close failed", "error", err)
		}
		app.db = nil
	}
}
