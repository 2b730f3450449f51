package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/cropdoc/internal/ai"
	"github.com/myrjola/cropdoc/internal/db"
	"github.com/myrjola/cropdoc/internal/envstruct"
	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/logging"
	"github.com/myrjola/cropdoc/internal/pprofserver"
	"github.com/myrjola/cropdoc/internal/repositories"
	"github.com/myrjola/cropdoc/internal/session"
)

type application struct {
	logger         *slog.Logger
	diagnostic     session.DiagnosticClient
	assistant      session.Conversationalist
	history        *repositories.HistoryRepository
	sessionManager *scs.SessionManager
	sessions       *sessionRegistry
}

type configuration struct {
	Addr         string `env:"CROPDOC_ADDR" envDefault:"localhost:4000"`
	PprofPort    string `env:"CROPDOC_PPROF_PORT" envDefault:":6060"`
	SQLiteURL    string `env:"CROPDOC_SQLITE_URL" envDefault:"./cropdoc.sqlite"`
	GeminiAPIKey string `env:"GEMINI_API_KEY" envDefault:""`
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
}

func main() {
	ctx := context.Background()
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server exited", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}

	var config configuration
	if err := envstruct.Populate(&config, lookupEnv); err != nil {
		return errors.Wrap(err, "parse environment")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	pprofserver.Launch(config.PprofPort, logger)

	dbs, err := db.NewDB(config.SQLiteURL)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	diagnostic, err := ai.NewGeminiClient(ctx, config.GeminiAPIKey)
	if err != nil {
		return errors.Wrap(err, "initialise diagnostic client")
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	history := repositories.NewHistoryRepository(dbs, logger)

	app := application{
		logger:         logger,
		diagnostic:     diagnostic,
		assistant:      ai.NewAssistantClient(config.OpenAIAPIKey, logger),
		history:        history,
		sessionManager: sessionManager,
		sessions:       newSessionRegistry(),
	}

	return app.configureAndStartServer(ctx, config.Addr)
}
