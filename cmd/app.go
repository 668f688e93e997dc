package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/giantswarm/mcp-oauth/storage/memory"

	"github.com/teemow/meetbook/internal/calendar"
	"github.com/teemow/meetbook/internal/config"
	"github.com/teemow/meetbook/internal/desk"
	"github.com/teemow/meetbook/internal/google"
	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/meet"
	"github.com/teemow/meetbook/internal/scheduling"
	"github.com/teemow/meetbook/internal/server"
)

// application holds the components every command shares.
type application struct {
	cfg    config.Application
	logger *slog.Logger
	desk   *desk.Desk
	auth   *server.AuthSettings
}

// newLogger writes text logs to w. Stdout belongs to the stdio transport,
// so callers pass stderr.
func newLogger(debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Application{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newApplication builds the calendar, engine and desk from cfg.
func newApplication(cfg config.Application, logger *slog.Logger, metrics *instrumentation.Metrics) (*application, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling policy: %w", err)
	}

	app := &application{cfg: cfg, logger: logger}

	var cal scheduling.Calendar
	switch cfg.Calendar.Provider {
	case config.ProviderMemory:
		logger.Warn("using the in-memory calendar, bookings are not persisted")
		cal = calendar.NewMemory()
	case config.ProviderGoogle:
		conf := google.OAuthConfig(cfg.Credentials())
		tokens := google.NewStoreTokenProvider(memory.New(), google.NewFileTokenProvider(cfg.Google.TokenDir))
		links := meet.NewLinks(cfg.Calendar.Account, conf, tokens)
		gcal := calendar.NewGoogle(calendar.GoogleConfig{
			CalendarID: cfg.Calendar.ID,
			Account:    cfg.Calendar.Account,
			OAuth:      conf,
			Tokens:     tokens,
			RateLimit:  cfg.RateLimit(),
			Burst:      cfg.Calendar.Burst,
			Conference: cfg.Calendar.Conference,
			Links:      links,
			Metrics:    metrics,
			Logger:     logger,
		})
		cal = gcal
		app.auth = &server.AuthSettings{
			OAuth:   conf,
			Tokens:  tokens,
			Account: cfg.Calendar.Account,
			OnTokenSaved: func() {
				gcal.Reset()
				links.Reset()
			},
		}
	default:
		return nil, fmt.Errorf("unsupported calendar provider: %s", cfg.Calendar.Provider)
	}

	engine := scheduling.NewEngine(cal, policy,
		scheduling.WithLogger(logger),
		scheduling.WithMetrics(metrics),
	)
	app.desk = desk.New(engine, logger)
	return app, nil
}
