package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/pushpanel/internal/browser"
	"github.com/five82/pushpanel/internal/config"
	"github.com/five82/pushpanel/internal/controller"
	"github.com/five82/pushpanel/internal/logging"
	"github.com/five82/pushpanel/internal/prefs"
	"github.com/five82/pushpanel/internal/pusher"
	"github.com/five82/pushpanel/internal/state"
	"github.com/five82/pushpanel/internal/ui"
)

// Options configure the pushpanel application.
type Options struct {
	ConfigPath   string
	EnvFile      string // empty uses .env in the working directory
	PrefsPath    string // empty uses default ~/.config/pushpanel/prefs.toml
	RefreshEvery int    // seconds; zero uses default
}

// panel holds the wired components behind the UI.
type panel struct {
	store  *state.Store
	ctrl   *controller.Controller
	server *pusher.Client
}

// Run boots the pushpanel TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotenv(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("load prefs", zap.Error(err))
	}
	theme := cfg.Theme
	if userPrefs.Theme != "" {
		theme = userPrefs.Theme
	}

	p, err := newPanel(cfg, logger)
	if err != nil {
		return err
	}

	interval := defaultRefreshInterval
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}

	// Initial reconcile so the first frame shows real state
	refresh(ctx, p.ctrl, p.store, logger)

	StartRefresher(ctx, p.ctrl, p.store, interval, logger)

	logger.Info("pushpanel started",
		zap.String("server_url", cfg.ServerURL),
		zap.String("page_url", cfg.PageURL),
		zap.Bool("name_input", cfg.Features.NameInput),
		zap.Bool("message_input", cfg.Features.MessageInput),
	)

	return ui.Run(ui.Options{
		Context:    ctx,
		Controller: p.ctrl,
		Store:      p.store,
		ServerURL:  p.server.BaseURL(),
		ThemeName:  theme,
		PrefsPath:  prefsPath,
		LogPath:    cfg.LogFile,
		Logger:     logger,
	})
}

// newPanel wires the browser profile, server client, store and controller.
// Feature flags decide which inputs the store exposes.
func newPanel(cfg config.Config, logger *zap.Logger) (*panel, error) {
	profile, err := browser.NewLocal(cfg.StatePath, cfg.PageURL, cfg.PushService, logger.Named("browser"))
	if err != nil {
		return nil, fmt.Errorf("open browser profile: %w", err)
	}

	server, err := pusher.NewClient(cfg.ServerURL, logger.Named("pusher"))
	if err != nil {
		return nil, fmt.Errorf("init server client: %w", err)
	}

	var inputs []controller.InputID
	if cfg.Features.NameInput {
		inputs = append(inputs, controller.InputName)
	}
	if cfg.Features.MessageInput {
		inputs = append(inputs, controller.InputMessage)
	}
	store := state.NewStore(inputs...)

	ctrl, err := controller.New(profile, server, store, controller.Options{
		WorkerScript: cfg.WorkerScript,
		Logger:       logger.Named("controller"),
	})
	if err != nil {
		return nil, fmt.Errorf("init controller: %w", err)
	}

	return &panel{store: store, ctrl: ctrl, server: server}, nil
}
