// Package app wires the client together: local database, API client and
// services. It is the entry point UI event handlers talk to; there is no
// command-line surface of its own.
package app

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shiftbook/internal/client/client"
	"github.com/dmitrijs2005/shiftbook/internal/client/config"
	"github.com/dmitrijs2005/shiftbook/internal/client/services"
	"github.com/dmitrijs2005/shiftbook/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  *client.Repositories

	Auth   *services.AuthService
	Days   *services.DayService
	Sync   *services.SyncService
	Export *services.ExportService

	mu          sync.Mutex
	focusedDate string
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	apiClient := client.NewHTTPClient(cfg.ServerBaseURL)

	return &App{
		config: cfg,
		logger: logger,
		repos:  repos,
		Auth:   services.NewAuthService(apiClient),
		Days:   services.NewDayService(repos.Days, logger, cfg.SaveDebounce),
		Sync:   services.NewSyncService(apiClient, repos.Days, logger, cfg.SavedStatusDelay),
		Export: services.NewExportService(apiClient),
	}, nil
}

// Run starts the background loops: the push scheduler and the connectivity
// watcher. It blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Sync.Run(ctx, a.config.PushInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Sync.RunOnlineWatcher(ctx, a.config.OnlineCheckInterval, a.FocusedDate)
	}()

	wg.Wait()
	a.Days.Flush(context.Background())
}

// SetFocusedDate records the date the user is looking at and pulls its
// remote state into the local store.
func (a *App) SetFocusedDate(ctx context.Context, date string) {
	a.mu.Lock()
	a.focusedDate = date
	a.mu.Unlock()

	if err := a.Sync.PullDay(ctx, date); err != nil {
		a.logger.Warn(ctx, "pull on focus failed", "date", date, "error", err)
	}
}

// FocusedDate returns the date currently shown in the edit surface.
func (a *App) FocusedDate() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.focusedDate
}

// Close releases the local database.
func (a *App) Close() error {
	return a.repos.DB.Close()
}
