// Package app provides the application context and dependency management
// for the copilot-tui CLI. It centralizes configuration, logging, and the
// engine session behind one lazily initialized bootstrap object.
package app

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	copilottui "github.com/astrosteveo/copilot-tui"
)

// App represents the copilot-tui application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Engine session (lazy-initialized, singleton)
	mu      sync.Mutex
	session copilottui.Session
}

// New creates a new App instance with the given version information.
func New(version, commit, date string) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	a.config = config

	logger := NewLogger(config)
	a.logger = &logger

	return a, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// SetLogger replaces the application logger, used after flag parsing
// updates the logging configuration.
func (a *App) SetLogger(logger zerolog.Logger) {
	a.logger = &logger
}

// Session returns the engine session, opening it on first use. The
// session is opened against the configured project root.
func (a *App) Session(ctx context.Context) (copilottui.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return a.session, nil
	}

	session, err := copilottui.Open(ctx, a.config.Root, copilottui.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.session = session
	return session, nil
}

// ExitOnError prints an error and exits non-zero. Startup failures and
// save failures share exit code 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
