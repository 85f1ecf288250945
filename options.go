package copilottui

import (
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/astrosteveo/copilot-tui/pkg/upstream"
)

// config collects the adjustable parts of a session.
type config struct {
	logger     *zerolog.Logger
	clock      func() utc.Time
	syncerOpts []upstream.Option
}

// Option configures a session at Open time.
type Option func(*config)

// WithLogger sets the session logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithClock overrides the clock used for backup directory names. The
// enablement record's updated_at stamp and snapshot fetch times do not
// use it; the syncer takes its own clock through WithSyncerOptions.
func WithClock(now func() utc.Time) Option {
	return func(c *config) { c.clock = now }
}

// WithSyncerOptions passes options through to the snapshot syncer.
func WithSyncerOptions(opts ...upstream.Option) Option {
	return func(c *config) { c.syncerOpts = append(c.syncerOpts, opts...) }
}
