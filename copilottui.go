// Package copilottui is the engine behind the copilot-tui CLI. It keeps
// a project's .github asset tree reconciled against a cached snapshot of
// the upstream catalog: sync acquires snapshots, the catalog and local
// scan are joined into derived views, and toggle operations materialize
// the user's enablement decisions on disk.
package copilottui

import (
	"context"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/enablement"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/logging"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
	"github.com/astrosteveo/copilot-tui/pkg/reconcile"
	"github.com/astrosteveo/copilot-tui/pkg/scan"
	"github.com/astrosteveo/copilot-tui/pkg/upstream"
)

// Session is a live view over one project. All operations are serialized;
// the slices returned by query methods are consistent snapshots valid
// until the next mutating call.
type Session interface {
	// Views returns every asset view in display order, honoring the
	// active filter.
	Views() []*reconcile.AssetView

	// View looks up a single asset view. The filter does not apply.
	View(key assets.Key) (*reconcile.AssetView, bool)

	// Snapshot returns the active upstream snapshot.
	Snapshot() *upstream.Snapshot

	// Reload re-acquires a snapshot and rebuilds all derived state.
	Reload(ctx context.Context, force bool) error

	// Toggle flips one asset's effective enablement.
	Toggle(key assets.Key) error

	// ToggleCollection drives a collection and its members to the
	// desired state.
	ToggleCollection(id string, desired bool) error

	// Reset removes every installed asset file and clears all explicit
	// decisions.
	Reset() error

	// Save persists the enablement record and clears the dirty flag.
	Save() error

	// Dirty reports whether the in-memory record diverges from disk.
	Dirty() bool

	// Filter sets the active substring filter.
	Filter(query string)

	// ClearFilter removes the active filter.
	ClearFilter()

	// Warnings returns the accumulated warning list.
	Warnings() []error

	// ClearWarnings empties the warning list.
	ClearWarnings()

	// Orphans lists enablement entries that no longer resolve to a
	// cataloged asset.
	Orphans() []assets.Key

	// OrphanFiles lists files under the install directories that no
	// catalog entry claims.
	OrphanFiles() []string

	// CleanupOrphans removes orphaned enablement entries and marks the
	// record dirty.
	CleanupOrphans() int
}

// session is the internal implementation of the Session interface.
type session struct {
	mu sync.Mutex

	project  *paths.Project
	syncer   *upstream.Syncer
	snapshot *upstream.Snapshot

	catalog    *assets.Catalog
	record     *enablement.Record
	scanned    *scan.Result
	projection *reconcile.Projection

	dirty    bool
	warnings []error
	filter   string

	now    func() utc.Time
	logger *zerolog.Logger
}

// Open brings up a session for the project at root: resolve the layout,
// ensure the directory structure, load the enablement record, acquire a
// snapshot, and build the first projection. An unloadable enablement
// record and an unobtainable snapshot are both fatal.
func Open(ctx context.Context, root string, opts ...Option) (Session, error) {
	s := &session{
		now:    utc.Now,
		logger: logging.Default(),
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger != nil {
		s.logger = cfg.logger
	}
	if cfg.clock != nil {
		s.now = cfg.clock
	}

	project, err := paths.Resolve(root)
	if err != nil {
		return nil, err
	}
	s.project = project

	if err := project.EnsureStructure(); err != nil {
		return nil, errors.NewStartupError("cannot create project structure", err)
	}

	record, err := enablement.Load(project.Enablement)
	if err != nil {
		return nil, err
	}
	s.record = record

	syncerOpts := append([]upstream.Option{upstream.WithLogger(s.logger)}, cfg.syncerOpts...)
	s.syncer = upstream.NewSyncer(project, syncerOpts...)

	if err := s.rebuild(ctx, false); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("root", project.Root).
		Str("commit", s.snapshot.Commit).
		Int("warnings", len(s.warnings)).
		Msg("Session ready")
	return s, nil
}

// rebuild acquires a snapshot and reconstructs all derived state. The
// caller holds the lock or owns the session exclusively.
func (s *session) rebuild(ctx context.Context, force bool) error {
	snapshot, syncWarnings, err := s.syncer.Acquire(ctx, force)
	if err != nil {
		return err
	}
	s.snapshot = snapshot
	s.warnings = append(s.warnings, syncWarnings...)

	catalog, catalogWarnings, err := assets.Build(snapshot.Root)
	if err != nil {
		return err
	}
	s.catalog = catalog
	s.warnings = append(s.warnings, catalogWarnings...)

	scanned, err := scan.Scan(s.project, catalog)
	if err != nil {
		return err
	}
	s.scanned = scanned

	s.projection = reconcile.Project(s.catalog, s.record, s.scanned)
	return nil
}

// reproject rebuilds the derived views from current state after a
// mutation. The caller holds the lock.
func (s *session) reproject() {
	s.projection = reconcile.Project(s.catalog, s.record, s.scanned)
}
