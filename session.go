package copilottui

import (
	"context"

	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/enablement"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
	"github.com/astrosteveo/copilot-tui/pkg/reconcile"
	"github.com/astrosteveo/copilot-tui/pkg/scan"
	"github.com/astrosteveo/copilot-tui/pkg/toggle"
	"github.com/astrosteveo/copilot-tui/pkg/upstream"
)

// Views implements Session.
func (s *session) Views() []*reconcile.AssetView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection.Filter(s.filter)
}

// View implements Session.
func (s *session) View(key assets.Key) (*reconcile.AssetView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection.View(key)
}

// Snapshot implements Session.
func (s *session) Snapshot() *upstream.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Reload implements Session.
func (s *session) Reload(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuild(ctx, force)
}

// executor builds a toggle executor over the session's current state.
// The caller holds the lock.
func (s *session) executor() *toggle.Executor {
	return toggle.New(s.project, s.catalog, s.record, s.snapshot.Root,
		toggle.WithClock(s.now), toggle.WithLogger(s.logger))
}

// Toggle implements Session.
func (s *session) Toggle(key assets.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.executor().Toggle(key); err != nil {
		return err
	}
	s.dirty = true

	affected := []assets.Key{key}
	if key.Kind == paths.KindCollection {
		affected = s.collectionMembers(key)
	}
	if err := scan.Rescan(s.project, s.catalog, s.scanned, affected...); err != nil {
		return err
	}
	s.reproject()
	return nil
}

// ToggleCollection implements Session.
func (s *session) ToggleCollection(id string, desired bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	warnings, err := s.executor().ToggleCollection(id, desired)
	if err != nil {
		return err
	}
	s.warnings = append(s.warnings, warnings...)
	s.dirty = true

	if col, ok := s.catalog.CollectionByID(id); ok {
		if err := scan.Rescan(s.project, s.catalog, s.scanned, memberKeys(col)...); err != nil {
			return err
		}
	}
	s.reproject()
	return nil
}

// Reset implements Session.
func (s *session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.warnings = append(s.warnings, s.executor().Reset()...)
	s.dirty = true

	scanned, err := scan.Scan(s.project, s.catalog)
	if err != nil {
		return err
	}
	s.scanned = scanned
	s.reproject()
	return nil
}

// Save implements Session.
func (s *session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := enablement.Save(s.project.Enablement, s.record); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Dirty implements Session.
func (s *session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Filter implements Session.
func (s *session) Filter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = query
}

// ClearFilter implements Session.
func (s *session) ClearFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = ""
}

// Warnings implements Session.
func (s *session) Warnings() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	warnings := make([]error, len(s.warnings))
	copy(warnings, s.warnings)
	return warnings
}

// ClearWarnings implements Session.
func (s *session) ClearWarnings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = nil
}

// Orphans implements Session.
func (s *session) Orphans() []assets.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection.Orphans
}

// OrphanFiles implements Session.
func (s *session) OrphanFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanned.OrphanFiles
}

// CleanupOrphans implements Session. It returns how many entries were
// removed.
func (s *session) CleanupOrphans() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, key := range s.projection.Orphans {
		s.record.Clear(key)
		removed++
	}
	if removed > 0 {
		s.dirty = true
		s.reproject()
	}
	return removed
}

// collectionMembers resolves the member keys of the collection addressed
// by key. The caller holds the lock.
func (s *session) collectionMembers(key assets.Key) []assets.Key {
	for _, col := range s.catalog.Collections {
		if col.Path == key.Path {
			return memberKeys(col)
		}
	}
	return nil
}

func memberKeys(col *assets.Collection) []assets.Key {
	keys := make([]assets.Key, 0, len(col.Items))
	for _, item := range col.Items {
		keys = append(keys, item.Key())
	}
	return keys
}
