package upstream

import (
	"os"

	"github.com/astrosteveo/copilot-tui/pkg/errors"
)

// Prune removes cached snapshots beyond the retention count, newest
// first by fetch time. The current snapshot is never removed. Failures
// are returned as PruneWarnings; pruning never fails an acquire.
func (s *Syncer) Prune(current string) []error {
	cached := listCached(s.project)

	var warnings []error
	kept := 0
	for _, snap := range cached {
		if snap.Commit == current || kept < s.retention {
			kept++
			continue
		}
		if err := os.RemoveAll(snap.Root); err != nil {
			warnings = append(warnings, &errors.PruneWarning{Path: snap.Root, Err: err})
			continue
		}
		if err := os.Remove(sidecarPath(s.project, snap.Commit)); err != nil && !os.IsNotExist(err) {
			warnings = append(warnings, &errors.PruneWarning{Path: sidecarPath(s.project, snap.Commit), Err: err})
		}
	}
	return warnings
}

// pruneAsync prunes in the background, logging any warnings.
func (s *Syncer) pruneAsync(current string) {
	go func() {
		for _, warn := range s.Prune(current) {
			s.logger.Warn().Err(warn).Msg("Snapshot prune failed")
		}
	}()
}
