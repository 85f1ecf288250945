package toggle

import (
	"os"
	"path/filepath"

	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// Reset deletes every cataloged file asset's install file and clears all
// explicit decisions. No backups are taken; the caller confirms the
// destruction before invoking this. Deletion failures become warnings
// and the sweep continues.
func (e *Executor) Reset() []error {
	var warnings []error

	for _, kind := range paths.FileKinds() {
		for _, asset := range e.catalog.FilesOfKind(kind) {
			installPath := e.project.InstallPath(asset.Kind, asset.Path)
			if err := os.Remove(installPath); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				warnings = append(warnings, &errors.RemoveError{
					Asset: asset.Key().String(),
					Step:  "remove",
					Err:   err,
				})
				continue
			}
			e.pruneEmptyAncestors(filepath.Dir(installPath))
		}
	}

	e.record.ClearAll()
	e.logger.Info().Int("warnings", len(warnings)).Msg("Project reset")
	return warnings
}
