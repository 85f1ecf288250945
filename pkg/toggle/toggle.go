// Package toggle materializes enablement decisions on disk. Enable and
// disable are all-or-nothing per asset: any failure restores the prior
// file content and reverts the enablement mutation before the error is
// surfaced. Locally modified files are backed up before they are
// overwritten or removed.
package toggle

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/astrosteveo/copilot-tui/internal/utils/ptr"
	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/constants"
	"github.com/astrosteveo/copilot-tui/pkg/enablement"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/logging"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// backupTimestampLayout names backup directories by the UTC time the
// backup is taken, in a filename-safe form.
const backupTimestampLayout = "20060102T150405Z"

// Executor applies toggle operations for one session. It mutates the
// enablement record it was given; the caller owns persistence and
// reprojection.
type Executor struct {
	project      *paths.Project
	catalog      *assets.Catalog
	record       *enablement.Record
	snapshotRoot string
	now          func() utc.Time
	logger       *zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock overrides the clock used for backup timestamps.
func WithClock(now func() utc.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithLogger overrides the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// New creates an executor over the given catalog, record, and snapshot.
func New(project *paths.Project, catalog *assets.Catalog, record *enablement.Record, snapshotRoot string, opts ...Option) *Executor {
	e := &Executor{
		project:      project,
		catalog:      catalog,
		record:       record,
		snapshotRoot: snapshotRoot,
		now:          utc.Now,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// inherited returns the value inherited from the first containing
// collection, in id order, that carries an explicit decision.
func (e *Executor) inherited(key assets.Key) *bool {
	for _, colID := range e.catalog.Membership(key) {
		col, ok := e.catalog.CollectionByID(colID)
		if !ok {
			continue
		}
		if value, ok := e.record.Get(col.Key()); ok {
			return ptr.Bool(value)
		}
	}
	return nil
}

// effective resolves the current effective value for a key.
func (e *Executor) effective(key assets.Key) bool {
	if value, ok := e.record.Get(key); ok {
		return value
	}
	if inherited := e.inherited(key); inherited != nil {
		return *inherited
	}
	return false
}

// Toggle flips the asset's effective value.
func (e *Executor) Toggle(key assets.Key) error {
	if key.Kind == paths.KindCollection {
		return e.toggleCollectionKey(key)
	}
	if e.effective(key) {
		return e.Disable(key)
	}
	return e.Enable(key)
}

// toggleCollectionKey flips a collection addressed by key rather than id.
func (e *Executor) toggleCollectionKey(key assets.Key) error {
	for _, col := range e.catalog.Collections {
		if col.Path == key.Path {
			_, err := e.ToggleCollection(col.ID, !e.effective(key))
			return err
		}
	}
	return errors.NewNotFoundError("collection", key.Path)
}

// Enable installs a file asset and records the decision. When the asset
// already inherits true from a collection, the explicit entry is cleared
// instead of duplicated.
func (e *Executor) Enable(key assets.Key) error {
	asset, ok := e.catalog.Asset(key)
	if !ok {
		return errors.NewNotFoundError(string(key.Kind), key.Path)
	}

	priorValue, priorSet := e.record.Get(key)
	revert := func() {
		if priorSet {
			e.record.SetExplicit(key, priorValue)
		} else {
			e.record.Clear(key)
		}
	}

	if inherited := e.inherited(key); inherited != nil && *inherited {
		e.record.Clear(key)
	} else {
		e.record.SetExplicit(key, true)
	}

	installPath := e.project.InstallPath(asset.Kind, asset.Path)

	if err := os.MkdirAll(filepath.Dir(installPath), constants.DirPermissions); err != nil {
		revert()
		return &errors.InstallError{Asset: key.String(), Step: "create directory", Err: err}
	}

	backupPath, err := e.backupIfModified(asset, installPath)
	if err != nil {
		revert()
		return &errors.InstallError{Asset: key.String(), Step: "backup", Err: err}
	}

	source := filepath.Join(e.snapshotRoot, filepath.FromSlash(asset.Path))
	if err := copyAtomic(source, installPath); err != nil {
		e.restoreBackup(backupPath, installPath)
		revert()
		return &errors.InstallError{Asset: key.String(), Step: "install", Err: err}
	}

	if err := verifyDigest(installPath, asset.Digest); err != nil {
		_ = os.Remove(installPath)
		e.restoreBackup(backupPath, installPath)
		revert()
		return &errors.InstallError{Asset: key.String(), Step: "verify", Err: err}
	}

	e.logger.Debug().Str("asset", key.String()).Msg("Asset installed")
	return nil
}

// Disable removes a file asset's install file and records the decision.
// With no inherited value, or an inherited false, the explicit entry is
// cleared; only an inherited true needs an explicit override.
func (e *Executor) Disable(key assets.Key) error {
	asset, ok := e.catalog.Asset(key)
	if !ok {
		return errors.NewNotFoundError(string(key.Kind), key.Path)
	}

	priorValue, priorSet := e.record.Get(key)
	revert := func() {
		if priorSet {
			e.record.SetExplicit(key, priorValue)
		} else {
			e.record.Clear(key)
		}
	}

	if inherited := e.inherited(key); inherited != nil && *inherited {
		e.record.SetExplicit(key, false)
	} else {
		e.record.Clear(key)
	}

	installPath := e.project.InstallPath(asset.Kind, asset.Path)

	if _, err := os.Stat(installPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		revert()
		return &errors.RemoveError{Asset: key.String(), Step: "inspect", Err: err}
	}

	_, err := e.backupIfModified(asset, installPath)
	if err != nil {
		revert()
		return &errors.RemoveError{Asset: key.String(), Step: "backup", Err: err}
	}

	if err := os.Remove(installPath); err != nil {
		revert()
		return &errors.RemoveError{Asset: key.String(), Step: "remove", Err: err}
	}

	e.pruneEmptyAncestors(filepath.Dir(installPath))

	e.logger.Debug().Str("asset", key.String()).Msg("Asset removed")
	return nil
}

// ToggleCollection drives every member toward the desired state, skipping
// members whose explicit value already matches. Member failures become
// warnings and do not abort the batch; the collection's own explicit
// entry is set last.
func (e *Executor) ToggleCollection(id string, desired bool) ([]error, error) {
	col, ok := e.catalog.CollectionByID(id)
	if !ok {
		return nil, errors.NewNotFoundError("collection", id)
	}

	var warnings []error
	for _, item := range col.Items {
		key := item.Key()
		if value, ok := e.record.Get(key); ok && value == desired {
			continue
		}
		var err error
		if desired {
			err = e.Enable(key)
		} else {
			err = e.Disable(key)
		}
		if err != nil {
			warnings = append(warnings, err)
		}
	}

	e.record.SetExplicit(col.Key(), desired)
	return warnings, nil
}

// backupIfModified copies a locally modified file into a timestamped
// backup directory, preserving its kind-relative layout. It returns the
// backup path, or "" when the local file is absent or matches upstream.
func (e *Executor) backupIfModified(asset *assets.FileAsset, installPath string) (string, error) {
	content, err := os.ReadFile(installPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.WrapIO("read", installPath, err)
	}

	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) == asset.Digest {
		return "", nil
	}

	rel, err := filepath.Rel(e.project.GitHub, installPath)
	if err != nil {
		return "", errors.WrapIO("resolve", installPath, err)
	}

	stamp := e.now().Format(backupTimestampLayout)
	backupPath := filepath.Join(e.project.Backups, stamp, rel)
	if err := os.MkdirAll(filepath.Dir(backupPath), constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(backupPath), err)
	}
	if err := os.WriteFile(backupPath, content, constants.FilePermissions); err != nil {
		return "", errors.WrapIO("write", backupPath, err)
	}

	e.logger.Info().Str("backup", backupPath).Msg("Backed up locally modified file")
	return backupPath, nil
}

// restoreBackup puts a backed-up file back at its install path after a
// failed operation. Restore failures are logged; the original error is
// the one surfaced.
func (e *Executor) restoreBackup(backupPath, installPath string) {
	if backupPath == "" {
		return
	}
	content, err := os.ReadFile(backupPath)
	if err != nil {
		e.logger.Error().Err(err).Str("backup", backupPath).Msg("Failed to read backup during rollback")
		return
	}
	if err := os.WriteFile(installPath, content, constants.FilePermissions); err != nil {
		e.logger.Error().Err(err).Str("path", installPath).Msg("Failed to restore backup during rollback")
	}
}

// pruneEmptyAncestors removes empty directories above path, stopping at
// the .github directory, which always survives.
func (e *Executor) pruneEmptyAncestors(dir string) {
	for dir != e.project.GitHub && len(dir) > len(e.project.GitHub) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// copyAtomic copies source to dest through a sibling temp file and
// rename.
func copyAtomic(source, dest string) error {
	content, err := os.ReadFile(source)
	if err != nil {
		return errors.WrapIO("read", source, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", dest, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", tmpName, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("write", tmpName, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapIO("rename", dest, err)
	}
	return nil
}

// verifyDigest rehashes an installed file and compares it to the catalog
// digest.
func verifyDigest(path, digest string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapIO("read", path, err)
	}
	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != digest {
		return errors.NewValidationError("digest", path, "installed content does not match upstream")
	}
	return nil
}
