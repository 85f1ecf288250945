// Package scan inspects the project's install directories and classifies
// each cataloged file asset's local state against the snapshot content.
// Scanning is read-only; it never repairs or removes anything it finds.
package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// Status classifies a file asset's install location.
type Status int

const (
	// StatusMissing means no file exists at the install location.
	StatusMissing Status = iota

	// StatusSame means the installed file matches the snapshot content.
	StatusSame

	// StatusDiff means a file exists but its content differs from the
	// snapshot, either locally edited or from an older snapshot.
	StatusDiff

	// StatusNotApplicable is assigned to collections, which have no
	// install location of their own.
	StatusNotApplicable
)

// String returns the status label used in views and logs.
func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusSame:
		return "same"
	case StatusDiff:
		return "diff"
	case StatusNotApplicable:
		return "n/a"
	}
	return "unknown"
}

// Result is one complete pass over the install directories.
type Result struct {
	// Statuses maps every cataloged file asset key to its local state.
	Statuses map[assets.Key]Status

	// OrphanFiles lists files found under the install directories that
	// no catalog entry claims, as sorted forward-slashed paths relative
	// to the .github directory. They are reported, never acted upon.
	OrphanFiles []string
}

// Status returns the recorded status for key, defaulting to
// StatusNotApplicable for keys the scan never classified.
func (r *Result) Status(key assets.Key) Status {
	if s, ok := r.Statuses[key]; ok {
		return s
	}
	return StatusNotApplicable
}

// Scan classifies every file asset in the catalog against the project's
// install directories.
func Scan(project *paths.Project, catalog *assets.Catalog) (*Result, error) {
	result := &Result{Statuses: make(map[assets.Key]Status)}

	claimed := make(map[string]bool)
	for _, kind := range paths.FileKinds() {
		for _, asset := range catalog.FilesOfKind(kind) {
			status, err := classify(project, asset)
			if err != nil {
				return nil, err
			}
			result.Statuses[asset.Key()] = status
			claimed[project.InstallPath(asset.Kind, asset.Path)] = true
		}
	}

	orphans, err := findOrphanFiles(project, claimed)
	if err != nil {
		return nil, err
	}
	result.OrphanFiles = orphans
	return result, nil
}

// findOrphanFiles walks the install directories and collects files no
// catalog entry claims.
func findOrphanFiles(project *paths.Project, claimed map[string]bool) ([]string, error) {
	var orphans []string
	for _, kind := range paths.FileKinds() {
		dir := project.InstallDir(kind)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() || claimed[path] {
				return nil
			}
			rel, err := filepath.Rel(project.GitHub, path)
			if err != nil {
				return err
			}
			orphans = append(orphans, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, errors.WrapIO("walk", dir, err)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// Rescan refreshes the status of specific keys in place. Collection keys
// are ignored.
func Rescan(project *paths.Project, catalog *assets.Catalog, result *Result, keys ...assets.Key) error {
	for _, key := range keys {
		if key.Kind == paths.KindCollection {
			continue
		}
		asset, ok := catalog.Asset(key)
		if !ok {
			delete(result.Statuses, key)
			continue
		}
		status, err := classify(project, asset)
		if err != nil {
			return err
		}
		result.Statuses[key] = status
	}
	return nil
}

// classify compares the install location content against the catalog
// digest.
func classify(project *paths.Project, asset *assets.FileAsset) (Status, error) {
	installPath := project.InstallPath(asset.Kind, asset.Path)
	if installPath == "" {
		return StatusNotApplicable, nil
	}

	content, err := os.ReadFile(installPath)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusMissing, nil
		}
		return StatusMissing, errors.WrapIO("read", installPath, err)
	}

	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) == asset.Digest {
		return StatusSame, nil
	}
	return StatusDiff, nil
}
