package upstream

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentstation/utc"

	"github.com/astrosteveo/copilot-tui/pkg/constants"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// sidecarSuffix marks the per-snapshot metadata file in the cache
// directory.
const sidecarSuffix = ".fetched_at"

// Snapshot is one extracted upstream tree in the cache.
type Snapshot struct {
	// Commit identifies the upstream commit the tree was taken from.
	Commit string

	// Root is the absolute path of the extracted tree.
	Root string

	// FetchedAt is when the tree was downloaded or last revalidated.
	FetchedAt utc.Time
}

// sidecar is the JSON metadata stored next to each snapshot directory.
type sidecar struct {
	Commit    string   `json:"commit"`
	FetchedAt utc.Time `json:"fetched_at"`
}

// sidecarPath returns the metadata path for a commit.
func sidecarPath(project *paths.Project, commit string) string {
	return filepath.Join(project.Cache, commit+sidecarSuffix)
}

// writeSidecar records the fetch time for a snapshot directory.
func writeSidecar(project *paths.Project, commit string, fetchedAt utc.Time) error {
	content, err := json.Marshal(sidecar{Commit: commit, FetchedAt: fetchedAt})
	if err != nil {
		return errors.WrapIO("write", sidecarPath(project, commit), err)
	}
	content = append(content, '\n')
	if err := os.WriteFile(sidecarPath(project, commit), content, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", sidecarPath(project, commit), err)
	}
	return nil
}

// readSidecar loads the fetch metadata for a commit, if any.
func readSidecar(project *paths.Project, commit string) (*sidecar, error) {
	content, err := os.ReadFile(sidecarPath(project, commit))
	if err != nil {
		return nil, err
	}
	var sc sidecar
	if err := json.Unmarshal(content, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// listCached returns every usable cached snapshot, newest first. A
// snapshot directory without a readable sidecar is skipped. Prune works
// from this list, so it does not remove such directories either.
func listCached(project *paths.Project) []*Snapshot {
	entries, err := os.ReadDir(project.Cache)
	if err != nil {
		return nil
	}

	var snapshots []*Snapshot
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasSuffix(entry.Name(), sidecarSuffix) {
			continue
		}
		commit := entry.Name()
		sc, err := readSidecar(project, commit)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, &Snapshot{
			Commit:    commit,
			Root:      project.SnapshotDir(commit),
			FetchedAt: sc.FetchedAt,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].FetchedAt.After(snapshots[j].FetchedAt)
	})
	return snapshots
}
