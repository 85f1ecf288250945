package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
	"github.com/astrosteveo/copilot-tui/pkg/scan"
)

// fixture builds a snapshot catalog and a resolved project layout.
type fixture struct {
	project  *paths.Project
	catalog  *assets.Catalog
	snapshot string
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()

	snapshot := t.TempDir()
	for relPath, content := range files {
		path := filepath.Join(snapshot, filepath.FromSlash(relPath))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	catalog, warnings, err := assets.Build(snapshot)
	require.NoError(t, err)
	require.Empty(t, warnings)

	project, err := paths.Resolve(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, project.EnsureStructure())

	return &fixture{project: project, catalog: catalog, snapshot: snapshot}
}

// install places content at an asset's install location.
func (f *fixture) install(t *testing.T, kind paths.Kind, catalogPath, content string) {
	t.Helper()
	path := f.project.InstallPath(kind, catalogPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanStatuses(t *testing.T) {
	f := newFixture(t, map[string]string{
		"instructions/go.instructions.md": "# Go\n",
		"prompts/review.prompt.md":        "# Review\n",
		"chatmodes/planner.chatmode.md":   "# Planner\n",
		"collections/dev.collection.yml":  "id: dev\nitems: []\n",
	})

	f.install(t, paths.KindInstruction, "instructions/go.instructions.md", "# Go\n")
	f.install(t, paths.KindPrompt, "prompts/review.prompt.md", "locally edited\n")

	result, err := scan.Scan(f.project, f.catalog)
	require.NoError(t, err)

	assert.Equal(t, scan.StatusSame, result.Status(assets.Key{Kind: paths.KindInstruction, Path: "instructions/go.instructions.md"}))
	assert.Equal(t, scan.StatusDiff, result.Status(assets.Key{Kind: paths.KindPrompt, Path: "prompts/review.prompt.md"}))
	assert.Equal(t, scan.StatusMissing, result.Status(assets.Key{Kind: paths.KindChatMode, Path: "chatmodes/planner.chatmode.md"}))

	// Collections are never classified.
	assert.Equal(t, scan.StatusNotApplicable, result.Status(assets.Key{Kind: paths.KindCollection, Path: "collections/dev.collection.yml"}))
}

func TestScanOrphanFiles(t *testing.T) {
	f := newFixture(t, map[string]string{
		"instructions/go.instructions.md": "# Go\n",
	})

	f.install(t, paths.KindInstruction, "instructions/go.instructions.md", "# Go\n")

	stray := filepath.Join(f.project.Instructions, "stray.instructions.md")
	require.NoError(t, os.WriteFile(stray, []byte("left behind\n"), 0o644))

	nested := filepath.Join(f.project.Prompts, "team", "old.prompt.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(nested), 0o755))
	require.NoError(t, os.WriteFile(nested, []byte("old\n"), 0o644))

	result, err := scan.Scan(f.project, f.catalog)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"instructions/stray.instructions.md",
		"prompts/team/old.prompt.md",
	}, result.OrphanFiles)
}

func TestScanMissingInstallDirs(t *testing.T) {
	f := newFixture(t, map[string]string{
		"instructions/go.instructions.md": "# Go\n",
	})

	// Scanning tolerates install directories that were never created.
	require.NoError(t, os.RemoveAll(f.project.Prompts))
	require.NoError(t, os.RemoveAll(f.project.ChatModes))

	result, err := scan.Scan(f.project, f.catalog)
	require.NoError(t, err)
	assert.Equal(t, scan.StatusMissing, result.Status(assets.Key{Kind: paths.KindInstruction, Path: "instructions/go.instructions.md"}))
	assert.Empty(t, result.OrphanFiles)
}

func TestRescan(t *testing.T) {
	f := newFixture(t, map[string]string{
		"instructions/go.instructions.md": "# Go\n",
		"prompts/review.prompt.md":        "# Review\n",
	})

	result, err := scan.Scan(f.project, f.catalog)
	require.NoError(t, err)

	goKey := assets.Key{Kind: paths.KindInstruction, Path: "instructions/go.instructions.md"}
	reviewKey := assets.Key{Kind: paths.KindPrompt, Path: "prompts/review.prompt.md"}
	assert.Equal(t, scan.StatusMissing, result.Status(goKey))

	f.install(t, paths.KindInstruction, "instructions/go.instructions.md", "# Go\n")
	f.install(t, paths.KindPrompt, "prompts/review.prompt.md", "# Review\n")

	require.NoError(t, scan.Rescan(f.project, f.catalog, result, goKey))

	// Only the requested key is refreshed.
	assert.Equal(t, scan.StatusSame, result.Status(goKey))
	assert.Equal(t, scan.StatusMissing, result.Status(reviewKey))

	t.Run("collection keys are ignored", func(t *testing.T) {
		colKey := assets.Key{Kind: paths.KindCollection, Path: "collections/dev.collection.yml"}
		require.NoError(t, scan.Rescan(f.project, f.catalog, result, colKey))
		assert.Equal(t, scan.StatusNotApplicable, result.Status(colKey))
	})

	t.Run("uncataloged keys are dropped", func(t *testing.T) {
		ghost := assets.Key{Kind: paths.KindInstruction, Path: "instructions/gone.instructions.md"}
		result.Statuses[ghost] = scan.StatusSame
		require.NoError(t, scan.Rescan(f.project, f.catalog, result, ghost))
		_, ok := result.Statuses[ghost]
		assert.False(t, ok)
	})
}
