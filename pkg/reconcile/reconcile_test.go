package reconcile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/enablement"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
	"github.com/astrosteveo/copilot-tui/pkg/reconcile"
	"github.com/astrosteveo/copilot-tui/pkg/scan"
)

// buildCatalog writes the given files into a snapshot directory and builds
// a catalog from them.
func buildCatalog(t *testing.T, files map[string]string) *assets.Catalog {
	t.Helper()

	root := t.TempDir()
	for relPath, content := range files {
		path := filepath.Join(root, filepath.FromSlash(relPath))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)
	require.Empty(t, warnings)
	return catalog
}

func emptyScan() *scan.Result {
	return &scan.Result{Statuses: make(map[assets.Key]scan.Status)}
}

var inheritanceFiles = map[string]string{
	"instructions/go.instructions.md": "# Go\n",
	"instructions/py.instructions.md": "# Py\n",
	"collections/alpha.collection.yml": `id: alpha
items:
  - kind: instruction
    path: instructions/go.instructions.md
`,
	"collections/beta.collection.yml": `id: beta
items:
  - kind: instruction
    path: instructions/go.instructions.md
`,
}

func TestProjectEffectivePrecedence(t *testing.T) {
	catalog := buildCatalog(t, inheritanceFiles)
	goKey := assets.Key{Kind: paths.KindInstruction, Path: "instructions/go.instructions.md"}
	pyKey := assets.Key{Kind: paths.KindInstruction, Path: "instructions/py.instructions.md"}
	alphaKey := assets.Key{Kind: paths.KindCollection, Path: "collections/alpha.collection.yml"}
	betaKey := assets.Key{Kind: paths.KindCollection, Path: "collections/beta.collection.yml"}

	t.Run("no decisions means disabled", func(t *testing.T) {
		proj := reconcile.Project(catalog, enablement.NewRecord(), emptyScan())
		view, ok := proj.View(goKey)
		require.True(t, ok)
		assert.Nil(t, view.Explicit)
		assert.Nil(t, view.Inherited)
		assert.False(t, view.Effective)
	})

	t.Run("explicit wins over inherited", func(t *testing.T) {
		record := enablement.NewRecord()
		record.SetExplicit(goKey, false)
		record.SetExplicit(alphaKey, true)

		proj := reconcile.Project(catalog, record, emptyScan())
		view, ok := proj.View(goKey)
		require.True(t, ok)
		require.NotNil(t, view.Explicit)
		assert.False(t, *view.Explicit)
		require.NotNil(t, view.Inherited)
		assert.True(t, view.Inherited.Value)
		assert.False(t, view.Effective)
	})

	t.Run("inheritance follows first collection in id order", func(t *testing.T) {
		record := enablement.NewRecord()
		record.SetExplicit(alphaKey, false)
		record.SetExplicit(betaKey, true)

		proj := reconcile.Project(catalog, record, emptyScan())
		view, ok := proj.View(goKey)
		require.True(t, ok)
		require.NotNil(t, view.Inherited)
		assert.Equal(t, "alpha", view.Inherited.CollectionID)
		assert.False(t, view.Effective)
	})

	t.Run("collections without decisions are skipped for inheritance", func(t *testing.T) {
		record := enablement.NewRecord()
		record.SetExplicit(betaKey, true)

		proj := reconcile.Project(catalog, record, emptyScan())
		view, ok := proj.View(goKey)
		require.True(t, ok)
		require.NotNil(t, view.Inherited)
		assert.Equal(t, "beta", view.Inherited.CollectionID)
		assert.True(t, view.Effective)
	})

	t.Run("non-members never inherit", func(t *testing.T) {
		record := enablement.NewRecord()
		record.SetExplicit(alphaKey, true)

		proj := reconcile.Project(catalog, record, emptyScan())
		view, ok := proj.View(pyKey)
		require.True(t, ok)
		assert.Nil(t, view.Inherited)
		assert.False(t, view.Effective)
	})
}

func TestProjectCollectionRollups(t *testing.T) {
	catalog := buildCatalog(t, map[string]string{
		"instructions/go.instructions.md": "# Go\n",
		"prompts/review.prompt.md":        "# Review\n",
		"collections/dev.collection.yml": `id: dev
items:
  - kind: instruction
    path: instructions/go.instructions.md
  - kind: prompt
    path: prompts/review.prompt.md
`,
	})
	devKey := assets.Key{Kind: paths.KindCollection, Path: "collections/dev.collection.yml"}

	record := enablement.NewRecord()
	record.SetExplicit(assets.Key{Kind: paths.KindInstruction, Path: "instructions/go.instructions.md"}, true)

	scanned := emptyScan()
	scanned.Statuses[assets.Key{Kind: paths.KindPrompt, Path: "prompts/review.prompt.md"}] = scan.StatusDiff

	proj := reconcile.Project(catalog, record, scanned)
	view, ok := proj.View(devKey)
	require.True(t, ok)
	assert.Equal(t, 2, view.MemberCount)
	assert.Equal(t, 1, view.EnabledCount)
	assert.Equal(t, 1, view.DiffCount)
	assert.Equal(t, scan.StatusNotApplicable, view.Local)

	// A collection with no explicit decision is off; it never inherits.
	assert.Nil(t, view.Explicit)
	assert.False(t, view.Effective)
}

func TestProjectOrphans(t *testing.T) {
	catalog := buildCatalog(t, map[string]string{
		"instructions/go.instructions.md": "# Go\n",
	})

	record := enablement.NewRecord()
	record.SetExplicit(assets.Key{Kind: paths.KindInstruction, Path: "instructions/go.instructions.md"}, true)
	record.SetExplicit(assets.Key{Kind: paths.KindPrompt, Path: "prompts/gone.prompt.md"}, true)
	record.SetExplicit(assets.Key{Kind: paths.KindChatMode, Path: "chatmodes/gone.chatmode.md"}, false)

	proj := reconcile.Project(catalog, record, emptyScan())
	require.Len(t, proj.Orphans, 2)
	assert.Equal(t, "chatmode:chatmodes/gone.chatmode.md", proj.Orphans[0].String())
	assert.Equal(t, "prompt:prompts/gone.prompt.md", proj.Orphans[1].String())
}

func TestProjectDisplayOrder(t *testing.T) {
	catalog := buildCatalog(t, map[string]string{
		"instructions/b.instructions.md": "b\n",
		"instructions/a.instructions.md": "a\n",
		"prompts/p.prompt.md":            "p\n",
		"chatmodes/c.chatmode.md":        "c\n",
		"collections/z.collection.yml":   "id: z\nitems: []\n",
	})

	proj := reconcile.Project(catalog, enablement.NewRecord(), emptyScan())

	var got []string
	for _, view := range proj.Views {
		got = append(got, view.Key.String())
	}
	assert.Equal(t, []string{
		"instruction:instructions/a.instructions.md",
		"instruction:instructions/b.instructions.md",
		"prompt:prompts/p.prompt.md",
		"chatmode:chatmodes/c.chatmode.md",
		"collection:collections/z.collection.yml",
	}, got)
}

func TestProjectDeterminism(t *testing.T) {
	catalog := buildCatalog(t, inheritanceFiles)

	record := enablement.NewRecord()
	record.SetExplicit(assets.Key{Kind: paths.KindCollection, Path: "collections/alpha.collection.yml"}, true)

	first := reconcile.Project(catalog, record, emptyScan())
	second := reconcile.Project(catalog, record, emptyScan())

	require.Len(t, second.Views, len(first.Views))
	for i, view := range first.Views {
		assert.Equal(t, view.Key, second.Views[i].Key)
		assert.Equal(t, view.Effective, second.Views[i].Effective)
	}
}

func TestFilter(t *testing.T) {
	catalog := buildCatalog(t, map[string]string{
		"instructions/go-style.instructions.md": `---
description: Style rules
tags: [golang]
---
# Go Style
`,
		"prompts/review.prompt.md": "# Code Review\n",
	})

	proj := reconcile.Project(catalog, enablement.NewRecord(), emptyScan())

	t.Run("empty query matches all", func(t *testing.T) {
		assert.Len(t, proj.Filter(""), 2)
	})

	t.Run("matches name case-insensitively", func(t *testing.T) {
		views := proj.Filter("code REVIEW")
		require.Len(t, views, 1)
		assert.Equal(t, paths.KindPrompt, views[0].Key.Kind)
	})

	t.Run("matches tags", func(t *testing.T) {
		views := proj.Filter("golang")
		require.Len(t, views, 1)
		assert.Equal(t, "go-style", views[0].Slug)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, proj.Filter("nothing-here"))
	})
}
