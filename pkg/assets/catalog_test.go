package assets_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrosteveo/copilot-tui/pkg/assets"
	pkgerrors "github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// writeSnapshotFile creates one file under the snapshot root, making parent
// directories as needed.
func writeSnapshotFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuildFileAssets(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "instructions/go-style.instructions.md", `---
description: Go style rules
tags:
  - go
  - style
applyTo: "**/*.go"
---
# Go Style Guide

Keep it simple.
`)
	writeSnapshotFile(t, root, "prompts/code-review.prompt.md", `---
description: Review a change
mode: agent
tools: [search, edit]
---
Review the diff carefully.
`)
	writeSnapshotFile(t, root, "chatmodes/planner.chatmode.md", `# Planner

Plan before acting.
`)

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	t.Run("instruction metadata", func(t *testing.T) {
		asset, ok := catalog.Asset(assets.Key{Kind: paths.KindInstruction, Path: "instructions/go-style.instructions.md"})
		require.True(t, ok)
		assert.Equal(t, "go-style", asset.Slug)
		assert.Equal(t, "Go Style Guide", asset.Name)
		assert.Equal(t, "Go style rules", asset.Description)
		assert.Equal(t, []string{"go", "style"}, []string(asset.Tags))
		assert.Equal(t, "**/*.go", asset.ApplyTo)
	})

	t.Run("prompt metadata", func(t *testing.T) {
		asset, ok := catalog.Asset(assets.Key{Kind: paths.KindPrompt, Path: "prompts/code-review.prompt.md"})
		require.True(t, ok)
		assert.Equal(t, "agent", asset.Mode)
		assert.Equal(t, []string{"search", "edit"}, asset.Tools)
	})

	t.Run("headerless chat mode", func(t *testing.T) {
		asset, ok := catalog.Asset(assets.Key{Kind: paths.KindChatMode, Path: "chatmodes/planner.chatmode.md"})
		require.True(t, ok)
		assert.Equal(t, "Planner", asset.Name)
		assert.Empty(t, asset.Description)
	})

	t.Run("digest covers full content", func(t *testing.T) {
		asset, ok := catalog.Asset(assets.Key{Kind: paths.KindChatMode, Path: "chatmodes/planner.chatmode.md"})
		require.True(t, ok)

		content, err := os.ReadFile(filepath.Join(root, "chatmodes", "planner.chatmode.md"))
		require.NoError(t, err)
		sum := sha256.Sum256(content)
		assert.Equal(t, hex.EncodeToString(sum[:]), asset.Digest)
	})
}

func TestBuildDefaults(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "instructions/bare.instructions.md", "No header, no heading.\n")

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	asset, ok := catalog.Asset(assets.Key{Kind: paths.KindInstruction, Path: "instructions/bare.instructions.md"})
	require.True(t, ok)
	assert.Equal(t, "Bare", asset.Name)
	assert.Equal(t, assets.DefaultApplyTo, asset.ApplyTo)
}

func TestBuildDefectiveHeader(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "prompts/broken.prompt.md", `---
description: "unterminated
---
# Broken Prompt
`)

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	var metaWarn *pkgerrors.MetadataWarning
	require.ErrorAs(t, warnings[0], &metaWarn)
	assert.Equal(t, "prompts/broken.prompt.md", metaWarn.Path)

	// The asset survives with default metadata.
	asset, ok := catalog.Asset(assets.Key{Kind: paths.KindPrompt, Path: "prompts/broken.prompt.md"})
	require.True(t, ok)
	assert.Equal(t, "Broken Prompt", asset.Name)
	assert.Empty(t, asset.Description)
}

func TestBuildCollections(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "instructions/go-style.instructions.md", "# Go Style\n")
	writeSnapshotFile(t, root, "prompts/code-review.prompt.md", "# Code Review\n")
	writeSnapshotFile(t, root, "collections/go-dev.collection.yml", `id: go-dev
name: Go Development
description: Everything for Go work
tags: [go]
items:
  - kind: instruction
    path: instructions/go-style.instructions.md
  - kind: prompts
    path: prompts/code-review.prompt.md
  - kind: instruction
    path: instructions/missing.instructions.md
`)

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)

	col, ok := catalog.CollectionByID("go-dev")
	require.True(t, ok)
	assert.Equal(t, "Go Development", col.Name)
	require.Len(t, col.Items, 2)
	assert.Equal(t, paths.KindPrompt, col.Items[1].Kind)

	require.Len(t, warnings, 1)
	var colWarn *pkgerrors.CollectionWarning
	require.ErrorAs(t, warnings[0], &colWarn)
	assert.Equal(t, "go-dev", colWarn.CollectionID)
	assert.Equal(t, "instructions/missing.instructions.md", colWarn.ItemPath)

	t.Run("membership", func(t *testing.T) {
		ids := catalog.Membership(assets.Key{Kind: paths.KindInstruction, Path: "instructions/go-style.instructions.md"})
		assert.Equal(t, []string{"go-dev"}, ids)
	})

	t.Run("has collection by path key", func(t *testing.T) {
		assert.True(t, catalog.Has(assets.Key{Kind: paths.KindCollection, Path: "collections/go-dev.collection.yml"}))
		assert.False(t, catalog.Has(assets.Key{Kind: paths.KindCollection, Path: "collections/other.collection.yml"}))
	})
}

func TestBuildCollectionDefaults(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "collections/web-dev.collection.yml", "items: []\n")

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	col, ok := catalog.CollectionByID("web-dev")
	require.True(t, ok)
	assert.Equal(t, "web-dev", col.ID)
	assert.Equal(t, "Web Dev", col.Name)
}

func TestBuildDuplicateCollectionID(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "collections/a.collection.yml", "id: shared\nitems: []\n")
	writeSnapshotFile(t, root, "collections/b.collection.yml", "id: shared\nitems: []\n")

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)
	require.Len(t, catalog.Collections, 1)

	require.Len(t, warnings, 1)
	var colWarn *pkgerrors.CollectionWarning
	require.ErrorAs(t, warnings[0], &colWarn)
	assert.Equal(t, "duplicate collection id", colWarn.Reason)
}

func TestBuildUnsupportedMemberKind(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "collections/odd.collection.yml", `id: odd
items:
  - kind: collection
    path: collections/other.collection.yml
  - kind: widget
    path: widgets/thing.md
`)

	catalog, warnings, err := assets.Build(root)
	require.NoError(t, err)

	col, ok := catalog.CollectionByID("odd")
	require.True(t, ok)
	assert.Empty(t, col.Items)
	assert.Len(t, warnings, 2)
}

func TestBuildOrdering(t *testing.T) {
	root := t.TempDir()

	writeSnapshotFile(t, root, "instructions/zeta.instructions.md", "z\n")
	writeSnapshotFile(t, root, "instructions/alpha.instructions.md", "a\n")
	writeSnapshotFile(t, root, "instructions/nested/mid.instructions.md", "m\n")

	catalog, _, err := assets.Build(root)
	require.NoError(t, err)

	var got []string
	for _, asset := range catalog.Instructions {
		got = append(got, asset.Path)
	}
	assert.Equal(t, []string{
		"instructions/alpha.instructions.md",
		"instructions/nested/mid.instructions.md",
		"instructions/zeta.instructions.md",
	}, got)
}

func TestBuildEmptySnapshot(t *testing.T) {
	catalog, warnings, err := assets.Build(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Empty(t, catalog.Instructions)
	assert.Empty(t, catalog.Prompts)
	assert.Empty(t, catalog.ChatModes)
	assert.Empty(t, catalog.Collections)
}

func TestParseKey(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		key, err := assets.ParseKey("instruction:instructions/go.instructions.md")
		require.NoError(t, err)
		assert.Equal(t, paths.KindInstruction, key.Kind)
		assert.Equal(t, "instructions/go.instructions.md", key.Path)
		assert.Equal(t, "instruction:instructions/go.instructions.md", key.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{"", "no-colon", "widget:path.md", "instruction:"} {
			_, err := assets.ParseKey(raw)
			assert.Error(t, err, raw)
		}
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Go Style", assets.DisplayName("go-style"))
	assert.Equal(t, "Code Review", assets.DisplayName("code_review"))
}
