package copilottui_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	copilottui "github.com/astrosteveo/copilot-tui"
	"github.com/astrosteveo/copilot-tui/internal/transport"
	"github.com/astrosteveo/copilot-tui/pkg/assets"
	pkgerrors "github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
	"github.com/astrosteveo/copilot-tui/pkg/scan"
	"github.com/astrosteveo/copilot-tui/pkg/upstream"
)

const testCommit = "0123456789abcdef0123456789abcdef01234567"

var catalogFiles = map[string]string{
	"instructions/security.instructions.md": `---
description: Security review rules
tags: [security]
---
# Security

Always validate input.
`,
	"prompts/review.prompt.md": "# Code Review\n",
	"collections/secure-dev.collection.yml": `id: secure-dev
name: Secure Development
items:
  - kind: instruction
    path: instructions/security.instructions.md
  - kind: prompt
    path: prompts/review.prompt.md
`,
}

// newUpstream serves a commits API response and a zip archive of the
// catalog files.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for relPath, content := range catalogFiles {
		f, err := w.Create("awesome-copilot-main/" + relPath)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	archive := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/github/awesome-copilot/commits/main", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sha": "` + testCommit + `"}`))
	})
	mux.HandleFunc("/archive", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func fixedClock() utc.Time {
	return utc.Time{Time: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func openSession(t *testing.T, root string, server *httptest.Server) copilottui.Session {
	t.Helper()

	session, err := copilottui.Open(context.Background(), root,
		copilottui.WithClock(fixedClock),
		copilottui.WithSyncerOptions(
			upstream.WithClient(transport.New(&transport.NoAuth{})),
			upstream.WithAPIBase(server.URL),
			upstream.WithArchiveURL(server.URL+"/archive"),
			upstream.WithClock(fixedClock),
		),
	)
	require.NoError(t, err)
	return session
}

var securityKey = assets.Key{Kind: paths.KindInstruction, Path: "instructions/security.instructions.md"}

func TestOpen(t *testing.T) {
	root := t.TempDir()
	session := openSession(t, root, newUpstream(t))

	assert.Equal(t, testCommit, session.Snapshot().Commit)
	assert.False(t, session.Dirty())
	assert.Empty(t, session.Warnings())

	views := session.Views()
	require.Len(t, views, 3)

	view, ok := session.View(securityKey)
	require.True(t, ok)
	assert.Equal(t, "Security", view.Name)
	assert.False(t, view.Effective)
	assert.Equal(t, scan.StatusMissing, view.Local)
	assert.Equal(t, []string{"secure-dev"}, view.Collections)
}

func TestOpenWithoutUpstreamOrCache(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := copilottui.Open(context.Background(), t.TempDir(),
		copilottui.WithSyncerOptions(
			upstream.WithClient(transport.New(&transport.NoAuth{})),
			upstream.WithAPIBase(server.URL),
			upstream.WithArchiveURL(server.URL+"/archive"),
		),
	)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsStartup(err))
}

func TestToggleAndSave(t *testing.T) {
	root := t.TempDir()
	session := openSession(t, root, newUpstream(t))

	require.NoError(t, session.Toggle(securityKey))
	assert.True(t, session.Dirty())

	view, ok := session.View(securityKey)
	require.True(t, ok)
	assert.True(t, view.Effective)
	assert.Equal(t, scan.StatusSame, view.Local)

	installed := filepath.Join(root, ".github", "instructions", "security.instructions.md")
	_, err := os.Stat(installed)
	require.NoError(t, err)

	require.NoError(t, session.Save())
	assert.False(t, session.Dirty())

	content, err := os.ReadFile(filepath.Join(root, "data", "enablement.json"))
	require.NoError(t, err)

	var doc struct {
		SchemaVersion int             `json:"schema_version"`
		Entries       map[string]bool `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Equal(t, 1, doc.SchemaVersion)
	assert.Equal(t, map[string]bool{
		"instruction:instructions/security.instructions.md": true,
	}, doc.Entries)
}

func TestToggleCollection(t *testing.T) {
	root := t.TempDir()
	session := openSession(t, root, newUpstream(t))

	require.NoError(t, session.ToggleCollection("secure-dev", true))

	for _, rel := range []string{
		filepath.Join("instructions", "security.instructions.md"),
		filepath.Join("prompts", "review.prompt.md"),
	} {
		_, err := os.Stat(filepath.Join(root, ".github", rel))
		assert.NoError(t, err, rel)
	}

	colKey := assets.Key{Kind: paths.KindCollection, Path: "collections/secure-dev.collection.yml"}
	view, ok := session.View(colKey)
	require.True(t, ok)
	assert.True(t, view.Effective)
	assert.Equal(t, 2, view.EnabledCount)
}

func TestOrphanEntries(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	seed := `{"schema_version": 1, "entries": {"prompt:prompts/gone.prompt.md": true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "enablement.json"), []byte(seed), 0o644))

	session := openSession(t, root, newUpstream(t))

	orphans := session.Orphans()
	require.Len(t, orphans, 1)
	assert.Equal(t, "prompt:prompts/gone.prompt.md", orphans[0].String())

	assert.Equal(t, 1, session.CleanupOrphans())
	assert.Empty(t, session.Orphans())
	assert.True(t, session.Dirty())
}

func TestOrphanFiles(t *testing.T) {
	root := t.TempDir()
	stray := filepath.Join(root, ".github", "prompts", "stray.prompt.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(stray), 0o755))
	require.NoError(t, os.WriteFile(stray, []byte("left behind\n"), 0o644))

	session := openSession(t, root, newUpstream(t))
	assert.Equal(t, []string{"prompts/stray.prompt.md"}, session.OrphanFiles())
}

func TestFilter(t *testing.T) {
	session := openSession(t, t.TempDir(), newUpstream(t))

	session.Filter("security")
	views := session.Views()
	require.Len(t, views, 1)
	assert.Equal(t, securityKey, views[0].Key)

	session.ClearFilter()
	assert.Len(t, session.Views(), 3)
}

func TestReset(t *testing.T) {
	root := t.TempDir()
	session := openSession(t, root, newUpstream(t))

	require.NoError(t, session.ToggleCollection("secure-dev", true))
	require.NoError(t, session.Reset())

	_, err := os.Stat(filepath.Join(root, ".github", "instructions", "security.instructions.md"))
	assert.True(t, os.IsNotExist(err))

	view, ok := session.View(securityKey)
	require.True(t, ok)
	assert.Nil(t, view.Explicit)
	assert.False(t, view.Effective)
	assert.Equal(t, scan.StatusMissing, view.Local)
}
