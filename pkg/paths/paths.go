// Package paths resolves the directory layout of a project under management.
// All other packages receive absolute paths from here instead of deriving
// their own; the resolver is the single authority for where install
// directories, the enablement record, snapshot caches, and backups live.
package paths

import (
	"os"
	"path/filepath"

	"github.com/astrosteveo/copilot-tui/pkg/constants"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
)

// Workspace directory names under the project root.
const (
	// WorkspaceDir is the hidden per-project working directory.
	WorkspaceDir = ".awesome-copilot-tui"

	// GitHubDir is the directory assets are installed under.
	GitHubDir = ".github"

	// DataDirName holds the persisted enablement record.
	DataDirName = "data"

	// EnablementFile is the enablement record filename.
	EnablementFile = "enablement.json"
)

// Kind names the four asset categories. It is shared by every package that
// keys behavior off the category; paths owns it because install locations
// are the first thing that varies by kind.
type Kind string

// Asset kinds.
const (
	KindInstruction Kind = "instruction"
	KindPrompt      Kind = "prompt"
	KindChatMode    Kind = "chatmode"
	KindCollection  Kind = "collection"
)

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindInstruction, KindPrompt, KindChatMode, KindCollection:
		return true
	}
	return false
}

// FileKinds returns the kinds that materialize as installed files,
// in display order.
func FileKinds() []Kind {
	return []Kind{KindInstruction, KindPrompt, KindChatMode}
}

// Kinds returns all kinds in display order.
func Kinds() []Kind {
	return []Kind{KindInstruction, KindPrompt, KindChatMode, KindCollection}
}

// InstallDirName returns the directory name under .github for a file kind,
// or "" for collections, which never install.
func (k Kind) InstallDirName() string {
	switch k {
	case KindInstruction:
		return "instructions"
	case KindPrompt:
		return "prompts"
	case KindChatMode:
		return "chatmodes"
	}
	return ""
}

// Project holds the resolved absolute paths for a single project root.
type Project struct {
	// Root is the project root directory.
	Root string

	// GitHub is Root/.github.
	GitHub string

	// Instructions, Prompts, and ChatModes are the per-kind install
	// directories under GitHub.
	Instructions string
	Prompts      string
	ChatModes    string

	// Workspace is Root/.awesome-copilot-tui.
	Workspace string

	// Cache holds snapshot directories keyed by commit id.
	Cache string

	// Backups holds timestamped pre-modification copies of local files.
	Backups string

	// Data is Root/data.
	Data string

	// Enablement is the enablement record path, Data/enablement.json.
	Enablement string
}

// Resolve validates root and computes the project layout. The root must
// exist and be a directory; nothing else is required to exist yet.
func Resolve(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.NewConfigError("paths", "cannot resolve project root", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.NewConfigError("paths", "project root does not exist: "+abs, err)
	}
	if !info.IsDir() {
		return nil, errors.NewConfigError("paths", "project root is not a directory: "+abs, nil)
	}

	gh := filepath.Join(abs, GitHubDir)
	ws := filepath.Join(abs, WorkspaceDir)
	data := filepath.Join(abs, DataDirName)

	return &Project{
		Root:         abs,
		GitHub:       gh,
		Instructions: filepath.Join(gh, "instructions"),
		Prompts:      filepath.Join(gh, "prompts"),
		ChatModes:    filepath.Join(gh, "chatmodes"),
		Workspace:    ws,
		Cache:        filepath.Join(ws, "cache"),
		Backups:      filepath.Join(ws, "backups"),
		Data:         data,
		Enablement:   filepath.Join(data, EnablementFile),
	}, nil
}

// EnsureStructure creates the directories the project needs. Collections
// never get an install directory.
func (p *Project) EnsureStructure() error {
	dirs := []string{
		p.GitHub,
		p.Instructions,
		p.Prompts,
		p.ChatModes,
		p.Workspace,
		p.Cache,
		p.Backups,
		p.Data,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	return nil
}

// InstallDir returns the install directory for a file kind, or "" for
// collections.
func (p *Project) InstallDir(kind Kind) string {
	switch kind {
	case KindInstruction:
		return p.Instructions
	case KindPrompt:
		return p.Prompts
	case KindChatMode:
		return p.ChatModes
	}
	return ""
}

// InstallPath maps a catalog-relative asset path to its install location.
// The leading catalog segment (the per-kind directory inside the snapshot)
// is dropped; the remainder is preserved so nested catalog layouts keep
// their structure under the install directory.
func (p *Project) InstallPath(kind Kind, catalogPath string) string {
	dir := p.InstallDir(kind)
	if dir == "" {
		return ""
	}
	rel := catalogPath
	if i := indexSeparator(catalogPath); i >= 0 {
		rel = catalogPath[i+1:]
	}
	return filepath.Join(dir, filepath.FromSlash(rel))
}

// SnapshotDir returns the cache directory for a snapshot commit.
func (p *Project) SnapshotDir(commit string) string {
	return filepath.Join(p.Cache, commit)
}

// indexSeparator finds the first slash in a catalog-relative path.
// Catalog paths always use forward slashes.
func indexSeparator(path string) int {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
