package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// DefaultApplyTo is the glob assigned to instructions that declare no
// applyTo header.
const DefaultApplyTo = "**"

// kindSuffixes maps a file kind to its filename suffix inside the catalog.
var kindSuffixes = map[paths.Kind]string{
	paths.KindInstruction: ".instructions.md",
	paths.KindPrompt:      ".prompt.md",
	paths.KindChatMode:    ".chatmode.md",
}

// CollectionSuffix is the manifest filename suffix for collections.
const CollectionSuffix = ".collection.yml"

// FileAsset is a cataloged instruction, prompt, or chat mode file.
type FileAsset struct {
	// Kind is the asset category.
	Kind paths.Kind

	// Path is the catalog-relative path, always forward-slashed.
	Path string

	// Slug is the filename stem with the kind suffix removed.
	Slug string

	// Name is the display name, taken from the first heading in the body
	// when present, else derived from the slug.
	Name string

	// Description from the structured header.
	Description string

	// Tags from the structured header.
	Tags []string

	// ApplyTo is the instruction scope glob. Instructions only.
	ApplyTo string

	// Mode is the prompt execution mode. Prompts only.
	Mode string

	// Tools lists tool names requested by the asset.
	Tools []string

	// Digest is the lowercase hex SHA-256 of the full file content.
	Digest string
}

// Key returns the asset's identity key.
func (a *FileAsset) Key() Key {
	return Key{Kind: a.Kind, Path: a.Path}
}

// parseFileAsset builds a FileAsset from raw content. A header parse
// failure is returned alongside a usable asset with default metadata.
func parseFileAsset(kind paths.Kind, relPath string, content []byte) (*FileAsset, error) {
	sum := sha256.Sum256(content)

	asset := &FileAsset{
		Kind:   kind,
		Path:   relPath,
		Slug:   slugFromPath(relPath, kindSuffixes[kind]),
		Digest: hex.EncodeToString(sum[:]),
	}

	header, body, hasHeader := splitFrontMatter(content)

	var headerErr error
	if hasHeader {
		fm, err := parseFrontMatter(header)
		if err != nil {
			headerErr = err
		} else {
			asset.Description = fm.Description
			asset.Tags = fm.Tags
			asset.ApplyTo = fm.ApplyTo
			asset.Mode = fm.Mode
			asset.Tools = fm.Tools
		}
	}

	if kind == paths.KindInstruction && asset.ApplyTo == "" {
		asset.ApplyTo = DefaultApplyTo
	}

	if title := firstHeading(body); title != "" {
		asset.Name = title
	} else {
		asset.Name = DisplayName(asset.Slug)
	}

	return asset, headerErr
}

// slugFromPath derives the slug from the filename, stripping the kind
// suffix when present and the extension otherwise.
func slugFromPath(relPath, suffix string) string {
	base := relPath
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if suffix != "" && strings.HasSuffix(base, suffix) {
		return base[:len(base)-len(suffix)]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

var titleCaser = cases.Title(language.English)

// DisplayName converts a slug into a human-readable title.
func DisplayName(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return titleCaser.String(words)
}
