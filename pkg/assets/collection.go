package assets

import (
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// Collection is a cataloged bundle of file assets described by a manifest.
type Collection struct {
	// Path is the manifest's catalog-relative path.
	Path string

	// ID is the manifest id, falling back to the slug when absent.
	ID string

	// Slug is the manifest filename stem.
	Slug string

	// Name is the display name.
	Name string

	// Description from the manifest.
	Description string

	// Tags from the manifest.
	Tags []string

	// Items are the resolved member references, in manifest order.
	Items []CollectionItem
}

// Key returns the collection's identity key.
func (c *Collection) Key() Key {
	return Key{Kind: paths.KindCollection, Path: c.Path}
}

// CollectionItem is a single member reference inside a collection manifest.
type CollectionItem struct {
	Kind paths.Kind
	Path string
}

// Key returns the member's identity key.
func (i CollectionItem) Key() Key {
	return Key{Kind: i.Kind, Path: i.Path}
}

// collectionManifest is the YAML shape of a collection file.
type collectionManifest struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Tags        tagList        `yaml:"tags"`
	Items       []manifestItem `yaml:"items"`
}

type manifestItem struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

// itemKinds normalizes the member kind spellings that appear in upstream
// manifests to the canonical kind names.
var itemKinds = map[string]paths.Kind{
	"instruction":  paths.KindInstruction,
	"instructions": paths.KindInstruction,
	"prompt":       paths.KindPrompt,
	"prompts":      paths.KindPrompt,
	"chatmode":     paths.KindChatMode,
	"chatmodes":    paths.KindChatMode,
	"chat-mode":    paths.KindChatMode,
}

// parseCollection decodes a collection manifest. Member kinds that do not
// normalize and empty member paths are kept here; the catalog builder
// validates membership against the cataloged file assets and records
// warnings for anything that does not resolve.
func parseCollection(relPath string, content []byte) (*Collection, error) {
	var manifest collectionManifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return nil, errors.NewParseError("yaml", relPath, err.Error(), err)
	}

	slug := slugFromPath(relPath, CollectionSuffix)

	col := &Collection{
		Path:        relPath,
		ID:          manifest.ID,
		Slug:        slug,
		Name:        manifest.Name,
		Description: manifest.Description,
		Tags:        manifest.Tags,
	}
	if col.ID == "" {
		col.ID = slug
	}
	if col.Name == "" {
		col.Name = DisplayName(slug)
	}

	for _, item := range manifest.Items {
		kind, ok := itemKinds[strings.ToLower(strings.TrimSpace(item.Kind))]
		if !ok {
			kind = paths.Kind(strings.ToLower(strings.TrimSpace(item.Kind)))
		}
		col.Items = append(col.Items, CollectionItem{
			Kind: kind,
			Path: strings.TrimSpace(item.Path),
		})
	}

	return col, nil
}
