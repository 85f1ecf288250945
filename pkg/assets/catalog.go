// Package assets builds the immutable asset catalog from an upstream
// snapshot directory. The catalog indexes instructions, prompts, chat
// modes, and collections by key and records which collections each file
// asset belongs to. Defective inputs degrade to warnings, never to a
// failed build: an unparsable header keeps the asset with default
// metadata, and an unresolved collection member is dropped.
package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// catalogDirs maps each kind to its directory under the snapshot root.
var catalogDirs = map[paths.Kind]string{
	paths.KindInstruction: "instructions",
	paths.KindPrompt:      "prompts",
	paths.KindChatMode:    "chatmodes",
	paths.KindCollection:  "collections",
}

// Catalog is the read-only index of all assets in one snapshot.
type Catalog struct {
	// Instructions, Prompts, and ChatModes are sorted by path.
	Instructions []*FileAsset
	Prompts      []*FileAsset
	ChatModes    []*FileAsset

	// Collections is sorted by path.
	Collections []*Collection

	byKey         map[Key]*FileAsset
	collectionsBy map[string]*Collection
	membership    map[Key][]string
}

// Build walks the snapshot root and constructs the catalog. Recoverable
// defects are returned as warnings; only an unreadable tree fails the
// build.
func Build(snapshotRoot string) (*Catalog, []error, error) {
	cat := &Catalog{
		byKey:         make(map[Key]*FileAsset),
		collectionsBy: make(map[string]*Collection),
		membership:    make(map[Key][]string),
	}

	var warnings []error

	for _, kind := range paths.FileKinds() {
		files, warns, err := loadKind(snapshotRoot, kind)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)

		for _, asset := range files {
			key := asset.Key()
			if _, dup := cat.byKey[key]; dup {
				continue
			}
			cat.byKey[key] = asset
			switch kind {
			case paths.KindInstruction:
				cat.Instructions = append(cat.Instructions, asset)
			case paths.KindPrompt:
				cat.Prompts = append(cat.Prompts, asset)
			case paths.KindChatMode:
				cat.ChatModes = append(cat.ChatModes, asset)
			}
		}
	}

	colWarns, err := cat.loadCollections(snapshotRoot)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, colWarns...)

	sortAssets(cat.Instructions)
	sortAssets(cat.Prompts)
	sortAssets(cat.ChatModes)
	sort.Slice(cat.Collections, func(i, j int) bool {
		return cat.Collections[i].Path < cat.Collections[j].Path
	})
	for key := range cat.membership {
		sort.Strings(cat.membership[key])
	}

	return cat, warnings, nil
}

// loadKind reads every file of one kind under the snapshot root.
func loadKind(snapshotRoot string, kind paths.Kind) ([]*FileAsset, []error, error) {
	dir := filepath.Join(snapshotRoot, catalogDirs[kind])
	suffix := kindSuffixes[kind]

	var files []*FileAsset
	var warnings []error

	err := walkCatalogDir(dir, suffix, func(relPath, absPath string) error {
		content, err := os.ReadFile(absPath)
		if err != nil {
			return errors.WrapIO("read", absPath, err)
		}

		catalogPath := catalogDirs[kind] + "/" + relPath
		asset, headerErr := parseFileAsset(kind, catalogPath, content)
		if headerErr != nil {
			warnings = append(warnings, &errors.MetadataWarning{Path: catalogPath, Err: headerErr})
		}
		files = append(files, asset)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return files, warnings, nil
}

// loadCollections reads collection manifests and resolves their members
// against the already cataloged file assets.
func (c *Catalog) loadCollections(snapshotRoot string) ([]error, error) {
	dir := filepath.Join(snapshotRoot, catalogDirs[paths.KindCollection])

	var warnings []error

	err := walkCatalogDir(dir, CollectionSuffix, func(relPath, absPath string) error {
		content, err := os.ReadFile(absPath)
		if err != nil {
			return errors.WrapIO("read", absPath, err)
		}

		catalogPath := catalogDirs[paths.KindCollection] + "/" + relPath
		col, parseErr := parseCollection(catalogPath, content)
		if parseErr != nil {
			warnings = append(warnings, &errors.MetadataWarning{Path: catalogPath, Err: parseErr})
			return nil
		}

		if _, dup := c.collectionsBy[col.ID]; dup {
			warnings = append(warnings, &errors.CollectionWarning{
				CollectionID: col.ID,
				ItemKind:     string(paths.KindCollection),
				ItemPath:     catalogPath,
				Reason:       "duplicate collection id",
			})
			return nil
		}

		var resolved []CollectionItem
		for _, item := range col.Items {
			if !item.Kind.Valid() || item.Kind == paths.KindCollection {
				warnings = append(warnings, &errors.CollectionWarning{
					CollectionID: col.ID,
					ItemKind:     string(item.Kind),
					ItemPath:     item.Path,
					Reason:       "unsupported member kind",
				})
				continue
			}
			if _, ok := c.byKey[item.Key()]; !ok {
				warnings = append(warnings, &errors.CollectionWarning{
					CollectionID: col.ID,
					ItemKind:     string(item.Kind),
					ItemPath:     item.Path,
					Reason:       "member not in catalog",
				})
				continue
			}
			resolved = append(resolved, item)
			c.membership[item.Key()] = append(c.membership[item.Key()], col.ID)
		}
		col.Items = resolved

		c.Collections = append(c.Collections, col)
		c.collectionsBy[col.ID] = col
		return nil
	})
	if err != nil {
		return nil, err
	}
	return warnings, nil
}

// walkCatalogDir visits every file under dir whose name carries the given
// suffix, passing forward-slashed dir-relative paths. A missing directory
// is an empty catalog section.
func walkCatalogDir(dir, suffix string, visit func(relPath, absPath string) error) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return visit(filepath.ToSlash(rel), path)
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("walk", dir, err)
	}
	return nil
}

func sortAssets(list []*FileAsset) {
	sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })
}

// Asset looks up a file asset by key.
func (c *Catalog) Asset(key Key) (*FileAsset, bool) {
	a, ok := c.byKey[key]
	return a, ok
}

// CollectionByID looks up a collection by its id.
func (c *Catalog) CollectionByID(id string) (*Collection, bool) {
	col, ok := c.collectionsBy[id]
	return col, ok
}

// Has reports whether key names any cataloged asset, file or collection.
func (c *Catalog) Has(key Key) bool {
	if key.Kind == paths.KindCollection {
		for _, col := range c.Collections {
			if col.Path == key.Path {
				return true
			}
		}
		return false
	}
	_, ok := c.byKey[key]
	return ok
}

// Membership returns the sorted ids of the collections containing the
// given file asset.
func (c *Catalog) Membership(key Key) []string {
	return c.membership[key]
}

// FilesOfKind returns the sorted file assets of one kind.
func (c *Catalog) FilesOfKind(kind paths.Kind) []*FileAsset {
	switch kind {
	case paths.KindInstruction:
		return c.Instructions
	case paths.KindPrompt:
		return c.Prompts
	case paths.KindChatMode:
		return c.ChatModes
	}
	return nil
}
