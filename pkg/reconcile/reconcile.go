// Package reconcile computes the derived view of the session: for every
// cataloged asset it joins the catalog entry, the explicit enablement
// decision, collection inheritance, and the local scan status into a
// single AssetView. Projection is a pure function of its three inputs;
// rebuilding from the same inputs always yields the same result.
package reconcile

import (
	"sort"
	"strings"

	"github.com/astrosteveo/copilot-tui/internal/utils/ptr"
	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/enablement"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
	"github.com/astrosteveo/copilot-tui/pkg/scan"
)

// Inherited records where an asset's inherited enablement value came from.
type Inherited struct {
	// CollectionID is the collection whose explicit value was inherited.
	CollectionID string

	// Value is the inherited enablement value.
	Value bool
}

// AssetView is the reconciled state of one asset.
type AssetView struct {
	Key         assets.Key
	Slug        string
	Name        string
	Description string
	Tags        []string

	// ApplyTo is set for instructions, Mode for prompts.
	ApplyTo string
	Mode    string
	Tools   []string

	// Explicit is the user's recorded decision, nil when none exists.
	Explicit *bool

	// Inherited is the collection-derived value, nil when no containing
	// collection has an explicit decision. Files only.
	Inherited *Inherited

	// Effective is the resolved enablement: explicit when present, else
	// inherited, else false.
	Effective bool

	// Local is the scanned install state.
	Local scan.Status

	// Collections lists the ids of collections containing this file
	// asset, sorted.
	Collections []string

	// MemberCount, EnabledCount, and DiffCount summarize a collection's
	// members. Collections only.
	MemberCount  int
	EnabledCount int
	DiffCount    int
}

// Matches reports whether the view matches a case-insensitive substring
// query over name, slug, path, description, and tags. An empty query
// matches everything.
func (v *AssetView) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{v.Name, v.Slug, v.Key.Path, v.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, tag := range v.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Projection is the complete derived view of the session.
type Projection struct {
	// Views holds every asset in display order: instructions, prompts,
	// chat modes, then collections, each group sorted by path.
	Views []*AssetView

	// Orphans lists enablement entries whose key no longer resolves to a
	// cataloged asset, sorted by serialized key.
	Orphans []assets.Key

	byKey map[assets.Key]*AssetView
}

// View looks up the view for a key.
func (p *Projection) View(key assets.Key) (*AssetView, bool) {
	v, ok := p.byKey[key]
	return v, ok
}

// OfKind returns the views of one kind, in display order.
func (p *Projection) OfKind(kind paths.Kind) []*AssetView {
	var views []*AssetView
	for _, v := range p.Views {
		if v.Key.Kind == kind {
			views = append(views, v)
		}
	}
	return views
}

// Filter returns the views matching the query, preserving display order.
func (p *Projection) Filter(query string) []*AssetView {
	if query == "" {
		return p.Views
	}
	var views []*AssetView
	for _, v := range p.Views {
		if v.Matches(query) {
			views = append(views, v)
		}
	}
	return views
}

// Project builds the projection from the catalog, the enablement record,
// and the latest scan. It reads its inputs and mutates nothing.
func Project(catalog *assets.Catalog, record *enablement.Record, scanned *scan.Result) *Projection {
	proj := &Projection{byKey: make(map[assets.Key]*AssetView)}

	for _, kind := range paths.FileKinds() {
		for _, asset := range catalog.FilesOfKind(kind) {
			view := projectFile(catalog, record, scanned, asset)
			proj.Views = append(proj.Views, view)
			proj.byKey[view.Key] = view
		}
	}

	for _, col := range catalog.Collections {
		view := projectCollection(record, proj, col)
		proj.Views = append(proj.Views, view)
		proj.byKey[view.Key] = view
	}

	proj.Orphans = findOrphans(catalog, record)
	return proj
}

// projectFile resolves one file asset's view.
func projectFile(catalog *assets.Catalog, record *enablement.Record, scanned *scan.Result, asset *assets.FileAsset) *AssetView {
	key := asset.Key()
	view := &AssetView{
		Key:         key,
		Slug:        asset.Slug,
		Name:        asset.Name,
		Description: asset.Description,
		Tags:        asset.Tags,
		ApplyTo:     asset.ApplyTo,
		Mode:        asset.Mode,
		Tools:       asset.Tools,
		Local:       scanned.Status(key),
		Collections: catalog.Membership(key),
	}

	if value, ok := record.Get(key); ok {
		view.Explicit = ptr.To(value)
	}

	// Inheritance comes from the first containing collection, in id
	// order, that carries an explicit decision.
	for _, colID := range view.Collections {
		col, ok := catalog.CollectionByID(colID)
		if !ok {
			continue
		}
		if value, ok := record.Get(col.Key()); ok {
			view.Inherited = &Inherited{CollectionID: colID, Value: value}
			break
		}
	}

	switch {
	case view.Explicit != nil:
		view.Effective = *view.Explicit
	case view.Inherited != nil:
		view.Effective = view.Inherited.Value
	default:
		view.Effective = false
	}
	return view
}

// projectCollection resolves one collection's view, summarizing its
// already projected members.
func projectCollection(record *enablement.Record, proj *Projection, col *assets.Collection) *AssetView {
	view := &AssetView{
		Key:         col.Key(),
		Slug:        col.Slug,
		Name:        col.Name,
		Description: col.Description,
		Tags:        col.Tags,
		Local:       scan.StatusNotApplicable,
		MemberCount: len(col.Items),
	}

	if value, ok := record.Get(col.Key()); ok {
		view.Explicit = ptr.To(value)
		view.Effective = value
	}

	for _, item := range col.Items {
		member, ok := proj.View(item.Key())
		if !ok {
			continue
		}
		if member.Effective {
			view.EnabledCount++
		}
		if member.Local == scan.StatusDiff {
			view.DiffCount++
		}
	}
	return view
}

// findOrphans collects enablement entries that no longer resolve to a
// cataloged asset.
func findOrphans(catalog *assets.Catalog, record *enablement.Record) []assets.Key {
	var orphans []assets.Key
	for raw := range record.Entries {
		key, err := enablement.ParseEntryKey(raw)
		if err != nil {
			continue
		}
		if !catalog.Has(key) {
			orphans = append(orphans, key)
		}
	}
	sort.Slice(orphans, func(i, j int) bool {
		return orphans[i].String() < orphans[j].String()
	})
	return orphans
}
