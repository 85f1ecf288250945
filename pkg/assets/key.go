package assets

import (
	"strings"

	"github.com/astrosteveo/copilot-tui/pkg/errors"
	"github.com/astrosteveo/copilot-tui/pkg/paths"
)

// Key identifies an asset by kind and catalog-relative path. Keys are the
// join points between the catalog, the enablement record, and the local
// scan, and serialize as "<kind>:<path>".
type Key struct {
	Kind paths.Kind
	Path string
}

// String returns the serialized "<kind>:<path>" form.
func (k Key) String() string {
	return string(k.Kind) + ":" + k.Path
}

// ParseKey parses a serialized "<kind>:<path>" key.
func ParseKey(s string) (Key, error) {
	kind, path, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, errors.NewValidationError("key", s, "missing ':' separator")
	}
	k := Key{Kind: paths.Kind(kind), Path: path}
	if !k.Kind.Valid() {
		return Key{}, errors.NewValidationError("key", s, "unknown kind "+kind)
	}
	if k.Path == "" {
		return Key{}, errors.NewValidationError("key", s, "empty path")
	}
	return k, nil
}
