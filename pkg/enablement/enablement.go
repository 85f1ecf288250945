// Package enablement persists the user's explicit enable and disable
// decisions. The record is a small schema'd JSON document; saves are
// atomic through a temp-file rename so a crash never leaves a partially
// written record behind. A record that exists but fails validation is a
// fatal defect, never silently replaced.
package enablement

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/utc"

	"github.com/astrosteveo/copilot-tui/pkg/assets"
	"github.com/astrosteveo/copilot-tui/pkg/constants"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
)

// SchemaVersion is the record schema this build reads and writes.
const SchemaVersion = 1

// Record is the persisted enablement document.
type Record struct {
	// SchemaVersion guards against reading documents written by an
	// incompatible build.
	SchemaVersion int `json:"schema_version"`

	// UpdatedAt is stamped on every save.
	UpdatedAt *utc.Time `json:"updated_at,omitempty"`

	// Entries maps serialized asset keys to explicit enablement values.
	// Absence means no explicit decision.
	Entries map[string]bool `json:"entries"`
}

// NewRecord returns an empty record at the current schema version.
func NewRecord() *Record {
	return &Record{
		SchemaVersion: SchemaVersion,
		Entries:       make(map[string]bool),
	}
}

// Get returns the explicit value for key and whether one exists.
func (r *Record) Get(key assets.Key) (value, ok bool) {
	value, ok = r.Entries[key.String()]
	return value, ok
}

// SetExplicit records an explicit decision for key.
func (r *Record) SetExplicit(key assets.Key, enabled bool) {
	if r.Entries == nil {
		r.Entries = make(map[string]bool)
	}
	r.Entries[key.String()] = enabled
}

// Clear removes any explicit decision for key.
func (r *Record) Clear(key assets.Key) {
	delete(r.Entries, key.String())
}

// ClearAll removes every explicit decision.
func (r *Record) ClearAll() {
	r.Entries = make(map[string]bool)
}

// Clone returns a deep copy, used to snapshot state before a mutation
// that may need rolling back.
func (r *Record) Clone() *Record {
	clone := &Record{
		SchemaVersion: r.SchemaVersion,
		UpdatedAt:     r.UpdatedAt,
		Entries:       make(map[string]bool, len(r.Entries)),
	}
	for k, v := range r.Entries {
		clone.Entries[k] = v
	}
	return clone
}

// Load reads the record at path. A missing file yields a fresh empty
// record; an unreadable or invalid file is fatal.
func Load(path string) (*Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRecord(), nil
		}
		return nil, errors.NewEnablementError("load", path, "cannot read record", err)
	}

	record, err := decode(content)
	if err != nil {
		return nil, errors.NewEnablementError("load", path, err.Error(), err)
	}
	return record, nil
}

// decode parses and validates a record document.
func decode(content []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()

	var record Record
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}

	if record.SchemaVersion != SchemaVersion {
		return nil, errors.NewValidationError("schema_version", record.SchemaVersion, "unsupported schema version")
	}
	if record.Entries == nil {
		record.Entries = make(map[string]bool)
	}
	for key := range record.Entries {
		if _, err := assets.ParseKey(key); err != nil {
			return nil, errors.NewValidationError("entries", key, "malformed entry key")
		}
	}
	return &record, nil
}

// Save writes the record atomically: marshal to a temp file in the target
// directory, sync, then rename over the destination. The schema version
// and timestamp are stamped on every save.
func Save(path string, record *Record) error {
	record.SchemaVersion = SchemaVersion
	now := utc.Now()
	record.UpdatedAt = &now

	content, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.NewEnablementError("save", path, "cannot encode record", err)
	}
	content = append(content, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.NewEnablementError("save", path, "cannot create data directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewEnablementError("save", path, "cannot create temp file", err)
	}
	tmpName := tmp.Name()

	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.NewEnablementError("save", path, "cannot write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.NewEnablementError("save", path, "cannot sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.NewEnablementError("save", path, "cannot close temp file", err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		cleanup()
		return errors.NewEnablementError("save", path, "cannot set permissions", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.NewEnablementError("save", path, "cannot replace record", err)
	}
	return nil
}

// ParseEntryKey exposes entry-key parsing for callers that iterate raw
// entries, such as orphan detection.
func ParseEntryKey(raw string) (assets.Key, error) {
	key, err := assets.ParseKey(strings.TrimSpace(raw))
	if err != nil {
		return assets.Key{}, err
	}
	return key, nil
}
