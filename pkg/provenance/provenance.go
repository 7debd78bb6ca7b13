// Package provenance provides field-level tracking of which source
// supplied each merged value. Every unified journal field records the
// source whose value was selected plus every source that offered one,
// so operators can trace any output value back to its origin.
//
// Entries carry no timestamps: the pipeline must produce byte-identical
// output across runs on identical input.
package provenance

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/sibils/journals/pkg/errors"
	"github.com/sibils/journals/pkg/sources"
)

// Entry records the origin of one merged field value.
type Entry struct {
	Field        string       `yaml:"field"`
	Selected     sources.ID   `yaml:"selected"`
	Contributors []sources.ID `yaml:"contributors,omitempty"`
	Reason       string       `yaml:"reason,omitempty"`
}

// Map tracks provenance for multiple records; the key is
// "unifiedID:fieldPath".
type Map map[string]Entry

// Tracker manages provenance tracking during unification.
type Tracker interface {
	// Track records provenance for a field of a unified record.
	Track(unifiedID, field string, entry Entry)

	// FindByField retrieves provenance for a specific field.
	FindByField(unifiedID, field string) (Entry, bool)

	// FindByRecord retrieves all provenance for a unified record,
	// keyed by field path.
	FindByRecord(unifiedID string) map[string]Entry

	// Map returns a copy of the complete provenance map.
	Map() Map

	// Clear removes all provenance data.
	Clear()
}

// tracker is the default implementation.
type tracker struct {
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker. A disabled tracker
// accepts calls and records nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records provenance for a field.
func (t *tracker) Track(unifiedID, field string, entry Entry) {
	if !t.enabled {
		return
	}
	if entry.Field == "" {
		entry.Field = field
	}
	t.provenance[makeKey(unifiedID, field)] = entry
}

// FindByField retrieves provenance for a specific field.
func (t *tracker) FindByField(unifiedID, field string) (Entry, bool) {
	if !t.enabled {
		return Entry{}, false
	}
	entry, ok := t.provenance[makeKey(unifiedID, field)]
	return entry, ok
}

// FindByRecord retrieves all provenance for a unified record.
func (t *tracker) FindByRecord(unifiedID string) map[string]Entry {
	if !t.enabled {
		return nil
	}

	result := make(map[string]Entry)
	prefix := unifiedID + ":"
	for key, entry := range t.provenance {
		if field, found := strings.CutPrefix(key, prefix); found {
			result[field] = entry
		}
	}
	return result
}

// Map returns a copy of the complete provenance map.
func (t *tracker) Map() Map {
	if !t.enabled {
		return nil
	}

	result := make(Map, len(t.provenance))
	for k, v := range t.provenance {
		result[k] = v
	}
	return result
}

// Clear removes all provenance data.
func (t *tracker) Clear() {
	t.provenance = make(Map)
}

func makeKey(unifiedID, field string) string {
	return unifiedID + ":" + field
}

// File is the on-disk representation of a provenance export.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes provenance data to a YAML file.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(&File{Provenance: m})
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &f, nil
}

// Summary produces a human-readable listing of a provenance map,
// sorted for stable output.
func Summary(m Map) string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		entry := m[key]
		fmt.Fprintf(&sb, "%s: %s", key, entry.Selected)
		if len(entry.Contributors) > 1 {
			fmt.Fprintf(&sb, " (of %d)", len(entry.Contributors))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
