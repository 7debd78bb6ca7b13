// Package authority ranks source trustworthiness per field. The merge
// engine consults it to decide which source's value wins when several
// sources disagree. Ranks are configuration data, not code: operators
// can retune them through a YAML override file without recompiling.
package authority

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/sibils/journals/pkg/errors"
	"github.com/sibils/journals/pkg/sources"
)

// Field defines source priority for a specific field path. Paths are
// Go struct field names and support trailing-* wildcards.
type Field struct {
	Path     string     `yaml:"path"`
	Source   sources.ID `yaml:"source"`
	Priority int        `yaml:"priority"`
}

// Table holds per-source base ranks plus per-field overrides.
// Higher priority wins; equal priority falls back to the fixed source
// order so the merge stays deterministic.
type Table struct {
	base      map[sources.ID]int
	overrides []Field
}

// New creates a Table with the standard ranks. The principle:
// curated sources outrank aggregated ones.
func New() *Table {
	return &Table{
		base: map[sources.ID]int{
			sources.LSIOU:    7,
			sources.DOAJ:     6,
			sources.NLM:      6,
			sources.OpenAlex: 5,
			sources.Crossref: 4,
			sources.JStage:   4,
			sources.PMC:      3,
			sources.Wikidata: 2,
			sources.SIBiLS:   0,
		},
	}
}

// overrideFile is the YAML shape of an authority override file.
type overrideFile struct {
	Sources map[sources.ID]int `yaml:"sources"`
	Fields  []Field            `yaml:"fields"`
}

// Load reads an override file and applies it on top of the defaults.
// Whole-source ranks replace the default rank; field entries add
// per-field exceptions.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	table := New()
	for source, priority := range file.Sources {
		table.base[source] = priority
	}
	table.overrides = file.Fields
	return table, nil
}

// Priority returns the rank of source for fieldPath: the most specific
// matching override, or the source's base rank. Unknown sources rank 0.
func (t *Table) Priority(fieldPath string, source sources.ID) int {
	if match := byField(fieldPath, source, t.overrides); match != nil {
		return match.Priority
	}
	return t.base[source]
}

// Less reports whether source a outranks source b for fieldPath.
// Ties break on the fixed source order, never on map iteration.
func (t *Table) Less(fieldPath string, a, b sources.ID) bool {
	pa, pb := t.Priority(fieldPath, a), t.Priority(fieldPath, b)
	if pa != pb {
		return pa > pb
	}
	return sources.Rank(a) < sources.Rank(b)
}

// byField returns the matching override with the highest priority,
// preferring more specific patterns on equal priority.
func byField(fieldPath string, source sources.ID, overrides []Field) *Field {
	var bestMatch *Field
	var bestPriority, bestMatchLength int

	for i, field := range overrides {
		if field.Source != source || !MatchesPattern(fieldPath, field.Path) {
			continue
		}
		patternLength := len(field.Path)
		if bestMatch == nil || field.Priority > bestPriority ||
			(field.Priority == bestPriority && patternLength > bestMatchLength) {
			bestMatch = &overrides[i]
			bestPriority = field.Priority
			bestMatchLength = patternLength
		}
	}

	return bestMatch
}

// MatchesPattern checks if a field path matches a pattern
// (supports * wildcards).
func MatchesPattern(fieldPath, pattern string) bool {
	if fieldPath == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(fieldPath) >= len(prefix) && fieldPath[:len(prefix)] == prefix
	}

	matched, err := filepath.Match(pattern, fieldPath)
	if err != nil {
		return false
	}
	return matched
}
