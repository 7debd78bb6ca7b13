package authority

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibils/journals/pkg/sources"
)

func TestDefaultPriorities(t *testing.T) {
	table := New()

	assert.Equal(t, 7, table.Priority("Title", sources.LSIOU))
	assert.Equal(t, 6, table.Priority("Title", sources.DOAJ))
	assert.Equal(t, 6, table.Priority("Title", sources.NLM))
	assert.Equal(t, 5, table.Priority("Title", sources.OpenAlex))
	assert.Equal(t, 4, table.Priority("Title", sources.Crossref))
	assert.Equal(t, 0, table.Priority("Title", sources.SIBiLS))
	assert.Equal(t, 0, table.Priority("Title", sources.ID("bogus")))
}

func TestLessBreaksTiesByFixedOrder(t *testing.T) {
	table := New()

	// DOAJ and NLM share priority 6; DOAJ comes first in the fixed order.
	assert.True(t, table.Less("Title", sources.DOAJ, sources.NLM))
	assert.False(t, table.Less("Title", sources.NLM, sources.DOAJ))

	// Straight priority comparison.
	assert.True(t, table.Less("Title", sources.LSIOU, sources.Wikidata))
	assert.False(t, table.Less("Title", sources.Wikidata, sources.LSIOU))
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authority.yaml")
	content := `sources:
  wikidata: 8
fields:
  - path: NLMID
    source: nlm
    priority: 9
  - path: "ISSN*"
    source: crossref
    priority: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	// Whole-source override replaces the base rank.
	assert.Equal(t, 8, table.Priority("Title", sources.Wikidata))

	// Field override applies only to matching paths.
	assert.Equal(t, 9, table.Priority("NLMID", sources.NLM))
	assert.Equal(t, 6, table.Priority("Title", sources.NLM))

	// Wildcard override covers every ISSN slot.
	assert.Equal(t, 8, table.Priority("ISSNPrint", sources.Crossref))
	assert.Equal(t, 8, table.Priority("ISSNElectronic", sources.Crossref))
	assert.Equal(t, 8, table.Priority("ISSNL", sources.Crossref))
	assert.Equal(t, 4, table.Priority("Title", sources.Crossref))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		fieldPath string
		pattern   string
		want      bool
	}{
		{"Title", "Title", true},
		{"Title", "title", false},
		{"ISSNPrint", "ISSN*", true},
		{"ISSNL", "ISSN*", true},
		{"NLMID", "ISSN*", false},
		{"Title", "*", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesPattern(tt.fieldPath, tt.pattern),
			"%s vs %s", tt.fieldPath, tt.pattern)
	}
}
