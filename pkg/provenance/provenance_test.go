package provenance

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibils/journals/pkg/sources"
)

func TestTrackerRoundTrip(t *testing.T) {
	tracker := NewTracker(true)
	entry := Entry{
		Selected:     sources.DOAJ,
		Contributors: []sources.ID{sources.DOAJ, sources.Wikidata},
		Reason:       "priority 6",
	}
	tracker.Track("0028-0836", "Title", entry)

	got, ok := tracker.FindByField("0028-0836", "Title")
	require.True(t, ok)
	assert.Equal(t, sources.DOAJ, got.Selected)
	assert.Equal(t, "Title", got.Field)

	byRecord := tracker.FindByRecord("0028-0836")
	assert.Len(t, byRecord, 1)
	assert.Contains(t, byRecord, "Title")

	m := tracker.Map()
	assert.Contains(t, m, "0028-0836:Title")
}

func TestTrackerDisabled(t *testing.T) {
	tracker := NewTracker(false)
	tracker.Track("0028-0836", "Title", Entry{Selected: sources.DOAJ})

	_, ok := tracker.FindByField("0028-0836", "Title")
	assert.False(t, ok)
	assert.Nil(t, tracker.Map())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.yaml")
	m := Map{
		"0028-0836:Title": {
			Field:        "Title",
			Selected:     sources.DOAJ,
			Contributors: []sources.ID{sources.DOAJ},
			Reason:       "priority 6",
		},
	}
	require.NoError(t, Save(path, m))

	f, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, sources.DOAJ, f.Provenance["0028-0836:Title"].Selected)
}

func TestLoadMissingFileIsNil(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestSummarySorted(t *testing.T) {
	m := Map{
		"b:Title":     {Field: "Title", Selected: sources.NLM},
		"a:Publisher": {Field: "Publisher", Selected: sources.DOAJ},
	}
	summary := Summary(m)
	assert.Less(t, strings.Index(summary, "a:Publisher"), strings.Index(summary, "b:Title"))
}
