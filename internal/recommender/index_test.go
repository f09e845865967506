package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

func TestBuildTitleIndex_FirstOccurrenceWins(t *testing.T) {
	idx := BuildTitleIndex([]string{"Alpha", "Beta", "Alpha", "Gamma", "Beta"})

	assert.Equal(t, 3, idx.Len())

	row, err := idx.Lookup("Alpha")
	require.NoError(t, err)
	assert.Equal(t, 0, row)

	row, err = idx.Lookup("Beta")
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	row, err = idx.Lookup("Gamma")
	require.NoError(t, err)
	assert.Equal(t, 3, row)

	assert.Equal(t, []IndexEntry{{"Alpha", 0}, {"Beta", 1}, {"Gamma", 3}}, idx.Entries())
}

func TestTitleIndex_LookupNotFound(t *testing.T) {
	idx := BuildTitleIndex([]string{"Alpha"})

	_, err := idx.Lookup("alpha")
	assert.ErrorIs(t, err, domain.ErrTitleNotFound)

	_, err = BuildTitleIndex(nil).Lookup("Alpha")
	assert.ErrorIs(t, err, domain.ErrTitleNotFound)
}

func TestTitleIndex_EntriesRoundTrip(t *testing.T) {
	idx := BuildTitleIndex([]string{"Alpha", "Beta", "Alpha"})
	rebuilt := indexFromEntries(idx.Entries())

	assert.Equal(t, idx.Entries(), rebuilt.Entries())
	assert.LessOrEqual(t, rebuilt.Len(), 3)
}
