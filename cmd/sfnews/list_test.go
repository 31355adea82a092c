package main

import (
	"testing"

	"github.com/pevans/sfnews/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchPages_SearchOnEveryPage verifies each page of a searched list
// is fetched with the search text.
func TestFetchPages_SearchOnEveryPage(t *testing.T) {
	repo := &pagedRepo{}
	session := listing.NewSession(repo)
	defer session.Close()

	snap, err := fetchPages(session, "NASA", 3, false)
	require.NoError(t, err)

	assert.Equal(t, listing.PhaseSuccess, snap.Phase)
	assert.Len(t, snap.Items, 6)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []string{"NASA", "NASA", "NASA"}, repo.queries)
	assert.Zero(t, repo.resets)
}

// TestFetchPages_Reload verifies --reload clears the offset once before
// the first page.
func TestFetchPages_Reload(t *testing.T) {
	repo := &pagedRepo{}
	session := listing.NewSession(repo)
	defer session.Close()

	snap, err := fetchPages(session, "", 2, true)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 4)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []string{"", ""}, repo.queries)
	assert.Equal(t, 1, repo.resets)
}
