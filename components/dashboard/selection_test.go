package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedStore(t *testing.T) (*SelectionStore, *[]SelectionChange) {
	t.Helper()
	store := NewSelectionStore(nil)
	store.Load(countryEntities())
	var changes []SelectionChange
	store.Subscribe(func(c SelectionChange) { changes = append(changes, c) })
	return store, &changes
}

func TestSelectionStoreSelectNotifies(t *testing.T) {
	store, changes := newLoadedStore(t)

	require.True(t, store.Select("ger"))

	require.Len(t, *changes, 1)
	assert.Equal(t, SelectionChange{Previous: "", Current: "ger", Mode: LongTerm, Reason: ReasonSelect}, (*changes)[0])
	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "Germany", current.Name)
}

func TestSelectionStoreUnknownIDLeavesStateUnchanged(t *testing.T) {
	store, changes := newLoadedStore(t)
	require.True(t, store.Select("ger"))

	assert.False(t, store.Select("atlantis"))

	assert.Equal(t, "ger", store.CurrentID())
	assert.Len(t, *changes, 1)
}

func TestSelectionStoreReselectNotifiesAgain(t *testing.T) {
	store, changes := newLoadedStore(t)
	store.Select("hnd")
	store.Select("hnd")

	require.Len(t, *changes, 2)
	assert.False(t, (*changes)[1].EntityChanged())
}

func TestSelectionStoreViewModeNeedsSelection(t *testing.T) {
	store, changes := newLoadedStore(t)

	assert.False(t, store.ToggleViewMode())
	assert.Equal(t, LongTerm, store.ViewMode())
	assert.Empty(t, *changes)

	store.Select("taiwan")
	require.True(t, store.ToggleViewMode())
	assert.Equal(t, OneYear, store.ViewMode())
	last := (*changes)[len(*changes)-1]
	assert.Equal(t, ReasonViewMode, last.Reason)
	assert.Equal(t, OneYear, last.Mode)
}

func TestSelectionStoreLoadRetainsOrClears(t *testing.T) {
	store, changes := newLoadedStore(t)
	store.Select("hnd")
	notified := len(*changes)

	assert.True(t, store.Load(countryEntities()))
	assert.Equal(t, "hnd", store.CurrentID())

	assert.False(t, store.Load(countryEntities()[:2]))
	assert.Equal(t, "", store.CurrentID())
	_, ok := store.Current()
	assert.False(t, ok)
	assert.Len(t, *changes, notified)
}

func TestSelectionStoreKeepsDatasetOrder(t *testing.T) {
	store := NewSelectionStore(nil)
	store.Load(countryEntities())

	ids := []string{}
	for _, e := range store.Entities() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"taiwan", "ger", "hnd"}, ids)
	assert.Equal(t, 3, store.Len())
}

func TestSelectionStoreConcurrentSelect(t *testing.T) {
	store := NewSelectionStore(nil)
	store.Load(countryEntities())
	var mu sync.Mutex
	seen := 0
	store.Subscribe(func(SelectionChange) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for _, id := range []string{"taiwan", "ger", "hnd", "taiwan", "ger", "hnd"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			store.Select(id)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 6, seen)
	assert.Contains(t, []string{"taiwan", "ger", "hnd"}, store.CurrentID())
}

func TestViewModeParsing(t *testing.T) {
	mode, err := ParseViewMode("One-Year")
	require.NoError(t, err)
	assert.Equal(t, OneYear, mode)
	assert.Equal(t, "Change to Long-term", mode.ToggleCaption())
	assert.Equal(t, LongTerm, mode.Toggled())

	_, err = ParseViewMode("weekly")
	assert.Error(t, err)
}
