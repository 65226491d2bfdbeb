package alerts

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavachhq/kavach-backend/internal/models"
)

func TestHistory_AppendAssignsSequentialIDs(t *testing.T) {
	h := NewHistory()

	a := h.Append(models.Alert{Type: models.AlertTypeFlood})
	b := h.Append(models.Alert{Type: models.AlertTypeLandslide})

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, 2, h.Len())
}

func TestHistory_RecentReturnsOldestFirstSlice(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 5; i++ {
		h.Append(models.Alert{Type: models.AlertTypeFlood})
	}

	recent := h.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, 3, recent[0].ID)
	assert.Equal(t, 5, recent[2].ID)

	// Limit larger than the log returns everything.
	assert.Len(t, h.Recent(50), 5)
}

func TestHistory_ClearResetsLogAndNumbering(t *testing.T) {
	h := NewHistory()
	h.Append(models.Alert{})
	h.Append(models.Alert{})

	h.Clear()
	assert.Equal(t, 0, h.Len())

	a := h.Append(models.Alert{})
	assert.Equal(t, 1, a.ID)
}

func TestHistory_ConcurrentAppendsGetUniqueIDs(t *testing.T) {
	h := NewHistory()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Append(models.Alert{})
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, a := range h.Recent(0) {
		require.False(t, seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true
	}
	assert.Len(t, seen, 100)
}
