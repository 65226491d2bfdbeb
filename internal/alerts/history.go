package alerts

import (
	"sync"

	"github.com/kavachhq/kavach-backend/internal/models"
)

// History is the process-wide alert log. Alerts are appended and never
// mutated or removed individually; Clear empties the log wholesale.
//
// IDs come from a monotonic counter held under the same lock as the append,
// so no two alerts observe the same ID even under concurrent evaluation.
// Clear resets the counter, so numbering restarts after an operator wipe.
type History struct {
	mu     sync.RWMutex
	alerts []models.Alert
	nextID int
}

func NewHistory() *History {
	return &History{}
}

// Append assigns the alert its ID and stores it, returning the stored copy.
func (h *History) Append(alert models.Alert) models.Alert {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	alert.ID = h.nextID
	h.alerts = append(h.alerts, alert)
	return alert
}

// Recent returns up to limit of the most recent alerts, oldest first within
// the slice.
func (h *History) Recent(limit int) []models.Alert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.alerts) {
		limit = len(h.alerts)
	}
	out := make([]models.Alert, limit)
	copy(out, h.alerts[len(h.alerts)-limit:])
	return out
}

// Len returns the number of alerts currently in the log.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.alerts)
}

// Clear empties the log and resets ID numbering.
func (h *History) Clear() {
	h.mu.Lock()
	h.alerts = nil
	h.nextID = 0
	h.mu.Unlock()
}
