package models

import (
	"sort"
	"sync"
)

// DailyHistoryEntry is the archived summary of one past day. Immutable
// once created; a later archive for the same date replaces it wholesale.
type DailyHistoryEntry struct {
	Date          string      `json:"date"`
	TotalCalories int         `json:"totalCalories"`
	TotalMacros   Macros      `json:"totalMacros"`
	MealLog       []*LogEntry `json:"mealLog"`
	DailyGoal     int         `json:"dailyGoalAtTheTime"`
}

// History keeps at most one entry per calendar date, sorted descending
// by date. Date keys are YYYY-MM-DD, so plain string order is date order.
type History struct {
	Mutex sync.RWMutex
	Days  []*DailyHistoryEntry
}

func NewHistory() *History {
	return &History{Days: make([]*DailyHistoryEntry, 0)}
}

// Upsert inserts the entry, replacing any existing entry for the same
// date. This is what makes the two rollover trigger paths idempotent.
func (h *History) Upsert(entry *DailyHistoryEntry) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()
	h.Days = upsertSorted(h.Days, entry)
}

func (h *History) Get(date string) (*DailyHistoryEntry, bool) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	for _, d := range h.Days {
		if d.Date == date {
			return d, true
		}
	}
	return nil, false
}

func (h *History) GetAll() []*DailyHistoryEntry {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	out := make([]*DailyHistoryEntry, len(h.Days))
	copy(out, h.Days)
	return out
}

func (h *History) Len() int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()
	return len(h.Days)
}

// Put replaces the history with the given days, re-applying the
// dedupe-by-date and descending-order invariants on the way in.
func (h *History) Put(days []*DailyHistoryEntry) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()
	h.Days = make([]*DailyHistoryEntry, 0, len(days))
	for _, d := range days {
		if d == nil || d.Date == "" {
			continue
		}
		h.Days = upsertSorted(h.Days, d)
	}
}

func upsertSorted(days []*DailyHistoryEntry, entry *DailyHistoryEntry) []*DailyHistoryEntry {
	for i, d := range days {
		if d.Date == entry.Date {
			days = append(days[:i], days[i+1:]...)
			break
		}
	}
	days = append(days, entry)
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
	return days
}
