package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayEntry(date string, calories int) *DailyHistoryEntry {
	return &DailyHistoryEntry{Date: date, TotalCalories: calories, DailyGoal: 2000}
}

func TestHistory_UpsertSortsDescending(t *testing.T) {
	h := NewHistory()

	h.Upsert(dayEntry("2024-01-01", 1800))
	h.Upsert(dayEntry("2024-01-03", 2100))
	h.Upsert(dayEntry("2024-01-02", 1500))

	days := h.GetAll()
	require.Len(t, days, 3)
	assert.Equal(t, "2024-01-03", days[0].Date)
	assert.Equal(t, "2024-01-02", days[1].Date)
	assert.Equal(t, "2024-01-01", days[2].Date)
}

func TestHistory_UpsertReplacesSameDate(t *testing.T) {
	h := NewHistory()

	h.Upsert(dayEntry("2024-01-01", 1800))
	h.Upsert(dayEntry("2024-01-01", 2050))

	assert.Equal(t, 1, h.Len())
	d, ok := h.Get("2024-01-01")
	require.True(t, ok)
	assert.Equal(t, 2050, d.TotalCalories)
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory()
	h.Upsert(dayEntry("2024-01-01", 1800))

	_, ok := h.Get("2023-12-31")
	assert.False(t, ok)

	d, ok := h.Get("2024-01-01")
	require.True(t, ok)
	assert.Equal(t, 1800, d.TotalCalories)
}

func TestHistory_PutDedupesAndSorts(t *testing.T) {
	h := NewHistory()

	h.Put([]*DailyHistoryEntry{
		dayEntry("2024-01-02", 1500),
		nil,
		dayEntry("", 999),
		dayEntry("2024-01-04", 1700),
		dayEntry("2024-01-02", 1600),
	})

	days := h.GetAll()
	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-04", days[0].Date)
	assert.Equal(t, "2024-01-02", days[1].Date)
	assert.Equal(t, 1600, days[1].TotalCalories, "last value for a date wins")
}

func TestHistory_GetAllReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Upsert(dayEntry("2024-01-01", 1800))

	days := h.GetAll()
	days[0] = dayEntry("2024-09-09", 1)

	d, ok := h.Get("2024-01-01")
	require.True(t, ok)
	assert.Equal(t, 1800, d.TotalCalories)
}
