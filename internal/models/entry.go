package models

import (
	"time"

	"github.com/google/uuid"
)

type EntryKind string

const (
	KindMeal     EntryKind = "meal"
	KindDayReset EntryKind = "day_reset"
)

// DayResetText is the display marker carried by rollover sentinel entries.
// Snapshots written before entries were tagged with a Kind only carry this
// marker, so IsMeal falls back to it.
const DayResetText = "--- day reset ---"

type Macros struct {
	Carbs   int `json:"carbs"`
	Protein int `json:"protein"`
	Fat     int `json:"fat"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Carbs:   m.Carbs + o.Carbs,
		Protein: m.Protein + o.Protein,
		Fat:     m.Fat + o.Fat,
	}
}

func (m Macros) Sub(o Macros) Macros {
	return Macros{
		Carbs:   m.Carbs - o.Carbs,
		Protein: m.Protein - o.Protein,
		Fat:     m.Fat - o.Fat,
	}
}

func (m Macros) IsZero() bool {
	return m.Carbs == 0 && m.Protein == 0 && m.Fat == 0
}

// Nutrition is the result of a single estimation, manual or AI-backed.
type Nutrition struct {
	Calories int    `json:"calories"`
	Macros   Macros `json:"macros"`
}

type LogEntry struct {
	ID        string    `json:"id"`
	Kind      EntryKind `json:"kind,omitempty"`
	Text      string    `json:"text"`
	Calories  int       `json:"calories"`
	Macros    Macros    `json:"macros"`
	Timestamp time.Time `json:"timestamp"`
}

// IsMeal reports whether the entry counts towards totals, display and
// export. Untagged entries from legacy snapshots are matched by marker text.
func (e *LogEntry) IsMeal() bool {
	if e.Kind != "" {
		return e.Kind == KindMeal
	}
	return e.Text != DayResetText
}

func NewMealEntry(text string, n Nutrition, ts time.Time) *LogEntry {
	return &LogEntry{
		ID:        uuid.New().String(),
		Kind:      KindMeal,
		Text:      text,
		Calories:  n.Calories,
		Macros:    n.Macros,
		Timestamp: ts,
	}
}

func NewDayResetEntry(ts time.Time) *LogEntry {
	return &LogEntry{
		ID:        uuid.New().String(),
		Kind:      KindDayReset,
		Text:      DayResetText,
		Timestamp: ts,
	}
}

// Clone returns a copy with a fresh id and timestamp, the way duplication
// re-enters a past meal into today's log. The original is left untouched.
func (e *LogEntry) Clone(ts time.Time) *LogEntry {
	return &LogEntry{
		ID:        uuid.New().String(),
		Kind:      KindMeal,
		Text:      e.Text,
		Calories:  e.Calories,
		Macros:    e.Macros,
		Timestamp: ts,
	}
}
