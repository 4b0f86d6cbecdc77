package models

// SnapshotVersion 2 added the entry Kind tag and macro totals. Version 1
// files (and unversioned ones from the earliest builds) unmarshal into the
// same struct with those fields zero-valued, so no separate legacy type is
// needed.
const SnapshotVersion = 2

// Snapshot is the persisted form of the whole tracker state: the keyed
// state slices serialized together in one envelope.
type Snapshot struct {
	Version        int                  `json:"version"`
	DailyGoal      int                  `json:"dailyGoal"`
	Consumed       int                  `json:"consumedCalories"`
	ConsumedMacros Macros               `json:"consumedMacros"`
	Log            []*LogEntry          `json:"calorieLog"`
	History        []*DailyHistoryEntry `json:"calorieHistory"`
}
