package services

import (
	"errors"
	"fmt"
	"time"

	"kcald/internal/models"
	"kcald/internal/structures"
)

const DateLayout = "2006-01-02"

var (
	ErrEntryNotFound = errors.New("log entry not found")
	ErrNoSuchDay     = errors.New("no history entry for date")
	ErrInvalidGoal   = errors.New("daily goal must be positive")
)

// PersisterInterface writes the current snapshot to durable storage.
// Injected after construction so the service stays free of storage
// concerns; every successful mutation triggers exactly one persist.
type PersisterInterface interface {
	Persist() error
}

type TrackerServiceInterface interface {
	AddEntry(text string, n models.Nutrition) (*models.LogEntry, error)
	DeleteEntry(id string) (*models.LogEntry, error)
	DuplicateEntry(id string) (*models.LogEntry, error)
	DuplicateFromHistory(date, id string) (*models.LogEntry, error)
	SetGoal(goal int) error
	TodaySummary() *models.TodaySummary
	GetHistory() []*models.DailyHistoryEntry
	ExportRows() [][]string
	Rollover() (*models.DailyHistoryEntry, error)
	GetSnapshot() *models.Snapshot
	PutSnapshot(s *models.Snapshot)
	LogSize() int
	HistorySize() int
	ConsumedCalories() int
	SetPersister(p PersisterInterface)
}

type TrackerService struct {
	conf    *structures.Config
	day     *models.DayLog
	history *models.History

	persister PersisterInterface
	now       func() time.Time
}

func NewTrackerService(conf *structures.Config) TrackerServiceInterface {
	return &TrackerService{
		conf:    conf,
		day:     models.NewDayLog(conf.Tracker.DefaultGoal),
		history: models.NewHistory(),
		now:     time.Now,
	}
}

// NewTrackerServiceAt is NewTrackerService with an injectable clock.
func NewTrackerServiceAt(conf *structures.Config, now func() time.Time) TrackerServiceInterface {
	ts := NewTrackerService(conf).(*TrackerService)
	ts.now = now
	return ts
}

func (ts *TrackerService) SetPersister(p PersisterInterface) {
	ts.persister = p
}

func (ts *TrackerService) AddEntry(text string, n models.Nutrition) (*models.LogEntry, error) {
	if n.Calories < 0 {
		return nil, fmt.Errorf("negative calories for %q", text)
	}
	entry := models.NewMealEntry(text, n, ts.now())
	ts.day.Append(entry)
	if err := ts.persist(); err != nil {
		return nil, err
	}
	return entry, nil
}

func (ts *TrackerService) DeleteEntry(id string) (*models.LogEntry, error) {
	removed, ok := ts.day.Remove(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err := ts.persist(); err != nil {
		return nil, err
	}
	return removed, nil
}

func (ts *TrackerService) DuplicateEntry(id string) (*models.LogEntry, error) {
	src, ok := ts.day.Find(id)
	if !ok || !src.IsMeal() {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	clone := src.Clone(ts.now())
	ts.day.Append(clone)
	if err := ts.persist(); err != nil {
		return nil, err
	}
	return clone, nil
}

// DuplicateFromHistory clones a past meal into today's log without
// re-invoking the estimator. The history entry itself is untouched.
func (ts *TrackerService) DuplicateFromHistory(date, id string) (*models.LogEntry, error) {
	day, ok := ts.history.Get(date)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchDay, date)
	}
	for _, e := range day.MealLog {
		if e.ID != id || !e.IsMeal() {
			continue
		}
		clone := e.Clone(ts.now())
		ts.day.Append(clone)
		if err := ts.persist(); err != nil {
			return nil, err
		}
		return clone, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// SetGoal replaces the daily goal going forward. Archived days keep the
// goal that was in effect when they were rolled over.
func (ts *TrackerService) SetGoal(goal int) error {
	if goal <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGoal, goal)
	}
	ts.day.SetGoal(goal)
	return ts.persist()
}

func (ts *TrackerService) TodaySummary() *models.TodaySummary {
	consumed, macros := ts.day.Totals()
	goal := ts.day.GetGoal()
	progress := 0
	if goal > 0 {
		progress = consumed * 100 / goal
	}
	return &models.TodaySummary{
		Date:           ts.now().Format(DateLayout),
		DailyGoal:      goal,
		Consumed:       consumed,
		ConsumedMacros: macros,
		Remaining:      goal - consumed,
		ProgressPct:    progress,
		Log:            ts.day.MealEntries(),
	}
}

func (ts *TrackerService) GetHistory() []*models.DailyHistoryEntry {
	return ts.history.GetAll()
}

// ExportRows flattens today plus history into CSV rows, newest first.
// Sentinel entries never appear here.
func (ts *TrackerService) ExportRows() [][]string {
	rows := [][]string{{"date", "text", "calories", "carbs", "protein", "fat"}}
	today := ts.now().Format(DateLayout)
	for _, e := range ts.day.MealEntries() {
		rows = append(rows, exportRow(today, e))
	}
	for _, day := range ts.history.GetAll() {
		for _, e := range day.MealLog {
			if e.IsMeal() {
				rows = append(rows, exportRow(day.Date, e))
			}
		}
	}
	return rows
}

func exportRow(date string, e *models.LogEntry) []string {
	return []string{
		date,
		e.Text,
		fmt.Sprintf("%d", e.Calories),
		fmt.Sprintf("%d", e.Macros.Carbs),
		fmt.Sprintf("%d", e.Macros.Protein),
		fmt.Sprintf("%d", e.Macros.Fat),
	}
}

// Rollover archives the day log into history when the most recent meal
// entry belongs to a previous calendar date, then resets the day state.
// Both trigger paths (startup check and the midnight timer) call this
// same routine; archive-by-date replacement makes a double fire a no-op.
func (ts *TrackerService) Rollover() (*models.DailyHistoryEntry, error) {
	last, ok := ts.day.LastMealTime()
	if !ok {
		return nil, nil
	}
	entryDate := last.Local().Format(DateLayout)
	today := ts.now().Format(DateLayout)
	if entryDate == today {
		return nil, nil
	}

	consumed, macros := ts.day.Totals()
	archived := &models.DailyHistoryEntry{
		Date:          entryDate,
		TotalCalories: consumed,
		TotalMacros:   macros,
		MealLog:       ts.day.MealEntries(),
		DailyGoal:     ts.day.GetGoal(),
	}
	ts.history.Upsert(archived)
	ts.day.Reset(ts.now())

	if err := ts.persist(); err != nil {
		return archived, err
	}
	return archived, nil
}

func (ts *TrackerService) GetSnapshot() *models.Snapshot {
	consumed, macros := ts.day.Totals()
	return &models.Snapshot{
		Version:        models.SnapshotVersion,
		DailyGoal:      ts.day.GetGoal(),
		Consumed:       consumed,
		ConsumedMacros: macros,
		Log:            ts.day.AllEntries(),
		History:        ts.history.GetAll(),
	}
}

// PutSnapshot restores state from a loaded snapshot. Totals are
// recomputed from the log entries, so stored counters that drifted (a
// crash between two related writes) are corrected on the way in.
func (ts *TrackerService) PutSnapshot(s *models.Snapshot) {
	if s == nil {
		return
	}
	goal := s.DailyGoal
	if goal <= 0 {
		goal = ts.conf.Tracker.DefaultGoal
	}
	ts.day.Put(s.Log, goal)
	ts.history.Put(s.History)
}

func (ts *TrackerService) LogSize() int {
	return len(ts.day.MealEntries())
}

func (ts *TrackerService) HistorySize() int {
	return ts.history.Len()
}

func (ts *TrackerService) ConsumedCalories() int {
	consumed, _ := ts.day.Totals()
	return consumed
}

func (ts *TrackerService) persist() error {
	if ts.persister == nil {
		return nil
	}
	return ts.persister.Persist()
}
