package models

import (
	"sync"
	"time"
)

// DayLog holds the current calendar day's entries and running totals.
// Totals are maintained incrementally: Append and Remove are symmetric
// inverses, so an add-then-delete round trip restores the exact
// pre-add totals.
type DayLog struct {
	Mutex    sync.RWMutex
	Entries  []*LogEntry
	Consumed int
	Macros   Macros
	Goal     int
}

func NewDayLog(goal int) *DayLog {
	return &DayLog{
		Entries: make([]*LogEntry, 0),
		Goal:    goal,
	}
}

func (d *DayLog) Append(e *LogEntry) {
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	d.Entries = append(d.Entries, e)
	if e.IsMeal() {
		d.Consumed += e.Calories
		d.Macros = d.Macros.Add(e.Macros)
	}
}

func (d *DayLog) Remove(id string) (*LogEntry, bool) {
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	for i, e := range d.Entries {
		if e.ID != id {
			continue
		}
		d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
		if e.IsMeal() {
			d.Consumed -= e.Calories
			d.Macros = d.Macros.Sub(e.Macros)
		}
		return e, true
	}
	return nil, false
}

func (d *DayLog) Find(id string) (*LogEntry, bool) {
	d.Mutex.RLock()
	defer d.Mutex.RUnlock()
	for _, e := range d.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// MealEntries returns a copy of the log with sentinel entries filtered out.
func (d *DayLog) MealEntries() []*LogEntry {
	d.Mutex.RLock()
	defer d.Mutex.RUnlock()
	meals := make([]*LogEntry, 0, len(d.Entries))
	for _, e := range d.Entries {
		if e.IsMeal() {
			meals = append(meals, e)
		}
	}
	return meals
}

// AllEntries returns a copy of the full log, sentinels included. This is
// the form that goes into the snapshot.
func (d *DayLog) AllEntries() []*LogEntry {
	d.Mutex.RLock()
	defer d.Mutex.RUnlock()
	out := make([]*LogEntry, len(d.Entries))
	copy(out, d.Entries)
	return out
}

// LastMealTime returns the timestamp of the most recent non-sentinel
// entry. It is the value the rollover check compares against today.
func (d *DayLog) LastMealTime() (time.Time, bool) {
	d.Mutex.RLock()
	defer d.Mutex.RUnlock()
	for i := len(d.Entries) - 1; i >= 0; i-- {
		if d.Entries[i].IsMeal() {
			return d.Entries[i].Timestamp, true
		}
	}
	return time.Time{}, false
}

func (d *DayLog) Totals() (int, Macros) {
	d.Mutex.RLock()
	defer d.Mutex.RUnlock()
	return d.Consumed, d.Macros
}

func (d *DayLog) GetGoal() int {
	d.Mutex.RLock()
	defer d.Mutex.RUnlock()
	return d.Goal
}

func (d *DayLog) SetGoal(goal int) {
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	d.Goal = goal
}

func (d *DayLog) Len() int {
	d.Mutex.RLock()
	defer d.Mutex.RUnlock()
	return len(d.Entries)
}

// Put replaces the whole day state; used when restoring a snapshot.
// Totals are recomputed from the entries rather than trusted from the
// stored counters, which heals a snapshot written between two related
// state updates.
func (d *DayLog) Put(entries []*LogEntry, goal int) {
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	if entries == nil {
		entries = make([]*LogEntry, 0)
	}
	d.Entries = entries
	d.Goal = goal
	d.Consumed = 0
	d.Macros = Macros{}
	for _, e := range d.Entries {
		if e.IsMeal() {
			d.Consumed += e.Calories
			d.Macros = d.Macros.Add(e.Macros)
		}
	}
}

// Reset archives nothing by itself: it clears the day down to a single
// sentinel entry and zeroes the totals, keeping the goal.
func (d *DayLog) Reset(ts time.Time) {
	d.Mutex.Lock()
	defer d.Mutex.Unlock()
	d.Entries = []*LogEntry{NewDayResetEntry(ts)}
	d.Consumed = 0
	d.Macros = Macros{}
}
