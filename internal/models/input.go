package models

type AddEntryRequest struct {
	Text     string `json:"text"`
	Image    string `json:"image,omitempty"` // base64 JPEG/PNG, optionally a data: URL
	Calories *int   `json:"calories,omitempty"`
}

type DuplicateRequest struct {
	ID   string `json:"id"`
	Date string `json:"date,omitempty"` // empty means today's log, YYYY-MM-DD means history
}

type GoalRequest struct {
	DailyGoal int `json:"dailyGoal"`
}

type TodaySummary struct {
	Date           string      `json:"date"`
	DailyGoal      int         `json:"dailyGoal"`
	Consumed       int         `json:"consumedCalories"`
	ConsumedMacros Macros      `json:"consumedMacros"`
	Remaining      int         `json:"remainingCalories"`
	ProgressPct    int         `json:"progressPercent"`
	Log            []*LogEntry `json:"log"`
}
