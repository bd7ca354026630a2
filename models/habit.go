package models

import "time"

type HabitType string

const (
	HabitTypeYesNo  HabitType = "YES_NO"
	HabitTypeHours  HabitType = "HOURS"
	HabitTypeManual HabitType = "MANUAL"
)

func (t HabitType) IsValid() bool {
	switch t {
	case HabitTypeYesNo, HabitTypeHours, HabitTypeManual:
		return true
	default:
		return false
	}
}

// Habit is a recurring activity. Streak is owned by the streak engine.
type Habit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        HabitType `json:"type"`
	XPReward    int       `json:"xp_reward"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Streak      int       `json:"streak"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HabitCompletion is unique per (HabitID, Date).
type HabitCompletion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	Date        string    `json:"date"`
	Completed   bool      `json:"completed"`
	HoursLogged *float64  `json:"hours_logged,omitempty"`
	XPAwarded   int       `json:"xp_awarded"`
	XPLogID     *string   `json:"xp_log_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
