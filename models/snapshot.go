package models

import "time"

// Snapshot is every entity owned by one user. It is loaded and persisted as a unit.
type Snapshot struct {
	UserID        string            `json:"user_id"`
	Version       int64             `json:"version"`
	Profile       Profile           `json:"profile"`
	Categories    []Category        `json:"categories"`
	XPLogs        []XPLog           `json:"xp_logs"`
	Calendar      []CalendarEntry   `json:"calendar"`
	Habits        []Habit           `json:"habits"`
	Completions   []HabitCompletion `json:"completions"`
	Goals         []Goal            `json:"goals"`
	Notifications []Notification    `json:"notifications"`
	ShopItems     []ShopItem        `json:"shop_items"`
	Redemptions   []RedemptionLog   `json:"redemptions"`
	Rulebook      *RulebookConfig   `json:"rulebook,omitempty"`
	SavedAt       time.Time         `json:"saved_at"`
}

// NewSnapshot returns the snapshot of a freshly registered user.
func NewSnapshot(userID string, now time.Time) *Snapshot {
	return &Snapshot{
		UserID:  userID,
		Profile: NewProfile(userID, now),
	}
}

func (s *Snapshot) FindCategory(id string) *Category {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}

func (s *Snapshot) FindLog(id string) (int, *XPLog) {
	for i := range s.XPLogs {
		if s.XPLogs[i].ID == id {
			return i, &s.XPLogs[i]
		}
	}
	return -1, nil
}

func (s *Snapshot) FindCalendar(date string) (int, *CalendarEntry) {
	for i := range s.Calendar {
		if s.Calendar[i].Date == date {
			return i, &s.Calendar[i]
		}
	}
	return -1, nil
}

func (s *Snapshot) FindHabit(id string) *Habit {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			return &s.Habits[i]
		}
	}
	return nil
}

// HabitCompletions returns the completion records of one habit.
func (s *Snapshot) HabitCompletions(habitID string) []HabitCompletion {
	var out []HabitCompletion
	for _, c := range s.Completions {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	return out
}

func (s *Snapshot) FindCompletion(habitID, date string) (int, *HabitCompletion) {
	for i := range s.Completions {
		if s.Completions[i].HabitID == habitID && s.Completions[i].Date == date {
			return i, &s.Completions[i]
		}
	}
	return -1, nil
}

func (s *Snapshot) FindGoal(id string) *Goal {
	for i := range s.Goals {
		if s.Goals[i].ID == id {
			return &s.Goals[i]
		}
	}
	return nil
}

func (s *Snapshot) FindShopItem(id string) *ShopItem {
	for i := range s.ShopItems {
		if s.ShopItems[i].ID == id {
			return &s.ShopItems[i]
		}
	}
	return nil
}
