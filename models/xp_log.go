package models

import "time"

// XPType classifies how XP was earned.
type XPType string

const (
	XPTypeManual XPType = "MANUAL"
	XPTypeAuto   XPType = "AUTO"
	XPTypeBonus  XPType = "BONUS"
	XPTypeStreak XPType = "STREAK"
)

func (t XPType) IsValid() bool {
	switch t {
	case XPTypeManual, XPTypeAuto, XPTypeBonus, XPTypeStreak:
		return true
	default:
		return false
	}
}

// XPLog is one earned-XP record. Its amount only ever changes through the ledger.
type XPLog struct {
	ID         string    `json:"id"`
	Amount     int       `json:"amount"`
	Type       XPType    `json:"type"`
	CategoryID *string   `json:"category_id,omitempty"`
	Source     string    `json:"source,omitempty"`
	Date       string    `json:"date"` // calendar bucket, YYYY-MM-DD
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CalendarEntry accumulates the XP earned on one day.
type CalendarEntry struct {
	Date    string `json:"date"`
	TotalXP int    `json:"total_xp"`
}
