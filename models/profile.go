package models

import "time"

// Rank is the letter grade derived from a profile's effective level.
type Rank string

const (
	RankE   Rank = "E"
	RankD   Rank = "D"
	RankC   Rank = "C"
	RankB   Rank = "B"
	RankA   Rank = "A"
	RankS   Rank = "S"
	RankSS  Rank = "SS"
	RankSSS Rank = "SSS"
)

// RankOrder lists ranks from lowest to highest.
var RankOrder = []Rank{RankE, RankD, RankC, RankB, RankA, RankS, RankSS, RankSSS}

// Ordinal returns the position of r in RankOrder, or -1 if r is unknown.
func (r Rank) Ordinal() int {
	for i, candidate := range RankOrder {
		if candidate == r {
			return i
		}
	}
	return -1
}

func (r Rank) IsValid() bool { return r.Ordinal() >= 0 }

// Profile is the per-user progression aggregate (denormalized from the XP log)
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`

	// Core progression
	TotalXP    int    `json:"total_xp"`
	Level      int    `json:"level"`
	Rank       Rank   `json:"rank"`
	Title      string `json:"title"`
	AvatarTier int    `json:"avatar_tier"`

	// Only honoured while the rulebook is in MANUAL mode
	ManualLevelOverride *int `json:"manual_level_override,omitempty"`
	ManualXPOverride    *int `json:"manual_xp_override,omitempty"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`
	LastRankUpAt  *time.Time `json:"last_rank_up_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile returns a freshly registered profile.
func NewProfile(userID string, now time.Time) Profile {
	return Profile{
		UserID:    userID,
		TotalXP:   0,
		Level:     1,
		Rank:      RankE,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
