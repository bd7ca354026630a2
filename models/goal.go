package models

import "time"

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "ACTIVE"
	GoalStatusCompleted GoalStatus = "COMPLETED"
	GoalStatusFailed    GoalStatus = "FAILED"
)

// Goal tracks progress toward a target; completing it pays XPReward exactly once.
type Goal struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	TargetValue  int        `json:"target_value"`
	CurrentValue int        `json:"current_value"`
	Status       GoalStatus `json:"status"`
	XPReward     int        `json:"xp_reward"`
	CategoryID   *string    `json:"category_id,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
