package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"xp-ledger/models"
)

type GoalInput struct {
	Title       string
	Description string
	TargetValue int
	XPReward    int
	CategoryID  *string
	Deadline    *time.Time
}

// GoalProgress is the result of a progress update. Log is set when the update completed the goal.
type GoalProgress struct {
	Goal         models.Goal          `json:"goal"`
	Completed    bool                 `json:"completed"`
	Log          *models.XPLog        `json:"log,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

func (s *ProgressionService) CreateGoal(ctx context.Context, userID string, in GoalInput) (*models.Goal, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidInput.withf("goal title is required")
	}
	if in.TargetValue < 1 {
		return nil, ErrInvalidInput.withf("target value must be at least 1")
	}
	if err := checkReward("xp reward", in.XPReward); err != nil {
		return nil, err
	}

	var out models.Goal
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		if err := s.checkCategory(snap, in.CategoryID); err != nil {
			return err
		}
		now := s.now().UTC()
		out = models.Goal{
			ID:          uuid.NewString(),
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			TargetValue: in.TargetValue,
			Status:      models.GoalStatusActive,
			XPReward:    in.XPReward,
			CategoryID:  nonEmpty(in.CategoryID),
			Deadline:    in.Deadline,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		snap.Goals = append(snap.Goals, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGoals returns the user's goals, optionally filtered by status.
func (s *ProgressionService) ListGoals(ctx context.Context, userID string, status models.GoalStatus) ([]models.Goal, error) {
	out := []models.Goal{}
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		for _, g := range snap.Goals {
			if status == "" || g.Status == status {
				out = append(out, g)
			}
		}
		return nil
	})
	return out, err
}

func (s *ProgressionService) GetGoal(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	var out models.Goal
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		g := snap.FindGoal(goalID)
		if g == nil {
			return ErrGoalNotFound
		}
		out = *g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProgressionService) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return s.update(ctx, userID, func(snap *models.Snapshot) error {
		for i, g := range snap.Goals {
			if g.ID == goalID {
				snap.Goals = append(snap.Goals[:i], snap.Goals[i+1:]...)
				return nil
			}
		}
		return ErrGoalNotFound
	})
}

// FailGoal abandons an active goal. No XP moves.
func (s *ProgressionService) FailGoal(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	var out models.Goal
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		g := snap.FindGoal(goalID)
		if g == nil {
			return ErrGoalNotFound
		}
		if g.Status != models.GoalStatusActive {
			return ErrGoalNotActive
		}
		g.Status = models.GoalStatusFailed
		g.UpdatedAt = s.now().UTC()
		out = *g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGoalProgress adds increment to the goal, capped at the target. Reaching
// the target completes the goal, grants its reward as BONUS XP and posts one
// notification, all in the same unit of work.
func (s *ProgressionService) UpdateGoalProgress(ctx context.Context, userID, goalID string, increment int) (*GoalProgress, error) {
	if increment <= 0 {
		return nil, ErrInvalidIncrement
	}
	var out GoalProgress
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		g := snap.FindGoal(goalID)
		if g == nil {
			return ErrGoalNotFound
		}
		if g.Status != models.GoalStatusActive {
			return ErrGoalNotActive
		}

		now := s.now().UTC()
		g.CurrentValue = min(g.CurrentValue+increment, g.TargetValue)
		g.UpdatedAt = now

		if g.CurrentValue >= g.TargetValue {
			if g.XPReward > 0 {
				entry, err := s.grant(snap, GrantInput{
					Amount:     g.XPReward,
					Type:       models.XPTypeBonus,
					CategoryID: g.CategoryID,
					Source:     "Goal: " + g.Title,
				})
				if err != nil {
					return err
				}
				logged := *entry
				out.Log = &logged
			}
			// grant appends to XPLogs only, so g still points into snap.Goals.
			g.Status = models.GoalStatusCompleted
			g.CompletedAt = &now
			out.Completed = true

			n := s.notify(snap, models.NotificationGoalCompleted,
				"Goal completed",
				fmt.Sprintf("You completed %q and earned %d XP.", g.Title, g.XPReward))
			out.Notification = &n
		}
		out.Goal = *g
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Completed {
		s.log.Info("goal completed", "user_id", userID, "goal_id", goalID, "xp_reward", out.Goal.XPReward)
	}
	return &out, nil
}
