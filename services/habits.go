package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"xp-ledger/models"
)

type HabitInput struct {
	Name        string
	Description string
	Type        models.HabitType
	XPReward    int
	CategoryID  *string
}

// HabitPatch updates a habit. The streak is not patchable.
type HabitPatch struct {
	Name        *string
	Description *string
	Type        *models.HabitType
	XPReward    *int
	CategoryID  *string
	IsActive    *bool
}

// CompleteInput is a habit completion request. Date defaults to today,
// Amount is only honored for MANUAL habits.
type CompleteInput struct {
	Date        string
	HoursLogged *float64
	Amount      *int
}

// HabitView is a habit with its completion history, oldest first.
type HabitView struct {
	models.Habit
	Completions []models.HabitCompletion `json:"completions"`
}

// CompletionResult reports what a completion did. NoOp means the date was
// already completed and nothing changed.
type CompletionResult struct {
	HabitView
	NoOp      bool          `json:"no_op"`
	Outcome   StreakOutcome `json:"outcome"`
	XPAwarded int           `json:"xp_awarded"`
	Log       *models.XPLog `json:"log,omitempty"`
}

func habitView(snap *models.Snapshot, h *models.Habit) HabitView {
	completions := snap.HabitCompletions(h.ID)
	if completions == nil {
		completions = []models.HabitCompletion{}
	}
	sort.Slice(completions, func(i, j int) bool { return completions[i].Date < completions[j].Date })
	return HabitView{Habit: *h, Completions: completions}
}

func (s *ProgressionService) CreateHabit(ctx context.Context, userID string, in HabitInput) (*models.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidInput.withf("habit name is required")
	}
	if in.Type == "" {
		in.Type = models.HabitTypeYesNo
	}
	if !in.Type.IsValid() {
		return nil, ErrInvalidType.withf("unknown habit type %q", in.Type)
	}
	if err := checkReward("xp reward", in.XPReward); err != nil {
		return nil, err
	}

	var out models.Habit
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		if err := s.checkCategory(snap, in.CategoryID); err != nil {
			return err
		}
		now := s.now().UTC()
		out = models.Habit{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Type:        in.Type,
			XPReward:    in.XPReward,
			CategoryID:  nonEmpty(in.CategoryID),
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		snap.Habits = append(snap.Habits, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProgressionService) ListHabits(ctx context.Context, userID string) ([]HabitView, error) {
	out := []HabitView{}
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		for i := range snap.Habits {
			out = append(out, habitView(snap, &snap.Habits[i]))
		}
		return nil
	})
	return out, err
}

func (s *ProgressionService) GetHabit(ctx context.Context, userID, habitID string) (*HabitView, error) {
	var out HabitView
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		h := snap.FindHabit(habitID)
		if h == nil {
			return ErrHabitNotFound
		}
		out = habitView(snap, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProgressionService) UpdateHabit(ctx context.Context, userID, habitID string, p HabitPatch) (*models.Habit, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, ErrInvalidInput.withf("habit name is required")
	}
	if p.Type != nil && !p.Type.IsValid() {
		return nil, ErrInvalidType.withf("unknown habit type %q", *p.Type)
	}
	if p.XPReward != nil {
		if err := checkReward("xp reward", *p.XPReward); err != nil {
			return nil, err
		}
	}

	var out models.Habit
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		h := snap.FindHabit(habitID)
		if h == nil {
			return ErrHabitNotFound
		}
		if err := s.checkCategory(snap, p.CategoryID); err != nil {
			return err
		}
		if p.Name != nil {
			h.Name = strings.TrimSpace(*p.Name)
		}
		if p.Description != nil {
			h.Description = strings.TrimSpace(*p.Description)
		}
		if p.Type != nil {
			h.Type = *p.Type
		}
		if p.XPReward != nil {
			h.XPReward = *p.XPReward
		}
		if p.CategoryID != nil {
			h.CategoryID = nonEmpty(p.CategoryID)
		}
		if p.IsActive != nil {
			h.IsActive = *p.IsActive
		}
		h.UpdatedAt = s.now().UTC()
		out = *h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteHabit removes the habit and its completions. XP already earned stays in the log.
func (s *ProgressionService) DeleteHabit(ctx context.Context, userID, habitID string) error {
	return s.update(ctx, userID, func(snap *models.Snapshot) error {
		idx := -1
		for i, h := range snap.Habits {
			if h.ID == habitID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrHabitNotFound
		}
		snap.Habits = append(snap.Habits[:idx], snap.Habits[idx+1:]...)

		kept := snap.Completions[:0]
		for _, c := range snap.Completions {
			if c.HabitID != habitID {
				kept = append(kept, c)
			}
		}
		snap.Completions = kept
		return nil
	})
}

// CompleteHabit records a completion, advances the streak and grants the awarded XP.
func (s *ProgressionService) CompleteHabit(ctx context.Context, userID, habitID string, in CompleteInput) (*CompletionResult, error) {
	date, err := s.resolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	if in.HoursLogged != nil && *in.HoursLogged < 0 {
		return nil, ErrInvalidInput.withf("hours logged must not be negative")
	}
	if in.Amount != nil {
		if err := checkAmount(*in.Amount); err != nil {
			return nil, err
		}
	}

	var out CompletionResult
	err = s.update(ctx, userID, func(snap *models.Snapshot) error {
		h := snap.FindHabit(habitID)
		if h == nil {
			return ErrHabitNotFound
		}
		if !h.IsActive {
			return ErrHabitInactive
		}
		if h.Type == models.HabitTypeHours && (in.HoursLogged == nil || *in.HoursLogged <= 0) {
			return ErrInvalidInput.withf("hours habits need hours logged")
		}

		tr := NextStreak(h.Streak, snap.HabitCompletions(h.ID), date)
		if tr.Outcome == StreakNoOp {
			out = CompletionResult{HabitView: habitView(snap, h), NoOp: true, Outcome: tr.Outcome}
			return nil
		}

		completion := models.HabitCompletion{
			ID:          uuid.NewString(),
			HabitID:     h.ID,
			Date:        date,
			Completed:   true,
			HoursLogged: in.HoursLogged,
			CreatedAt:   s.now().UTC(),
		}
		if awarded := AwardedXP(*h, tr.BonusBasis, in.HoursLogged, in.Amount); awarded > 0 {
			xpType := models.XPTypeAuto
			if tr.BonusBasis > 1 {
				xpType = models.XPTypeStreak
			}
			entry, err := s.grant(snap, GrantInput{
				Amount:     awarded,
				Type:       xpType,
				CategoryID: h.CategoryID,
				Source:     h.Name,
				Date:       date,
				exact:      h.Type == models.HabitTypeManual && in.Amount != nil,
			})
			if err != nil {
				return err
			}
			completion.XPAwarded = entry.Amount
			completion.XPLogID = &entry.ID
			logged := *entry
			out.Log = &logged
		}

		// Drop a stale uncompleted record for the same date before recording.
		if i, prev := snap.FindCompletion(h.ID, date); prev != nil {
			snap.Completions = append(snap.Completions[:i], snap.Completions[i+1:]...)
		}
		snap.Completions = append(snap.Completions, completion)
		h.Streak = tr.Streak
		h.UpdatedAt = s.now().UTC()

		out.HabitView = habitView(snap, h)
		out.Outcome = tr.Outcome
		out.XPAwarded = completion.XPAwarded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.NoOp {
		s.log.Info("habit completed", "user_id", userID, "habit_id", habitID, "date", date,
			"streak", out.Streak, "xp_awarded", out.XPAwarded)
	}
	return &out, nil
}

// UncompleteHabit removes the completion for date, revokes the XP it granted and
// recounts the streak from what is left.
func (s *ProgressionService) UncompleteHabit(ctx context.Context, userID, habitID, date string) (*HabitView, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	var out HabitView
	err = s.update(ctx, userID, func(snap *models.Snapshot) error {
		h := snap.FindHabit(habitID)
		if h == nil {
			return ErrHabitNotFound
		}
		_, c := snap.FindCompletion(h.ID, date)
		if c == nil || !c.Completed {
			return ErrCompletionNotFound
		}
		if c.XPLogID != nil {
			if _, err := s.revoke(snap, *c.XPLogID); err != nil {
				return err
			}
		}
		i, _ := snap.FindCompletion(h.ID, date)
		snap.Completions = append(snap.Completions[:i], snap.Completions[i+1:]...)

		h.Streak = CurrentStreak(snap.HabitCompletions(h.ID))
		h.UpdatedAt = s.now().UTC()
		out = habitView(snap, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("habit uncompleted", "user_id", userID, "habit_id", habitID, "date", date, "streak", out.Streak)
	return &out, nil
}
