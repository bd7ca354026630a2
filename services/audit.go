package services

import (
	"context"
	"fmt"

	"xp-ledger/models"
)

// Violation is one broken consistency rule in a user's snapshot.
type Violation struct {
	Check  string `json:"check"`
	Detail string `json:"detail"`
}

type AuditReport struct {
	UserID     string      `json:"user_id"`
	Version    int64       `json:"version"`
	Violations []Violation `json:"violations"`
}

func (r AuditReport) OK() bool { return len(r.Violations) == 0 }

// Audit re-derives every aggregate in snap and reports where the stored value differs.
func Audit(snap *models.Snapshot, defaults models.RulebookConfig) AuditReport {
	report := AuditReport{UserID: snap.UserID, Version: snap.Version, Violations: []Violation{}}
	add := func(check, format string, args ...interface{}) {
		report.Violations = append(report.Violations, Violation{Check: check, Detail: fmt.Sprintf(format, args...)})
	}

	logSum := 0
	perDay := map[string]int{}
	for _, l := range snap.XPLogs {
		if l.Amount <= 0 {
			add("log_amount", "log %s has non-positive amount %d", l.ID, l.Amount)
		}
		logSum += l.Amount
		perDay[l.Date] += l.Amount
	}
	balance := logSum
	for _, r := range snap.Redemptions {
		balance += r.Delta
	}
	p := snap.Profile
	if p.TotalXP != balance {
		add("balance", "total_xp is %d, logs minus redemptions give %d", p.TotalXP, balance)
	}
	if p.TotalXP < 0 {
		add("balance", "total_xp is negative (%d)", p.TotalXP)
	}

	calSum := 0
	for _, e := range snap.Calendar {
		calSum += e.TotalXP
		if e.TotalXP <= 0 {
			add("calendar", "entry %s holds %d XP", e.Date, e.TotalXP)
		}
		if perDay[e.Date] != e.TotalXP {
			add("calendar", "entry %s holds %d XP, logs for that day sum to %d", e.Date, e.TotalXP, perDay[e.Date])
		}
		delete(perDay, e.Date)
	}
	for day, sum := range perDay {
		if sum > 0 {
			add("calendar", "no entry for %s although logs sum to %d", day, sum)
		}
	}
	if calSum != logSum {
		add("calendar", "calendar sums to %d, logs sum to %d", calSum, logSum)
	}

	rb := snap.Rulebook
	if rb == nil {
		rb = &defaults
	}
	st := ComputeStanding(p, rb)
	if p.Level != st.Level || p.Rank != st.Rank || p.Title != st.Title || p.AvatarTier != st.AvatarTier {
		add("standing", "stored level %d rank %s title %q tier %d, derived level %d rank %s title %q tier %d",
			p.Level, p.Rank, p.Title, p.AvatarTier, st.Level, st.Rank, st.Title, st.AvatarTier)
	}

	for _, h := range snap.Habits {
		if want := CurrentStreak(snap.HabitCompletions(h.ID)); h.Streak != want {
			add("streak", "habit %s has streak %d, history gives %d", h.ID, h.Streak, want)
		}
	}
	for _, g := range snap.Goals {
		if g.CurrentValue > g.TargetValue || g.CurrentValue < 0 {
			add("goal", "goal %s has progress %d of %d", g.ID, g.CurrentValue, g.TargetValue)
		}
		if g.Status == models.GoalStatusCompleted && g.CurrentValue != g.TargetValue {
			add("goal", "goal %s is completed at %d of %d", g.ID, g.CurrentValue, g.TargetValue)
		}
	}
	return report
}

func (s *ProgressionService) VerifyUser(ctx context.Context, userID string) (*AuditReport, error) {
	var out AuditReport
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		out = Audit(snap, s.defaults)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAll audits every stored user and returns only the failing reports.
func (s *ProgressionService) VerifyAll(ctx context.Context) ([]AuditReport, error) {
	ids, err := s.uow.Store().UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	failing := []AuditReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return failing, err
		}
		report, err := s.VerifyUser(ctx, id)
		if err != nil {
			return failing, fmt.Errorf("auditing %s: %w", id, err)
		}
		if !report.OK() {
			s.log.Warn("consistency violations", "user_id", id, "count", len(report.Violations))
			failing = append(failing, *report)
		}
	}
	s.log.Info("consistency audit finished", "users", len(ids), "failing", len(failing))
	return failing, nil
}
