package services

import (
	"math"
	"time"

	"xp-ledger/models"
)

const (
	DateLayout = "2006-01-02"

	StreakBonusPerDay = 5
	StreakBonusCap    = 50
	MaxHoursPerDay    = 8.0
)

type StreakOutcome string

const (
	StreakNoOp       StreakOutcome = "noop"
	StreakContinued  StreakOutcome = "continued"
	StreakRestarted  StreakOutcome = "restarted"
	StreakBackfilled StreakOutcome = "backfilled"
)

// StreakTransition is the result of completing a habit on one date.
// Streak is the habit's new streak; BonusBasis is the run length the bonus is paid on.
type StreakTransition struct {
	Outcome    StreakOutcome
	Streak     int
	BonusBasis int
}

func parseDate(d string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, d, time.UTC)
}

func dayNumber(d string) (int, bool) {
	t, err := parseDate(d)
	if err != nil {
		return 0, false
	}
	return int(t.Unix() / 86400), true
}

func completedDays(history []models.HabitCompletion) map[int]bool {
	days := map[int]bool{}
	for _, c := range history {
		if !c.Completed {
			continue
		}
		if n, ok := dayNumber(c.Date); ok {
			days[n] = true
		}
	}
	return days
}

func latestDay(days map[int]bool) (int, bool) {
	latest, found := 0, false
	for d := range days {
		if !found || d > latest {
			latest, found = d, true
		}
	}
	return latest, found
}

func runEndingAt(days map[int]bool, end int) int {
	n := 0
	for days[end-n] {
		n++
	}
	return n
}

// CurrentStreak is the length of the run of consecutive completed days ending
// at the most recent completion.
func CurrentStreak(history []models.HabitCompletion) int {
	days := completedDays(history)
	latest, ok := latestDay(days)
	if !ok {
		return 0
	}
	return runEndingAt(days, latest)
}

// NextStreak decides what completing date d does to a habit whose current
// streak is prevStreak. Δ is measured against the latest completed date in
// history, not against the wall clock.
func NextStreak(prevStreak int, history []models.HabitCompletion, d string) StreakTransition {
	days := completedDays(history)
	target, _ := dayNumber(d)

	if days[target] {
		return StreakTransition{Outcome: StreakNoOp, Streak: prevStreak}
	}
	latest, ok := latestDay(days)
	if !ok {
		return StreakTransition{Outcome: StreakRestarted, Streak: 1, BonusBasis: 1}
	}

	switch delta := target - latest; {
	case delta == 1:
		return StreakTransition{Outcome: StreakContinued, Streak: prevStreak + 1, BonusBasis: prevStreak + 1}
	case delta > 1:
		return StreakTransition{Outcome: StreakRestarted, Streak: 1, BonusBasis: 1}
	default:
		// Backfilling an earlier date can join two runs; recount from history.
		days[target] = true
		return StreakTransition{
			Outcome:    StreakBackfilled,
			Streak:     runEndingAt(days, latest),
			BonusBasis: runEndingAt(days, target),
		}
	}
}

// StreakBonus is linear in the streak length and capped.
func StreakBonus(streak int) int {
	if streak <= 0 {
		return 0
	}
	bonus := streak * StreakBonusPerDay
	if bonus > StreakBonusCap {
		return StreakBonusCap
	}
	return bonus
}

// AwardedXP computes the XP for one completion. A MANUAL habit with an explicit
// amount pays exactly that amount with no bonus stacking.
func AwardedXP(h models.Habit, streak int, hoursLogged *float64, manualAmount *int) int {
	if h.Type == models.HabitTypeManual && manualAmount != nil {
		return *manualAmount
	}
	base := float64(h.XPReward + StreakBonus(streak))
	if h.Type == models.HabitTypeHours {
		hours := 0.0
		if hoursLogged != nil {
			hours = math.Min(*hoursLogged, MaxHoursPerDay)
		}
		return int(math.Round(base * hours))
	}
	return int(math.Round(base))
}
