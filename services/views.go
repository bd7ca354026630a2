package services

import (
	"context"
	"sort"

	"xp-ledger/models"
)

// CategoryTotal is one axis of the radar view.
type CategoryTotal struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	TotalXP    int    `json:"total_xp"`
}

const UncategorizedName = "Uncategorized"

// Calendar returns the per-day XP totals between from and to inclusive.
// Either bound may be empty.
func (s *ProgressionService) Calendar(ctx context.Context, userID, from, to string) ([]models.CalendarEntry, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := parseDate(d); err != nil {
			return nil, ErrInvalidInput.withf("date must be YYYY-MM-DD, got %q", d)
		}
	}
	if from != "" && to != "" && from > to {
		return nil, ErrInvalidInput.withf("from %s is after to %s", from, to)
	}

	out := []models.CalendarEntry{}
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		for _, e := range snap.Calendar {
			if (from == "" || e.Date >= from) && (to == "" || e.Date <= to) {
				out = append(out, e)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
		return nil
	})
	return out, err
}

// Radar sums earned XP per category. Every category appears, logs without one
// are reported under Uncategorized when there are any.
func (s *ProgressionService) Radar(ctx context.Context, userID string) ([]CategoryTotal, error) {
	out := []CategoryTotal{}
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		sums := map[string]int{}
		for _, l := range snap.XPLogs {
			key := ""
			if l.CategoryID != nil {
				key = *l.CategoryID
			}
			sums[key] += l.Amount
		}
		for _, c := range snap.Categories {
			out = append(out, CategoryTotal{CategoryID: c.ID, Name: c.Name, TotalXP: sums[c.ID]})
		}
		if n := sums[""]; n > 0 {
			out = append(out, CategoryTotal{Name: UncategorizedName, TotalXP: n})
		}
		return nil
	})
	return out, err
}
