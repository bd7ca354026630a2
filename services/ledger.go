package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"xp-ledger/models"
)

// GrantInput describes one earned-XP event. An empty Date means today.
type GrantInput struct {
	Amount     int
	Type       models.XPType
	CategoryID *string
	Source     string
	Date       string

	// exact skips the rulebook stat multiplier.
	exact bool
}

// AmendInput carries the fields of a log that may change. Nil means unchanged;
// an empty CategoryID detaches the log from its category.
type AmendInput struct {
	Amount     *int
	Type       *models.XPType
	CategoryID *string
	Source     *string
}

func (s *ProgressionService) checkCategory(snap *models.Snapshot, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	if snap.FindCategory(*id) == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ProgressionService) multiplied(snap *models.Snapshot, t models.XPType, amount int) int {
	m, ok := s.rulebookFor(snap).StatMultipliers[t]
	if !ok || m == 1 {
		return amount
	}
	v := math.Round(float64(amount) * m)
	if v > MaxXP {
		return MaxXP + 1
	}
	return max(1, int(v))
}

// checkReward rejects rewards and costs outside [0, MaxXP].
func checkReward(what string, v int) error {
	if v < 0 || v > MaxXP {
		return ErrInvalidAmount.withf("%s must be between 0 and %d", what, MaxXP)
	}
	return nil
}

// checkAmount rejects non-positive amounts and amounts no balance could hold.
func checkAmount(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxXP {
		return ErrInvalidAmount.withf("amount must not exceed %d", MaxXP)
	}
	return nil
}

// grant appends a log and moves the profile and calendar by its amount.
func (s *ProgressionService) grant(snap *models.Snapshot, in GrantInput) (*models.XPLog, error) {
	if err := checkAmount(in.Amount); err != nil {
		return nil, err
	}
	if !in.Type.IsValid() {
		return nil, ErrInvalidType.withf("unknown xp type %q", in.Type)
	}
	if err := s.checkCategory(snap, in.CategoryID); err != nil {
		return nil, err
	}
	date := in.Date
	if date == "" {
		date = s.today()
	}

	amount := in.Amount
	if !in.exact {
		amount = s.multiplied(snap, in.Type, in.Amount)
	}
	now := s.now().UTC()
	entry := models.XPLog{
		ID:         uuid.NewString(),
		Amount:     amount,
		Type:       in.Type,
		CategoryID: nonEmpty(in.CategoryID),
		Source:     strings.TrimSpace(in.Source),
		Date:       date,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.applyDelta(snap, date, entry.Amount); err != nil {
		return nil, err
	}
	snap.XPLogs = append(snap.XPLogs, entry)
	return &snap.XPLogs[len(snap.XPLogs)-1], nil
}

func (s *ProgressionService) amend(snap *models.Snapshot, logID string, in AmendInput) (*models.XPLog, error) {
	_, entry := snap.FindLog(logID)
	if entry == nil {
		return nil, ErrLogNotFound
	}
	if in.Amount != nil {
		if err := checkAmount(*in.Amount); err != nil {
			return nil, err
		}
	}
	if in.Type != nil && !in.Type.IsValid() {
		return nil, ErrInvalidType.withf("unknown xp type %q", *in.Type)
	}
	if err := s.checkCategory(snap, in.CategoryID); err != nil {
		return nil, err
	}

	if in.Amount != nil {
		if delta := *in.Amount - entry.Amount; delta != 0 {
			if err := s.applyDelta(snap, entry.Date, delta); err != nil {
				return nil, err
			}
			entry.Amount = *in.Amount
			syncCompletionAward(snap, entry.ID, entry.Amount)
		}
	}
	if in.Type != nil {
		entry.Type = *in.Type
	}
	if in.CategoryID != nil {
		entry.CategoryID = nonEmpty(in.CategoryID)
	}
	if in.Source != nil {
		entry.Source = strings.TrimSpace(*in.Source)
	}
	entry.UpdatedAt = s.now().UTC()
	return entry, nil
}

// revoke removes a log and reverses exactly its amount.
func (s *ProgressionService) revoke(snap *models.Snapshot, logID string) (models.XPLog, error) {
	i, entry := snap.FindLog(logID)
	if entry == nil {
		return models.XPLog{}, ErrLogNotFound
	}
	removed := *entry
	if err := s.applyDelta(snap, removed.Date, -removed.Amount); err != nil {
		return models.XPLog{}, err
	}
	snap.XPLogs = append(snap.XPLogs[:i], snap.XPLogs[i+1:]...)
	syncCompletionAward(snap, removed.ID, 0)
	return removed, nil
}

// applyDelta is the only place the profile total and the calendar move for earned XP.
func (s *ProgressionService) applyDelta(snap *models.Snapshot, date string, delta int) error {
	if delta == 0 {
		return nil
	}
	if err := checkBalance(snap.Profile.TotalXP, delta); err != nil {
		return err
	}

	i, day := snap.FindCalendar(date)
	switch {
	case day != nil:
		day.TotalXP += delta
		if day.TotalXP <= 0 {
			snap.Calendar = append(snap.Calendar[:i], snap.Calendar[i+1:]...)
		}
	case delta > 0:
		snap.Calendar = append(snap.Calendar, models.CalendarEntry{Date: date, TotalXP: delta})
		sort.Slice(snap.Calendar, func(a, b int) bool { return snap.Calendar[a].Date < snap.Calendar[b].Date })
	default:
		return fmt.Errorf("calendar has no entry for %s to debit %d", date, -delta)
	}

	snap.Profile.TotalXP += delta
	s.recompute(snap)
	return nil
}

// adjustBalance moves the spendable balance without touching the log or calendar.
func (s *ProgressionService) adjustBalance(snap *models.Snapshot, delta int) error {
	if err := checkBalance(snap.Profile.TotalXP, delta); err != nil {
		return err
	}
	snap.Profile.TotalXP += delta
	s.recompute(snap)
	return nil
}

// checkBalance keeps total+delta within [0, MaxXP]. total is assumed in range.
func checkBalance(total, delta int) error {
	if delta < -total {
		return ErrInsufficientXP.withf("change of %d would take the balance below zero", delta)
	}
	if delta > MaxXP-total {
		return ErrInvalidAmount.withf("change of %d would take the balance past %d", delta, MaxXP)
	}
	return nil
}

// syncCompletionAward keeps a habit completion's award in step with its log.
// amount 0 means the log is gone.
func syncCompletionAward(snap *models.Snapshot, logID string, amount int) {
	for i := range snap.Completions {
		c := &snap.Completions[i]
		if c.XPLogID == nil || *c.XPLogID != logID {
			continue
		}
		c.XPAwarded = amount
		if amount == 0 {
			c.XPLogID = nil
		}
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *ProgressionService) GrantXP(ctx context.Context, userID string, in GrantInput) (*models.XPLog, error) {
	if in.Date != "" {
		d, err := s.resolveDate(in.Date)
		if err != nil {
			return nil, err
		}
		in.Date = d
	}
	var out models.XPLog
	var total int
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		entry, err := s.grant(snap, in)
		if err != nil {
			return err
		}
		out = *entry
		total = snap.Profile.TotalXP
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("xp granted", "user_id", userID, "amount", out.Amount, "type", out.Type, "total_xp", total)
	return &out, nil
}

func (s *ProgressionService) AmendXP(ctx context.Context, userID, logID string, in AmendInput) (*models.XPLog, error) {
	var out models.XPLog
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		entry, err := s.amend(snap, logID, in)
		if err != nil {
			return err
		}
		out = *entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("xp log amended", "user_id", userID, "log_id", logID, "amount", out.Amount)
	return &out, nil
}

func (s *ProgressionService) RevokeXP(ctx context.Context, userID, logID string) error {
	var removed models.XPLog
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		var err error
		removed, err = s.revoke(snap, logID)
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("xp log revoked", "user_id", userID, "log_id", logID, "amount", removed.Amount)
	return nil
}

// HistoryQuery filters and pages the XP history. Limit 0 means DefaultPageSize.
type HistoryQuery struct {
	Limit      int
	Offset     int
	Type       models.XPType
	CategoryID string
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func paginate[T any](items []T, limit, offset int) Page[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	page := Page[T]{Items: []T{}, Total: len(items), Limit: limit, Offset: offset}
	if offset >= len(items) {
		return page
	}
	end := min(offset+limit, len(items))
	page.Items = append(page.Items, items[offset:end]...)
	return page
}

// ListXPLogs returns the XP history newest first.
func (s *ProgressionService) ListXPLogs(ctx context.Context, userID string, q HistoryQuery) (*Page[models.XPLog], error) {
	if q.Type != "" && !q.Type.IsValid() {
		return nil, ErrInvalidType.withf("unknown xp type %q", q.Type)
	}
	var page Page[models.XPLog]
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		logs := make([]models.XPLog, 0, len(snap.XPLogs))
		for i := len(snap.XPLogs) - 1; i >= 0; i-- {
			l := snap.XPLogs[i]
			if q.Type != "" && l.Type != q.Type {
				continue
			}
			if q.CategoryID != "" && (l.CategoryID == nil || *l.CategoryID != q.CategoryID) {
				continue
			}
			logs = append(logs, l)
		}
		sort.SliceStable(logs, func(i, j int) bool {
			return logs[i].CreatedAt.After(logs[j].CreatedAt)
		})
		page = paginate(logs, q.Limit, q.Offset)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

