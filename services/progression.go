package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"xp-ledger/logger"
	"xp-ledger/models"
	"xp-ledger/store"
)

// ProgressionService is the single entry point for every XP-affecting
// operation. Each public method is one unit of work over the user's snapshot.
type ProgressionService struct {
	uow      *store.UnitOfWork
	log      *logger.Logger
	loc      *time.Location
	now      func() time.Time
	defaults models.RulebookConfig
}

type Option func(*ProgressionService)

// WithLocation sets the zone used to bucket XP into calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *ProgressionService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ProgressionService) { s.now = now }
}

// WithRulebookDefaults overlays rb on the built-in defaults for users that have no rulebook yet.
func WithRulebookDefaults(rb *models.RulebookConfig) Option {
	return func(s *ProgressionService) {
		if rb == nil {
			return
		}
		if merged, err := normalizeRulebook(*rb, DefaultRulebook()); err == nil {
			s.defaults = merged
		} else {
			s.log.Warn("ignoring invalid rulebook defaults", "error", err)
		}
	}
}

func NewProgressionService(uow *store.UnitOfWork, log *logger.Logger, opts ...Option) *ProgressionService {
	s := &ProgressionService{
		uow:      uow,
		log:      log,
		loc:      time.UTC,
		now:      time.Now,
		defaults: DefaultRulebook(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProgressionService) today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

func (s *ProgressionService) dateOf(t time.Time) string {
	return t.In(s.loc).Format(DateLayout)
}

// resolveDate validates an optional YYYY-MM-DD date, defaulting to today.
func (s *ProgressionService) resolveDate(d string) (string, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return s.today(), nil
	}
	t, err := parseDate(d)
	if err != nil {
		return "", ErrInvalidInput.withf("date must be YYYY-MM-DD, got %q", d)
	}
	return t.Format(DateLayout), nil
}

func (s *ProgressionService) update(ctx context.Context, userID string, fn func(*models.Snapshot) error) error {
	if strings.TrimSpace(userID) == "" {
		return ErrProfileNotFound
	}
	err := s.uow.Update(ctx, userID, fn)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return ErrProfileNotFound
	}
	return err
}

func (s *ProgressionService) view(ctx context.Context, userID string, fn func(*models.Snapshot) error) error {
	if strings.TrimSpace(userID) == "" {
		return ErrProfileNotFound
	}
	err := s.uow.View(ctx, userID, fn)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return ErrProfileNotFound
	}
	return err
}

// recompute re-derives level, rank, title and avatar tier after any balance change.
func (s *ProgressionService) recompute(snap *models.Snapshot) {
	p := &snap.Profile
	st := ComputeStanding(*p, s.rulebookFor(snap))
	now := s.now().UTC()

	if st.Level > p.Level {
		p.LastLevelUpAt = &now
	}
	if st.Rank.Ordinal() > p.Rank.Ordinal() {
		p.LastRankUpAt = &now
	}
	p.Level = st.Level
	p.Rank = st.Rank
	p.Title = st.Title
	p.AvatarTier = st.AvatarTier
	p.UpdatedAt = now
}

// ProfileView is a profile plus the values a progress bar needs.
type ProfileView struct {
	models.Profile
	Mode        models.RulebookMode `json:"mode"`
	EffectiveXP int                 `json:"effective_xp"`
	LevelFloor  int                 `json:"level_floor_xp"`
	NextLevelXP int                 `json:"next_level_xp"`
	XPIntoLevel int                 `json:"xp_into_level"`
	XPToNext    int                 `json:"xp_to_next"`
	Artifacts   []string            `json:"artifacts"`
}

// RegisterProfile creates a user's snapshot with a level 1, rank E profile.
func (s *ProgressionService) RegisterProfile(ctx context.Context, userID, displayName string) (*models.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput.withf("user id is required")
	}
	snap := models.NewSnapshot(userID, s.now().UTC())
	snap.Profile.DisplayName = strings.TrimSpace(displayName)
	s.recompute(snap)

	if err := s.uow.Create(ctx, snap); err != nil {
		if errors.Is(err, store.ErrSnapshotExists) {
			return nil, ErrProfileExists
		}
		return nil, err
	}
	s.log.Info("profile registered", "user_id", userID)
	p := snap.Profile
	return &p, nil
}

// EnsureProfile returns the user's profile, registering it on first sight.
func (s *ProgressionService) EnsureProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.RegisterProfile(ctx, userID, "")
	if errors.Is(err, ErrProfileExists) {
		view, err := s.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &view.Profile, nil
	}
	return p, err
}

func (s *ProgressionService) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	var out ProfileView
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		rb := s.rulebookFor(snap)
		st := ComputeStanding(snap.Profile, rb)
		out = ProfileView{
			Profile:     snap.Profile,
			Mode:        rb.Mode,
			EffectiveXP: st.EffectiveXP,
			LevelFloor:  LevelFloorXP(st.Level),
			NextLevelXP: NextLevelThreshold(st.Level),
			Artifacts:   UnlockedArtifacts(st.Level, rb.Artifacts),
		}
		out.XPIntoLevel = max(0, st.EffectiveXP-out.LevelFloor)
		out.XPToNext = max(0, out.NextLevelXP-st.EffectiveXP)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetManualOverrides pins the effective level and/or XP. Only allowed in MANUAL mode.
func (s *ProgressionService) SetManualOverrides(ctx context.Context, userID string, level, xp *int) (*models.Profile, error) {
	if level != nil && (*level < 1 || *level > MaxLevel) {
		return nil, ErrInvalidInput.withf("manual level must be between 1 and %d", MaxLevel)
	}
	if xp != nil && (*xp < 0 || *xp > MaxXP) {
		return nil, ErrInvalidInput.withf("manual xp must be between 0 and %d", MaxXP)
	}
	var out models.Profile
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		if s.rulebookFor(snap).Mode != models.RulebookModeManual {
			return ErrManualModeRequired
		}
		snap.Profile.ManualLevelOverride = level
		snap.Profile.ManualXPOverride = xp
		s.recompute(snap)
		out = snap.Profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetProfile returns the profile to its registration state and deletes every
// entity the user owns. The profile row itself survives.
func (s *ProgressionService) ResetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var out models.Profile
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		prev := snap.Profile
		fresh := models.NewProfile(prev.UserID, prev.CreatedAt)
		fresh.DisplayName = prev.DisplayName

		snap.Profile = fresh
		snap.Categories = nil
		snap.XPLogs = nil
		snap.Calendar = nil
		snap.Habits = nil
		snap.Completions = nil
		snap.Goals = nil
		snap.Notifications = nil
		snap.ShopItems = nil
		snap.Redemptions = nil
		snap.Rulebook = nil

		s.recompute(snap)
		out = snap.Profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("profile reset", "user_id", userID)
	return &out, nil
}
