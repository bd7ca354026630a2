package services

import (
	"context"
	"sort"

	"xp-ledger/models"
)

// DefaultRulebook returns the built-in rulebook.
func DefaultRulebook() models.RulebookConfig {
	return models.RulebookConfig{
		Mode:           models.RulebookModeAuto,
		XPLevelFormula: DefaultLevelFormula,
		LevelRankMap:   append([]models.RankThreshold(nil), DefaultRankThresholds...),
		RankTitles:     append([]models.TitleThreshold(nil), DefaultTitleThresholds...),
		Artifacts:      append([]models.ArtifactThreshold(nil), DefaultArtifactThresholds...),
		StatMultipliers: map[models.XPType]float64{
			models.XPTypeManual: 1,
			models.XPTypeAuto:   1,
			models.XPTypeBonus:  1,
			models.XPTypeStreak: 1,
		},
	}
}

func cloneRulebook(rb models.RulebookConfig) models.RulebookConfig {
	out := rb
	out.LevelRankMap = append([]models.RankThreshold(nil), rb.LevelRankMap...)
	out.RankTitles = append([]models.TitleThreshold(nil), rb.RankTitles...)
	out.Artifacts = append([]models.ArtifactThreshold(nil), rb.Artifacts...)
	out.StatMultipliers = make(map[models.XPType]float64, len(rb.StatMultipliers))
	for k, v := range rb.StatMultipliers {
		out.StatMultipliers[k] = v
	}
	return out
}

// normalizeRulebook sorts the threshold tables, fills gaps from def and checks
// that every table is monotonic so that a higher level never maps to a lower rank.
func normalizeRulebook(rb models.RulebookConfig, def models.RulebookConfig) (models.RulebookConfig, error) {
	out := cloneRulebook(rb)
	if out.Mode == "" {
		out.Mode = def.Mode
	}
	if out.Mode != models.RulebookModeAuto && out.Mode != models.RulebookModeManual {
		return out, ErrInvalidInput.withf("unknown rulebook mode %q", out.Mode)
	}
	if out.XPLevelFormula == "" {
		out.XPLevelFormula = def.XPLevelFormula
	}
	if len(out.LevelRankMap) == 0 {
		out.LevelRankMap = append(out.LevelRankMap, def.LevelRankMap...)
	}
	if len(out.RankTitles) == 0 {
		out.RankTitles = append(out.RankTitles, def.RankTitles...)
	}
	if out.Artifacts == nil {
		out.Artifacts = append(out.Artifacts, def.Artifacts...)
	}

	sort.SliceStable(out.LevelRankMap, func(i, j int) bool { return out.LevelRankMap[i].MinLevel < out.LevelRankMap[j].MinLevel })
	sort.SliceStable(out.RankTitles, func(i, j int) bool { return out.RankTitles[i].MinLevel < out.RankTitles[j].MinLevel })
	sort.SliceStable(out.Artifacts, func(i, j int) bool { return out.Artifacts[i].MinLevel < out.Artifacts[j].MinLevel })

	prevLevel, prevRank := 0, -1
	for _, t := range out.LevelRankMap {
		if t.MinLevel < 1 || t.MinLevel == prevLevel {
			return out, ErrInvalidInput.withf("level_rank_map: levels must be unique and >= 1")
		}
		if !t.Rank.IsValid() {
			return out, ErrInvalidInput.withf("level_rank_map: unknown rank %q", t.Rank)
		}
		if t.Rank.Ordinal() <= prevRank {
			return out, ErrInvalidInput.withf("level_rank_map: rank %s at level %d does not increase", t.Rank, t.MinLevel)
		}
		prevLevel, prevRank = t.MinLevel, t.Rank.Ordinal()
	}

	prevLevel = 0
	for _, t := range out.RankTitles {
		if t.MinLevel < 1 || t.MinLevel == prevLevel || t.Title == "" {
			return out, ErrInvalidInput.withf("rank_titles: levels must be unique and >= 1 with non-empty titles")
		}
		prevLevel = t.MinLevel
	}

	prevLevel = 0
	for _, t := range out.Artifacts {
		if t.MinLevel < 1 || t.MinLevel == prevLevel || t.Artifact == "" {
			return out, ErrInvalidInput.withf("artifact_thresholds: levels must be unique and >= 1 with non-empty names")
		}
		prevLevel = t.MinLevel
	}

	for k, v := range def.StatMultipliers {
		if _, ok := out.StatMultipliers[k]; !ok {
			out.StatMultipliers[k] = v
		}
	}
	for k, v := range out.StatMultipliers {
		if !k.IsValid() {
			return out, ErrInvalidInput.withf("stat_multipliers: unknown xp type %q", k)
		}
		if v <= 0 {
			return out, ErrInvalidInput.withf("stat_multipliers: %s must be positive", k)
		}
	}
	return out, nil
}

// rulebookFor returns the user's rulebook, creating it from defaults on first access.
func (s *ProgressionService) rulebookFor(snap *models.Snapshot) *models.RulebookConfig {
	if snap.Rulebook == nil {
		rb := cloneRulebook(s.defaults)
		rb.UpdatedAt = s.now().UTC()
		snap.Rulebook = &rb
	}
	return snap.Rulebook
}

func (s *ProgressionService) GetRulebook(ctx context.Context, userID string) (*models.RulebookConfig, error) {
	var out models.RulebookConfig
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		out = cloneRulebook(*s.rulebookFor(snap))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRulebook replaces the user's rulebook. Leaving MANUAL mode clears overrides.
func (s *ProgressionService) UpdateRulebook(ctx context.Context, userID string, in models.RulebookConfig) (*models.RulebookConfig, error) {
	rb, err := normalizeRulebook(in, s.defaults)
	if err != nil {
		return nil, err
	}
	err = s.update(ctx, userID, func(snap *models.Snapshot) error {
		rb.UpdatedAt = s.now().UTC()
		snap.Rulebook = &rb
		if rb.Mode == models.RulebookModeAuto {
			snap.Profile.ManualLevelOverride = nil
			snap.Profile.ManualXPOverride = nil
		}
		s.recompute(snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("rulebook updated", "user_id", userID, "mode", rb.Mode)
	out := cloneRulebook(rb)
	return &out, nil
}

func (s *ProgressionService) ResetRulebook(ctx context.Context, userID string) (*models.RulebookConfig, error) {
	var out models.RulebookConfig
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		snap.Rulebook = nil
		snap.Profile.ManualLevelOverride = nil
		snap.Profile.ManualXPOverride = nil
		out = cloneRulebook(*s.rulebookFor(snap))
		s.recompute(snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
