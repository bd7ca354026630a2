package models

import "time"

type RulebookMode string

const (
	RulebookModeAuto   RulebookMode = "AUTO"
	RulebookModeManual RulebookMode = "MANUAL"
)

// RankThreshold maps a minimum level to a rank.
type RankThreshold struct {
	MinLevel int  `json:"min_level" yaml:"min_level"`
	Rank     Rank `json:"rank" yaml:"rank"`
}

// TitleThreshold maps a minimum level to a display title.
type TitleThreshold struct {
	MinLevel int    `json:"min_level" yaml:"min_level"`
	Title    string `json:"title" yaml:"title"`
}

// ArtifactThreshold unlocks an avatar artifact at a minimum level.
type ArtifactThreshold struct {
	MinLevel int    `json:"min_level" yaml:"min_level"`
	Artifact string `json:"artifact" yaml:"artifact"`
}

// RulebookConfig is the per-user overlay that parameterizes leveling and the ledger.
// Threshold tables are kept sorted by ascending MinLevel.
type RulebookConfig struct {
	Mode            RulebookMode        `json:"mode" yaml:"mode"`
	XPLevelFormula  string              `json:"xp_level_formula" yaml:"xp_level_formula"`
	LevelRankMap    []RankThreshold     `json:"level_rank_map" yaml:"level_rank_map"`
	RankTitles      []TitleThreshold    `json:"rank_titles" yaml:"rank_titles"`
	Artifacts       []ArtifactThreshold `json:"artifact_thresholds" yaml:"artifact_thresholds"`
	StatMultipliers map[XPType]float64  `json:"stat_multipliers" yaml:"stat_multipliers"`
	UpdatedAt       time.Time           `json:"updated_at" yaml:"-"`
}
