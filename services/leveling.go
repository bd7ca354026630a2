package services

import (
	"math"

	"xp-ledger/models"
)

// BaseXPPerLevel scales the level curve: level L starts at L^2 * BaseXPPerLevel XP.
const BaseXPPerLevel = 100

// DefaultLevelFormula describes LevelForXP. It is shown to users, never evaluated.
const DefaultLevelFormula = "max(1, floor(sqrt(totalXP / 100)))"

// DefaultRankThresholds: minimum level for each rank above E.
var DefaultRankThresholds = []models.RankThreshold{
	{MinLevel: 10, Rank: models.RankD},
	{MinLevel: 20, Rank: models.RankC},
	{MinLevel: 30, Rank: models.RankB},
	{MinLevel: 45, Rank: models.RankA},
	{MinLevel: 60, Rank: models.RankS},
	{MinLevel: 80, Rank: models.RankSS},
	{MinLevel: 100, Rank: models.RankSSS},
}

var DefaultTitleThresholds = []models.TitleThreshold{
	{MinLevel: 1, Title: "Novice"},
	{MinLevel: 5, Title: "Apprentice"},
	{MinLevel: 10, Title: "Adventurer"},
	{MinLevel: 20, Title: "Veteran"},
	{MinLevel: 30, Title: "Elite"},
	{MinLevel: 45, Title: "Champion"},
	{MinLevel: 60, Title: "Master"},
	{MinLevel: 80, Title: "Grandmaster"},
	{MinLevel: 100, Title: "Legend"},
}

var DefaultArtifactThresholds = []models.ArtifactThreshold{
	{MinLevel: 5, Artifact: "Bronze Frame"},
	{MinLevel: 15, Artifact: "Silver Aura"},
	{MinLevel: 30, Artifact: "Golden Crown"},
	{MinLevel: 50, Artifact: "Shadow Cloak"},
	{MinLevel: 75, Artifact: "Dragon Wings"},
	{MinLevel: 100, Artifact: "Monarch Throne"},
}

// MaxXP bounds every balance and award so level arithmetic stays within int range.
const MaxXP = 1_000_000_000

// MaxLevel is the level reached at MaxXP.
var MaxLevel = LevelForXP(MaxXP)

// LevelForXP returns max(1, floor(sqrt(totalXP / 100))).
func LevelForXP(totalXP int) int {
	if totalXP < BaseXPPerLevel {
		return 1
	}
	level := max(1, int(math.Sqrt(float64(totalXP)/BaseXPPerLevel)))
	// Correct for float rounding at exact squares.
	for reachesLevel(totalXP, level+1) {
		level++
	}
	for level > 1 && !reachesLevel(totalXP, level) {
		level--
	}
	return level
}

// reachesLevel reports totalXP >= level^2 * BaseXPPerLevel without multiplying.
func reachesLevel(totalXP, level int) bool {
	return totalXP/BaseXPPerLevel/level >= level
}

// LevelFloorXP is the XP at which level starts.
func LevelFloorXP(level int) int {
	if level <= 1 {
		return 0
	}
	return level * level * BaseXPPerLevel
}

// NextLevelThreshold returns the XP needed to reach level+1.
func NextLevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return (level + 1) * (level + 1) * BaseXPPerLevel
}

// RankForLevel is a stepwise lookup over ascending thresholds; below the first threshold the rank is E.
func RankForLevel(level int, table []models.RankThreshold) models.Rank {
	rank := models.RankE
	for _, t := range table {
		if level < t.MinLevel {
			break
		}
		rank = t.Rank
	}
	return rank
}

func TitleForLevel(level int, table []models.TitleThreshold) string {
	title := ""
	for _, t := range table {
		if level < t.MinLevel {
			break
		}
		title = t.Title
	}
	return title
}

// UnlockedArtifacts returns the artifacts whose threshold is at or below level.
func UnlockedArtifacts(level int, table []models.ArtifactThreshold) []string {
	var out []string
	for _, t := range table {
		if level < t.MinLevel {
			break
		}
		out = append(out, t.Artifact)
	}
	return out
}

// Standing is everything derived from a profile's XP under a rulebook.
type Standing struct {
	EffectiveXP int         `json:"effective_xp"`
	Level       int         `json:"level"`
	Rank        models.Rank `json:"rank"`
	Title       string      `json:"title"`
	AvatarTier  int         `json:"avatar_tier"`
}

// ComputeStanding derives level, rank, title and avatar tier. Manual overrides
// only apply in MANUAL mode; title and rank always follow the effective level.
func ComputeStanding(p models.Profile, rb *models.RulebookConfig) Standing {
	manual := rb.Mode == models.RulebookModeManual

	effXP := p.TotalXP
	if manual && p.ManualXPOverride != nil {
		effXP = *p.ManualXPOverride
	}
	level := LevelForXP(effXP)
	if manual && p.ManualLevelOverride != nil {
		level = *p.ManualLevelOverride
	}
	return Standing{
		EffectiveXP: effXP,
		Level:       level,
		Rank:        RankForLevel(level, rb.LevelRankMap),
		Title:       TitleForLevel(level, rb.RankTitles),
		AvatarTier:  len(UnlockedArtifacts(level, rb.Artifacts)),
	}
}
