package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xp-ledger/models"
)

func TestLoad_DriverSelection(t *testing.T) {
	t.Setenv("SNAPSHOT_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("LEDGER_TZ", "Europe/Berlin")
	t.Setenv("AUDIT_INTERVAL", "15m")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.Driver)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 15*time.Minute, cfg.AuditInterval)
	assert.False(t, cfg.R2.Enabled())
}

func TestLoad_RejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("SNAPSHOT_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestList_TrimsEntries(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, List("ALLOWED_ORIGINS", nil))
}

func TestLoadRulebookDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulebook.yaml")
	doc := `
mode: AUTO
xp_level_formula: "sqrt(xp / 100)"
level_rank_map:
  - {min_level: 5, rank: D}
  - {min_level: 15, rank: C}
rank_titles:
  - {min_level: 1, title: Rookie}
stat_multipliers:
  BONUS: 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	rb, err := LoadRulebookDefaults(path)
	require.NoError(t, err)
	require.NotNil(t, rb)
	assert.Equal(t, models.RulebookModeAuto, rb.Mode)
	assert.Equal(t, []models.RankThreshold{{MinLevel: 5, Rank: models.RankD}, {MinLevel: 15, Rank: models.RankC}}, rb.LevelRankMap)
	assert.Equal(t, 2.0, rb.StatMultipliers[models.XPTypeBonus])

	none, err := LoadRulebookDefaults("")
	require.NoError(t, err)
	assert.Nil(t, none)
}
