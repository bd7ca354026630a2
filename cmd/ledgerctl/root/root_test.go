package root

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) {
	t.Setenv("SNAPSHOT_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("RULEBOOK_DEFAULTS", "")
}

func TestResetRequiresConfirmation(t *testing.T) {
	cmd := newResetCmd()
	cmd.SetArgs([]string{"alice"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestVerifyEmptyStore(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer
	cmd := newVerifyCmd()
	cmd.SetArgs(nil)
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ledger is consistent")
}

func TestProfileUnknownUser(t *testing.T) {
	memoryEnv(t)
	cmd := newProfileCmd()
	cmd.SetArgs([]string{"ghost"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestBackupNeedsR2(t *testing.T) {
	memoryEnv(t)
	t.Setenv("R2_BUCKET_NAME", "")
	cmd := newBackupCmd()
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R2 is not configured")
}

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(5, 10, 10)
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))
	assert.Equal(t, "", ProgressBar(1, 0, 10))
}
