package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/store"
)

func TestPrintEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printEvents(&buf, []store.LLMRequestEventRecord{
		{ID: 2, Timestamp: time.Now(), Purpose: "tutor", UserID: "u1", Model: "gpt-4o-mini",
			InputTokens: 10000, OutputTokens: 5000, LatencyMs: 800, Success: true},
		{ID: 1, Timestamp: time.Now(), Purpose: "question-gen", Model: "unpriced-model", Success: false},
	}))

	out := buf.String()
	assert.Contains(t, out, "PURPOSE")
	assert.Contains(t, out, "u1")
	assert.Contains(t, out, "$0.0045")
	assert.Contains(t, out, "question-gen")
	assert.Contains(t, out, "?")
}

func TestPrintCost_PartialTotal(t *testing.T) {
	var buf bytes.Buffer
	printCost(&buf, []store.LLMModelUsage{
		{Model: "gemini-2.5-flash", Calls: 3, InputTokens: 1_000_000, OutputTokens: 100_000},
		{Model: "homemade-llm", Calls: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "$0.55")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "No price known for: homemade-llm")
}

func TestLoadConfig_DBFlagOverridesDSN(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ESTUDAI_DATABASE_DSN", "from-env.db")

	c := &cobra.Command{}
	c.Flags().String("config", "", "")
	c.Flags().String("db", "", "")
	require.NoError(t, c.Flags().Set("db", "from-flag.db"))

	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.Database.DSN)
}

func TestOrDashAndTruncate(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "x", orDash("x"))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}
