package dispatch

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatGuardPicksPriceLine(t *testing.T) {
	out := FormatGuard("Here you go\n$181.85\n- Nvidia Hits Record High - reuters.com", 4)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "$181.85", lines[0])
	assert.Equal(t, "- Nvidia Hits Record High – reuters.com", lines[1])
}

func TestFormatGuardFallsBackToFirstLine(t *testing.T) {
	out := FormatGuard("price unavailable\n- Something happened – example.com", 4)
	assert.Equal(t, "price unavailable", strings.Split(out, "\n")[0])
}

func TestFormatGuardNormalizesBullets(t *testing.T) {
	out := FormatGuard("$10.00\n- Apple’s Chips - apple.com", 4)
	assert.Contains(t, out, "- Apple's Chips – apple.com")
	assert.NotContains(t, out, "’")
}

func TestFormatGuardClampsBullets(t *testing.T) {
	out := FormatGuard("$1.00\n- a – x\n- b – y\n- c – z", 2)
	assert.Equal(t, 2, strings.Count(out, "\n- "))
	assert.NotContains(t, out, "- c – z")
}

func TestFormatGuardNoBulletsFallback(t *testing.T) {
	out := FormatGuard("$1.00", 4)
	assert.Contains(t, out, "- No recent headlines found.")
}

func TestFormatGuardRewritesOnlyAfterMarker(t *testing.T) {
	raw := "Thought: noisy preamble\n" + FinalResultMarker + "\n$5.00\n- t - h\n"
	out := FormatGuard(raw, 4)
	assert.True(t, strings.HasPrefix(out, "Thought: noisy preamble\n"))
	assert.Contains(t, out, FinalResultMarker+"\n$5.00\n- t – h\n")
}

func TestFormatGuardEmptyInput(t *testing.T) {
	assert.Equal(t, "  ", FormatGuard("  ", 4))
}

func TestToJSON(t *testing.T) {
	safe := "$181.85\n- Nvidia Hits Record High – reuters.com\n- Chip Rally Continues – wsj.com"
	var result Result
	require.NoError(t, json.Unmarshal([]byte(ToJSON(safe)), &result))
	assert.Equal(t, "$181.85", result.Price)
	require.Len(t, result.Headlines, 2)
	assert.Equal(t, Headline{Title: "Nvidia Hits Record High", Host: "reuters.com"}, result.Headlines[0])
	assert.Equal(t, Headline{Title: "Chip Rally Continues", Host: "wsj.com"}, result.Headlines[1])
}

func TestToJSONBulletWithoutHost(t *testing.T) {
	var result Result
	require.NoError(t, json.Unmarshal([]byte(ToJSON("$1.00\n- orphan bullet")), &result))
	require.Len(t, result.Headlines, 1)
	assert.Equal(t, "orphan bullet", result.Headlines[0].Title)
	assert.Empty(t, result.Headlines[0].Host)
}

func TestToJSONEmpty(t *testing.T) {
	var result Result
	require.NoError(t, json.Unmarshal([]byte(ToJSON("")), &result))
	assert.Empty(t, result.Price)
	assert.Empty(t, result.Headlines)
}
