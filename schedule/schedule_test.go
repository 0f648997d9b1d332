package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "DAILY_REPORT", NormalizeKey("daily_report"))
	assert.Equal(t, "DAILY_REPORT", NormalizeKey("  Daily_Report  "))
	assert.Equal(t, "", NormalizeKey("   "))
}

func TestNewDefinition_Valid(t *testing.T) {
	def, err := NewDefinition("nightly", "0 0 0 * * ?", "nightly batch", nil, []string{"holidays"})
	require.NoError(t, err)

	assert.Equal(t, "NIGHTLY", def.Name())
	assert.Equal(t, "0 0 0 * * ?", def.Expression())
	assert.Equal(t, "nightly batch", def.Description())
	assert.Equal(t, time.UTC, def.Location())
	assert.Equal(t, []string{"HOLIDAYS"}, def.Calendars())
}

func TestNewDefinition_FiveFieldExpression(t *testing.T) {
	def, err := NewDefinition("hourly", "0 * * * *", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "HOURLY", def.Name())
}

func TestNewDefinition_Descriptor(t *testing.T) {
	_, err := NewDefinition("daily", "@daily", "", nil, nil)
	require.NoError(t, err)
}

func TestNewDefinition_InvalidExpression(t *testing.T) {
	_, err := NewDefinition("bad", "not a cron expr", "", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidExpression)

	var invalid *InvalidExpressionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "not a cron expr", invalid.Expression)
	assert.Error(t, invalid.Unwrap())
}

func TestNewDefinition_EmptyName(t *testing.T) {
	_, err := NewDefinition("  ", "@daily", "", nil, nil)
	assert.ErrorIs(t, err, ErrNameEmpty)
}

func TestNewDefinition_EmptyExpression(t *testing.T) {
	_, err := NewDefinition("x", "", "", nil, nil)
	assert.ErrorIs(t, err, ErrExpressionEmpty)
}

func TestDefinition_Next_DailyMidnightUTC(t *testing.T) {
	def, err := NewDefinition("midnight", "0 0 0 * * ?", "", time.UTC, nil)
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	next := def.Next(now)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), next)
	assert.True(t, next.After(now))
}

func TestDefinition_Next_RespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	def, err := NewDefinition("ny_noon", "0 0 12 * * ?", "", loc, nil)
	require.NoError(t, err)

	// 2026-06-01 10:00 EDT -> 同日 12:00 EDT
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, loc)
	next := def.Next(now)
	assert.Equal(t, time.Date(2026, 6, 1, 12, 0, 0, 0, loc), next)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	def, err := NewDefinition("Every_30_Seconds", "*/30 * * * * ?", "", nil, nil)
	require.NoError(t, err)
	require.NoError(t, reg.Register(def))

	// 任意大小写变体均可查到同一定义
	for _, variant := range []string{"every_30_seconds", "EVERY_30_SECONDS", "Every_30_Seconds"} {
		got, ok := reg.Lookup(variant)
		require.True(t, ok, "variant: %s", variant)
		assert.Same(t, def, got)
	}

	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []string{"EVERY_30_SECONDS"}, reg.Names())
}

func TestRegistry_DuplicateCaseInsensitive(t *testing.T) {
	reg := NewRegistry()

	first, err := NewDefinition("nightly", "@daily", "", nil, nil)
	require.NoError(t, err)
	require.NoError(t, reg.Register(first))

	second, err := NewDefinition("NIGHTLY", "@hourly", "", nil, nil)
	require.NoError(t, err)

	err = reg.Register(second)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_LookupMissing(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup("ghost")
	assert.False(t, ok)
}
