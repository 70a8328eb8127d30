package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandFormatDateKinds(t *testing.T) {
	data := map[string]any{"ts": "2024-03-15 14:05:09"}
	cases := map[string]string{
		"date":          "15.03.2024",
		"time":          "14:05",
		"time_full":     "14:05:09",
		"datetime":      "15.03.2024 14:05",
		"datetime_full": "15.03.2024 14:05:09",
		"pg_date":       "2024-03-15",
		"pg_datetime":   "2024-03-15 14:05:09",
	}
	for kind, want := range cases {
		v, err := ExpandText("{ts|format:"+kind+"}", root(data))
		require.NoError(t, err)
		assert.Equal(t, want, v, "format:%s", kind)
	}
}

func TestExpandFormatUnixTimestamp(t *testing.T) {
	data := map[string]any{"ts": 1710510309}
	v, err := ExpandText("{ts|format:pg_datetime}", root(data))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 13:45:09", v)
}

func TestExpandFormatNumberCurrencyPercent(t *testing.T) {
	v, err := ExpandText("{amount|format:number}", root(map[string]any{"amount": 1234.5}))
	require.NoError(t, err)
	assert.Equal(t, 1234.5, v)

	v, err = ExpandText("{amount|format:currency}", root(map[string]any{"amount": 99}))
	require.NoError(t, err)
	assert.Equal(t, "99.00 ₽", v)

	v, err = ExpandText("{ratio|format:percent}", root(map[string]any{"ratio": 12.34}))
	require.NoError(t, err)
	assert.Equal(t, "12.3%", v)
}

func TestExpandToPeriodTruncation(t *testing.T) {
	data := map[string]any{"ts": "2024-03-15 14:05:09"}
	v, err := ExpandText("{ts|to_date}", root(data))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 00:00:00", v)

	v, err = ExpandText("{ts|to_hour}", root(data))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 14:00:00", v)

	v, err = ExpandText("{ts|to_month}", root(data))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 00:00:00", v)

	v, err = ExpandText("{ts|to_year}", root(data))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 00:00:00", v)
}

func TestExpandToPeriodEdgeCases(t *testing.T) {
	v, err := ExpandText("{none|to_date}", root(map[string]any{"none": nil}))
	require.NoError(t, err)
	assert.Equal(t, "{none|to_date}", v)

	v, err = ExpandText("{bad|to_date}", root(map[string]any{"bad": "invalid-date"}))
	require.NoError(t, err)
	assert.Equal(t, "invalid-date", v)

	v, err = ExpandText("{empty|to_date}", root(map[string]any{"empty": ""}))
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestExpandShiftMultiUnitInheritsSign(t *testing.T) {
	v, err := ExpandText("{ts|shift:-1 day 12 hours}", root(map[string]any{"ts": "2024-12-25 15:30:00"}))
	require.NoError(t, err)
	assert.Equal(t, "2024-12-24 03:30:00", v)
}

func TestExpandShiftMonthEndClamping(t *testing.T) {
	v, err := ExpandText("{ts|shift:+1 month}", root(map[string]any{"ts": "2024-01-31"}))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)
}

func TestExpandShiftYearEndClamping(t *testing.T) {
	v, err := ExpandText("{ts|shift:+1 year}", root(map[string]any{"ts": "2024-02-29"}))
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", v)
}

func TestExpandShiftNoSignUnchanged(t *testing.T) {
	v, err := ExpandText("{ts|shift:1 day}", root(map[string]any{"ts": "2024-12-25"}))
	require.NoError(t, err)
	assert.Equal(t, "2024-12-25", v)
}

func TestExpandShiftInvalidUnitUnchanged(t *testing.T) {
	v, err := ExpandText("{ts|shift:+1 fortnight}", root(map[string]any{"ts": "2024-12-25"}))
	require.NoError(t, err)
	assert.Equal(t, "2024-12-25", v)
}

func TestExpandShiftOutputAlwaysPGStyle(t *testing.T) {
	v, err := ExpandText("{ts|shift:+1 day}", root(map[string]any{"ts": "25.12.2024"}))
	require.NoError(t, err)
	assert.Equal(t, "2024-12-26", v)
}
