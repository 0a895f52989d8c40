package caldate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday_UsesLocation(t *testing.T) {
	// 01:30 UTC on the 2nd is still the 1st in São Paulo (UTC-3).
	now := time.Date(2025, 3, 2, 1, 30, 0, 0, time.UTC)
	sp := time.FixedZone("BRT", -3*60*60)

	assert.Equal(t, MustParse("2025-03-01"), Today(now, sp))
	assert.Equal(t, MustParse("2025-03-02"), Today(now, time.UTC))
}

func TestAddDaysAndDaysSince(t *testing.T) {
	d := MustParse("2024-02-28")

	assert.Equal(t, MustParse("2024-02-29"), d.AddDays(1))
	assert.Equal(t, MustParse("2024-03-01"), d.AddDays(2))
	assert.Equal(t, MustParse("2024-02-27"), d.AddDays(-1))
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
	assert.Equal(t, -2, d.DaysSince(d.AddDays(2)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
}

func TestScan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan("2025-01-15"))
	assert.Equal(t, MustParse("2025-01-15"), d)

	require.NoError(t, d.Scan([]byte("2025-01-16T00:00:00Z")))
	assert.Equal(t, MustParse("2025-01-16"), d)

	require.NoError(t, d.Scan(time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, MustParse("2025-01-17"), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestValue(t *testing.T) {
	v, err := MustParse("2025-07-04").Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-07-04", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSON(t *testing.T) {
	type payload struct {
		Day  Date  `json:"day"`
		Next *Date `json:"next"`
	}

	b, err := json.Marshal(payload{Day: MustParse("2025-05-05")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2025-05-05","next":null}`, string(b))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2025-05-06","next":"2025-05-07"}`), &p))
	assert.Equal(t, MustParse("2025-05-06"), p.Day)
	require.NotNil(t, p.Next)
	assert.Equal(t, MustParse("2025-05-07"), *p.Next)

	assert.Error(t, json.Unmarshal([]byte(`{"day":"05/06/2025"}`), &p))
}

func TestParseLocation_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, ParseLocation("Not/AZone"))
}
