package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysUntil(t *testing.T) {
	now := date(2024, 1, 10)

	cases := []struct {
		name string
		date time.Time
		want int
	}{
		{"same instant", now, 0},
		{"nine days overdue", date(2024, 1, 1), -9},
		{"partial day ahead rounds up", now.Add(time.Hour), 1},
		{"partial day behind rounds toward zero", now.Add(-time.Hour), 0},
		{"exact week", date(2024, 1, 17), 7},
		{"week and a minute", date(2024, 1, 17).Add(time.Minute), 8},
		{"half a second ahead", now.Add(500 * time.Millisecond), 1},
		{"day and half a second behind", now.Add(-day - 500*time.Millisecond), -1},
		{"centuries overdue", date(1700, 1, 1), -118347},
		{"centuries ahead", date(2400, 1, 1), 137322},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.date
			got := DaysUntil(&d, now)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, DaysUntil(nil, now))
}

func TestDaysUntil_IdempotentAndMonotonic(t *testing.T) {
	due := date(2024, 3, 1)
	now := date(2024, 1, 10).Add(5 * time.Hour)

	first := DaysUntil(&due, now)
	second := DaysUntil(&due, now)
	assert.Equal(t, *first, *second)

	prev := *first
	for step := 1; step <= 120; step++ {
		later := now.Add(time.Duration(step) * 13 * time.Hour)
		cur := *DaysUntil(&due, later)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Less(t, prev, *first)
}

func TestTiers_Classify(t *testing.T) {
	tiers := DefaultTiers()
	ip := func(v int) *int { return &v }

	assert.Equal(t, SeverityNeutral, tiers.Classify(nil))
	assert.Equal(t, SeverityCritical, tiers.Classify(ip(-9)))
	assert.Equal(t, SeverityCritical, tiers.Classify(ip(0)))
	assert.Equal(t, SeverityHigh, tiers.Classify(ip(1)))
	assert.Equal(t, SeverityHigh, tiers.Classify(ip(7)))
	assert.Equal(t, SeverityElevated, tiers.Classify(ip(8)))
	assert.Equal(t, SeverityElevated, tiers.Classify(ip(30)))
	assert.Equal(t, SeverityNormal, tiers.Classify(ip(31)))

	custom := Tiers{HighWithinDays: 3, ElevatedWithinDays: 10}
	assert.Equal(t, SeverityElevated, custom.Classify(ip(5)))
	assert.Equal(t, SeverityNormal, custom.Classify(ip(11)))

	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityElevated.Rank())
	assert.Greater(t, SeverityElevated.Rank(), SeverityNormal.Rank())
	assert.Greater(t, SeverityNormal.Rank(), SeverityNeutral.Rank())
}

func TestPolicy_ClampWindow(t *testing.T) {
	p := DefaultPolicy()
	ip := func(v int) *int { return &v }

	assert.Equal(t, 30, p.ClampWindow(nil))
	assert.Equal(t, 0, p.ClampWindow(ip(-5)))
	assert.Equal(t, 90, p.ClampWindow(ip(90)))
	assert.Equal(t, 365, p.ClampWindow(ip(1000)))
}
