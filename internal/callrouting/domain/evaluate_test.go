package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(weekday time.Weekday, clock string) time.Time {
	// 2024-06-03 is a Monday
	base := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	base = base.AddDate(0, 0, int(weekday-time.Monday))
	t, _ := time.Parse("15:04:05", clock)
	return base.Add(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second)
}

func rule(created time.Time, enabled bool, days []string, start, end, routeTo string) RoutingRule {
	return RoutingRule{
		Enabled:   enabled,
		Days:      days,
		StartTime: start,
		EndTime:   end,
		RouteTo:   routeTo,
		CreatedAt: created,
	}
}

func TestEvaluate_InsideWindow(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []RoutingRule{
		rule(created, true, []string{"monday"}, "09:00:00", "17:00:00", "+15550100"),
	}

	dest, ok := Evaluate(at(time.Monday, "10:00:00"), rules)
	assert.True(t, ok)
	assert.Equal(t, "+15550100", dest)
}

func TestEvaluate_OutsideWindow(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []RoutingRule{
		rule(created, true, []string{"monday"}, "09:00:00", "17:00:00", "+15550100"),
	}

	_, ok := Evaluate(at(time.Monday, "18:00:00"), rules)
	assert.False(t, ok)
}

func TestEvaluate_BoundariesInclusive(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []RoutingRule{
		rule(created, true, []string{"monday"}, "09:00:00", "17:00:00", "+15550100"),
	}

	_, ok := Evaluate(at(time.Monday, "09:00:00"), rules)
	assert.True(t, ok)

	_, ok = Evaluate(at(time.Monday, "17:00:00"), rules)
	assert.True(t, ok)

	_, ok = Evaluate(at(time.Monday, "08:59:59"), rules)
	assert.False(t, ok)

	_, ok = Evaluate(at(time.Monday, "17:00:01"), rules)
	assert.False(t, ok)
}

func TestEvaluate_DayMismatch(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []RoutingRule{
		rule(created, true, []string{"monday", "wednesday"}, "00:00:00", "23:59:59", "+15550100"),
	}

	_, ok := Evaluate(at(time.Tuesday, "12:00:00"), rules)
	assert.False(t, ok)

	dest, ok := Evaluate(at(time.Wednesday, "12:00:00"), rules)
	assert.True(t, ok)
	assert.Equal(t, "+15550100", dest)
}

func TestEvaluate_DisabledRuleSkipped(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []RoutingRule{
		rule(created, false, []string{"monday"}, "00:00:00", "23:59:59", "+15550100"),
	}

	_, ok := Evaluate(at(time.Monday, "12:00:00"), rules)
	assert.False(t, ok)
}

func TestEvaluate_EarliestCreatedWins(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)
	rules := []RoutingRule{
		rule(late, true, []string{"monday"}, "09:00:00", "17:00:00", "+15550200"),
		rule(early, true, []string{"monday"}, "09:00:00", "17:00:00", "+15550100"),
	}

	dest, ok := Evaluate(at(time.Monday, "10:00:00"), rules)
	assert.True(t, ok)
	assert.Equal(t, "+15550100", dest)
}

func TestEvaluate_FallsThroughToLaterRule(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)
	rules := []RoutingRule{
		rule(early, true, []string{"monday"}, "09:00:00", "12:00:00", "+15550100"),
		rule(late, true, []string{"monday"}, "13:00:00", "17:00:00", "+15550200"),
	}

	dest, ok := Evaluate(at(time.Monday, "14:00:00"), rules)
	assert.True(t, ok)
	assert.Equal(t, "+15550200", dest)
}

func TestEvaluate_ShortTimeFormat(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []RoutingRule{
		rule(created, true, []string{"friday"}, "09:00", "17:00", "+15550100"),
	}

	dest, ok := Evaluate(at(time.Friday, "17:00:00"), rules)
	assert.True(t, ok)
	assert.Equal(t, "+15550100", dest)
}

func TestEvaluate_EmptyRules(t *testing.T) {
	_, ok := Evaluate(at(time.Monday, "12:00:00"), nil)
	assert.False(t, ok)
}
