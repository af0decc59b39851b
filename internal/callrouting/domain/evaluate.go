package domain

import (
	"sort"
	"strings"
	"time"
)

// Evaluate returns the destination of the first rule whose window
// contains now, and whether any rule matched. Rules created earlier
// take precedence. Disabled rules never match. Both window edges are
// inclusive; times are compared as wall-clock strings in now's
// location, so a rule authored for "09:00:00" fires at nine o'clock
// local to the agent regardless of server timezone.
func Evaluate(now time.Time, rules []RoutingRule) (string, bool) {
	ordered := make([]RoutingRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	day := strings.ToLower(now.Weekday().String())
	clock := now.Format("15:04:05")

	for _, rule := range ordered {
		if !rule.Enabled {
			continue
		}
		if !containsDay(rule.Days, day) {
			continue
		}
		if clock < normalizeTime(rule.StartTime) || clock > normalizeTime(rule.EndTime) {
			continue
		}
		return rule.RouteTo, true
	}

	return "", false
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

// normalizeTime pads "HH:MM" windows out to "HH:MM:SS" so both forms
// compare correctly.
func normalizeTime(t string) string {
	t = strings.TrimSpace(t)
	if len(t) == 5 {
		return t + ":00"
	}
	return t
}
