package analysis

import (
	"fmt"
	"maps"
	"slices"

	"ducksnap/internal/model"
)

// DeriveInsights describes what changed between two syncs. prev is nil on
// the first sync.
func DeriveInsights(prev *model.SnapshotMetrics, cur model.SnapshotMetrics) []string {
	if prev == nil {
		out := []string{fmt.Sprintf("First sync complete: you have %d followers and a %.1f%% engagement rate", cur.Followers, cur.EngagementRate)}
		return append(out, audienceInsights(cur)...)
	}

	var out []string
	switch diff := cur.Followers - prev.Followers; {
	case diff > 0:
		out = append(out, fmt.Sprintf("You gained %d followers since the last sync", diff))
	case diff < 0:
		out = append(out, fmt.Sprintf("You lost %d followers since the last sync", -diff))
	}

	if d := cur.EngagementRate - prev.EngagementRate; d >= 0.5 {
		out = append(out, fmt.Sprintf("Engagement rose %.1f points to %.1f%%", d, cur.EngagementRate))
	} else if d <= -0.5 {
		out = append(out, fmt.Sprintf("Engagement dropped %.1f points to %.1f%%", -d, cur.EngagementRate))
	}

	if prev.Views > 0 && cur.Views > prev.Views*2 {
		out = append(out, fmt.Sprintf("Views more than doubled to %d", cur.Views))
	}
	if cur.ContentFrequency < prev.ContentFrequency {
		out = append(out, fmt.Sprintf("Posting frequency slipped to %.1f per week", cur.ContentFrequency))
	}

	out = append(out, audienceInsights(cur)...)
	if len(out) == 0 {
		out = append(out, "Your metrics held steady since the last sync")
	}
	return out
}

func audienceInsights(m model.SnapshotMetrics) []string {
	var out []string
	if k, share, ok := largest(m.AudienceAge); ok {
		out = append(out, fmt.Sprintf("Most of your audience (%.0f%%) is aged %s", share*100, k))
	}
	if k, share, ok := largest(m.AudienceRegion); ok {
		out = append(out, fmt.Sprintf("Your largest region is %s with %.0f%% of viewers", k, share*100))
	}
	return out
}

// largest returns the bucket with the biggest share, ties broken by key order.
func largest(buckets map[string]float64) (string, float64, bool) {
	if len(buckets) == 0 {
		return "", 0, false
	}
	keys := slices.Sorted(maps.Keys(buckets))
	best := keys[0]
	for _, k := range keys[1:] {
		if buckets[k] > buckets[best] {
			best = k
		}
	}
	return best, buckets[best], true
}
