package analysis

import (
	"fmt"
	"math"

	"ducksnap/internal/model"
)

// Posting cadence used when no cohort benchmark exists.
const defaultPostsPerWeek = 5.0

// ContentPlan is the content optimization advice shown on the dashboard.
type ContentPlan struct {
	PostsPerWeek            float64  `json:"postsPerWeek"`
	RecommendedPostsPerWeek float64  `json:"recommendedPostsPerWeek"`
	Tips                    []string `json:"tips"`
}

// PlanContent suggests a posting cadence from the creator's metrics and, when
// available, the cohort benchmarks.
func PlanContent(m model.SnapshotMetrics, bench *model.Benchmarks) ContentPlan {
	target := defaultPostsPerWeek
	if bench != nil && bench.AvgContentFrequency > 0 {
		target = bench.AvgContentFrequency
	}
	target = math.Max(target, m.ContentFrequency)

	plan := ContentPlan{
		PostsPerWeek:            m.ContentFrequency,
		RecommendedPostsPerWeek: round2(target),
		Tips:                    []string{},
	}
	if m.ContentFrequency < target {
		plan.Tips = append(plan.Tips, fmt.Sprintf("Post %.0f more times per week to match the recommended cadence", math.Ceil(target-m.ContentFrequency)))
	}
	if m.Views > 0 && m.StoryViews*4 < m.Views {
		plan.Tips = append(plan.Tips, "Stories reach under a quarter of your viewers; end snaps with a prompt to watch your story")
	}
	if bench != nil && m.EngagementRate < bench.AvgEngagementRate {
		plan.Tips = append(plan.Tips, "Your engagement trails the cohort; try polls, questions and behind-the-scenes snaps")
	}
	if k, _, ok := largest(m.AudienceAge); ok {
		plan.Tips = append(plan.Tips, fmt.Sprintf("Tailor topics to your core %s audience", k))
	}
	if len(plan.Tips) == 0 {
		plan.Tips = append(plan.Tips, "Your cadence and engagement are on track; keep experimenting with new formats")
	}
	return plan
}
