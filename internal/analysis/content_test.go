package analysis

import (
	"testing"

	"ducksnap/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestPlanContentUsesCohortCadence(t *testing.T) {
	m := model.SnapshotMetrics{ContentFrequency: 2, Views: 1000, StoryViews: 100, EngagementRate: 1}
	bench := &model.Benchmarks{AvgContentFrequency: 6.5, AvgEngagementRate: 3}

	plan := PlanContent(m, bench)

	assert.Equal(t, 2.0, plan.PostsPerWeek)
	assert.Equal(t, 6.5, plan.RecommendedPostsPerWeek)
	assert.Contains(t, plan.Tips, "Post 5 more times per week to match the recommended cadence")
	assert.Len(t, plan.Tips, 3)
}

func TestPlanContentDefaultsAndOnTrack(t *testing.T) {
	plan := PlanContent(model.SnapshotMetrics{ContentFrequency: 9}, nil)

	assert.Equal(t, 9.0, plan.RecommendedPostsPerWeek)
	assert.Equal(t, []string{"Your cadence and engagement are on track; keep experimenting with new formats"}, plan.Tips)
}
