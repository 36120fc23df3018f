// Package analysis computes competitor benchmarks and metric insights from
// Snapchat snapshots. It performs no I/O.
package analysis

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"ducksnap/internal/model"
)

// Score weights.
const (
	weightEngagement = 0.5
	weightGrowth     = 0.3
	weightFollowers  = 0.2
)

const (
	maxTopPerformers = 5
	maxCompetitors   = 10
)

// Market positions by percentile.
const (
	PositionLeader       = "Market Leader"
	PositionTopPerformer = "Top Performer"
	PositionAboveAverage = "Above Average"
	PositionBelowAverage = "Below Average"
)

const defaultRecommendation = "Keep your current posting cadence and test one new content format each week"

type scored struct {
	competitor model.Competitor
	score      float64
}

// Generate benchmarks the user's metrics against the latest snapshots of
// other creators. cohort must not contain the user.
func Generate(userID int64, self model.SnapshotMetrics, cohort []model.SnapchatSnapshot, now time.Time) *model.CompetitorAnalysis {
	maxLog := logFollowers(self.Followers)
	for _, s := range cohort {
		maxLog = math.Max(maxLog, logFollowers(s.Data.Followers))
	}
	score := func(m model.SnapshotMetrics) float64 {
		norm := 0.0
		if maxLog > 0 {
			norm = logFollowers(m.Followers) / maxLog
		}
		return weightEngagement*m.EngagementRate + weightGrowth*m.GrowthRate + weightFollowers*norm
	}

	selfScore := score(self)
	peers := make([]scored, 0, len(cohort))
	ranking := 1
	var sumEng, sumGrowth, sumFreq, sumFollowers float64
	for i, s := range cohort {
		sc := score(s.Data)
		if sc > selfScore {
			ranking++
		}
		sumEng += s.Data.EngagementRate
		sumGrowth += s.Data.GrowthRate
		sumFreq += s.Data.ContentFrequency
		sumFollowers += float64(s.Data.Followers)
		peers = append(peers, scored{competitor: toCompetitor(i, s), score: sc})
	}
	slices.SortStableFunc(peers, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	total := len(cohort) + 1
	bench := model.Benchmarks{TopPerformers: competitors(peers, maxTopPerformers)}
	var avgFollowers float64
	if n := float64(len(cohort)); n > 0 {
		bench.AvgEngagementRate = round2(sumEng / n)
		bench.AvgFollowerGrowth = round2(sumGrowth / n)
		bench.AvgContentFrequency = round2(sumFreq / n)
		avgFollowers = sumFollowers / n
	}

	insights := model.Insights{
		MarketPosition:   MarketPosition(ranking, total),
		StrengthAreas:    []string{},
		ImprovementAreas: []string{},
		Opportunities:    []string{},
		Threats:          []string{},
	}
	compareMetric(&insights, "Engagement rate", self.EngagementRate, bench.AvgEngagementRate)
	compareMetric(&insights, "Follower growth", self.GrowthRate, bench.AvgFollowerGrowth)
	compareMetric(&insights, "Content frequency", self.ContentFrequency, bench.AvgContentFrequency)
	compareMetric(&insights, "Audience size", float64(self.Followers), avgFollowers)

	if self.GrowthRate > bench.AvgFollowerGrowth {
		insights.Opportunities = append(insights.Opportunities,
			fmt.Sprintf("Your growth of %.1f%% outpaces the cohort average of %.1f%%", self.GrowthRate, bench.AvgFollowerGrowth))
	} else if self.GrowthRate < bench.AvgFollowerGrowth {
		insights.Threats = append(insights.Threats,
			fmt.Sprintf("Peers are growing faster at %.1f%% against your %.1f%%", bench.AvgFollowerGrowth, self.GrowthRate))
	}
	if self.ContentFrequency < bench.AvgContentFrequency {
		insights.Opportunities = append(insights.Opportunities,
			fmt.Sprintf("Creators in your cohort post %.1f times per week; posting more often is an open lever", bench.AvgContentFrequency))
	}
	if len(bench.TopPerformers) > 0 && bench.TopPerformers[0].AvgEngagementRate > self.EngagementRate*1.5 {
		insights.Threats = append(insights.Threats,
			fmt.Sprintf("The leading creator engages at %.1f%%, well ahead of your %.1f%%", bench.TopPerformers[0].AvgEngagementRate, self.EngagementRate))
	}

	return &model.CompetitorAnalysis{
		UserID:           userID,
		UserRanking:      ranking,
		TotalCompetitors: total,
		Benchmarks:       bench,
		Insights:         insights,
		Recommendations:  recommendations(insights.ImprovementAreas),
		CompetitorData:   competitors(peers, maxCompetitors),
		CreatedAt:        now,
	}
}

// MarketPosition maps a 1-based ranking among total creators to a label.
func MarketPosition(ranking, total int) string {
	if total <= 1 {
		return PositionLeader
	}
	p := float64(total-ranking) / float64(total)
	switch {
	case p >= 0.9:
		return PositionLeader
	case p >= 0.7:
		return PositionTopPerformer
	case p >= 0.5:
		return PositionAboveAverage
	default:
		return PositionBelowAverage
	}
}

func compareMetric(in *model.Insights, label string, value, mean float64) {
	switch {
	case value > mean:
		in.StrengthAreas = append(in.StrengthAreas, label)
	case value < mean:
		in.ImprovementAreas = append(in.ImprovementAreas, label)
	}
}

var recommendationFor = map[string]string{
	"Engagement rate":   "Close with a question or poll in your stories to lift replies and engagement",
	"Follower growth":   "Cross-promote your Snapchat on other channels and collaborate with creators of a similar size",
	"Content frequency": "Plan a weekly content calendar so you post at least as often as your peers",
	"Audience size":     "Use Spotlight submissions to reach viewers outside your current followers",
}

func recommendations(improvements []string) []string {
	out := make([]string, 0, len(improvements)+1)
	for _, area := range improvements {
		if r, ok := recommendationFor[area]; ok {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		out = append(out, defaultRecommendation)
	}
	return out
}

func toCompetitor(i int, s model.SnapchatSnapshot) model.Competitor {
	name := s.Data.DisplayName
	if name == "" {
		name = fmt.Sprintf("Creator %d", i+1)
	}
	return model.Competitor{
		ID:                fmt.Sprintf("creator-%d", s.UserID),
		Name:              name,
		Followers:         s.Data.Followers,
		AvgEngagementRate: s.Data.EngagementRate,
		GrowthRate:        s.Data.GrowthRate,
		ContentFrequency:  s.Data.ContentFrequency,
	}
}

func competitors(peers []scored, limit int) []model.Competitor {
	n := min(limit, len(peers))
	out := make([]model.Competitor, n)
	for i := range n {
		out[i] = peers[i].competitor
	}
	return out
}

func logFollowers(n int64) float64 {
	if n <= 0 {
		return 0
	}
	return math.Log10(float64(n) + 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
