package model

import "time"

// CompetitorAnalysis is a stored benchmark snapshot of a creator against their cohort.
type CompetitorAnalysis struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"userId"`
	UserRanking      int          `json:"userRanking"`
	TotalCompetitors int          `json:"totalCompetitors"`
	Benchmarks       Benchmarks   `json:"benchmarks"`
	Insights         Insights     `json:"insights"`
	Recommendations  []string     `json:"recommendations"`
	CompetitorData   []Competitor `json:"competitorData"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// Benchmarks are cohort averages plus the leading creators.
type Benchmarks struct {
	AvgEngagementRate   float64      `json:"avgEngagementRate"`
	AvgFollowerGrowth   float64      `json:"avgFollowerGrowth"`
	AvgContentFrequency float64      `json:"avgContentFrequency"`
	TopPerformers       []Competitor `json:"topPerformers"`
}

// Insights summarise the creator's position.
type Insights struct {
	MarketPosition   string   `json:"marketPosition"`
	StrengthAreas    []string `json:"strengthAreas"`
	ImprovementAreas []string `json:"improvementAreas"`
	Opportunities    []string `json:"opportunities"`
	Threats          []string `json:"threats"`
}

// Competitor is one peer creator in the cohort.
type Competitor struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Followers         int64   `json:"followers"`
	AvgEngagementRate float64 `json:"avgEngagementRate"`
	GrowthRate        float64 `json:"growthRate"`
	ContentFrequency  float64 `json:"contentFrequency"`
}
