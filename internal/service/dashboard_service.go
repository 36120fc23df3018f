package service

import (
	"context"
	"time"

	"ducksnap/internal/analysis"
	"ducksnap/internal/model"
	"ducksnap/internal/repository"

	"github.com/rs/zerolog"
)

// Dashboard panel keys.
const (
	PanelAudienceInsights    = "audienceInsights"
	PanelCompetitorAnalysis  = "competitorAnalysis"
	PanelAIInsights          = "aiInsights"
	PanelContentOptimization = "contentOptimization"
)

// Upgrade prompts shown on locked premium features.
var UpgradePrompts = map[string]string{
	PanelAudienceInsights:    "Upgrade to Premium to see the age and region breakdown of your audience.",
	PanelCompetitorAnalysis:  "Get detailed analysis of your market position, competitor benchmarks, and strategic recommendations.",
	PanelAIInsights:          "Upgrade to Premium for AI-powered insights generated after every sync.",
	PanelContentOptimization: "Upgrade to Premium for a posting cadence and content plan tailored to your audience.",
}

// Overview is the free dashboard summary.
type Overview struct {
	Connected      bool       `json:"connected"`
	DisplayName    string     `json:"displayName,omitempty"`
	Followers      int64      `json:"followers"`
	Views          int64      `json:"views"`
	StoryViews     int64      `json:"storyViews"`
	EngagementRate float64    `json:"engagementRate"`
	GrowthRate     float64    `json:"growthRate"`
	LastSyncedAt   *time.Time `json:"lastSyncedAt"`
}

// Panel is one premium dashboard section. Locked panels carry no data.
type Panel struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	Premium       bool   `json:"premium"`
	Locked        bool   `json:"locked"`
	UpgradePrompt string `json:"upgradePrompt,omitempty"`
	Data          any    `json:"data,omitempty"`
}

type Dashboard struct {
	IsPremium           bool     `json:"isPremium"`
	Overview            Overview `json:"overview"`
	AudienceInsights    Panel    `json:"audienceInsights"`
	CompetitorAnalysis  Panel    `json:"competitorAnalysis"`
	AIInsights          Panel    `json:"aiInsights"`
	ContentOptimization Panel    `json:"contentOptimization"`
}

// AudienceBreakdown is the audienceInsights panel payload.
type AudienceBreakdown struct {
	Age    map[string]float64 `json:"age"`
	Region map[string]float64 `json:"region"`
}

type DashboardService interface {
	Get(ctx context.Context, userID int64) (*Dashboard, error)
}

type dashboardService struct {
	userRepo     repository.UserRepository
	snapRepo     repository.SnapchatRepository
	analysisRepo repository.AnalysisRepository
	insightRepo  repository.InsightRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewDashboardService(userRepo repository.UserRepository, snapRepo repository.SnapchatRepository, analysisRepo repository.AnalysisRepository, insightRepo repository.InsightRepository, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		userRepo:     userRepo,
		snapRepo:     snapRepo,
		analysisRepo: analysisRepo,
		insightRepo:  insightRepo,
		logger:       logger.With().Str("service", "DashboardService").Logger(),
		now:          time.Now,
	}
}

func (s *dashboardService) Get(ctx context.Context, userID int64) (*Dashboard, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	premium := u.IsPremium(s.now())

	account, err := s.snapRepo.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.snapRepo.RecentSnapshots(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	var latest *model.SnapshotMetrics
	if len(recent) > 0 {
		latest = &recent[0].Data
	}

	d := &Dashboard{
		IsPremium:           premium,
		Overview:            overview(account, latest),
		AudienceInsights:    newPanel(PanelAudienceInsights, "Audience Insights", premium),
		CompetitorAnalysis:  newPanel(PanelCompetitorAnalysis, "Competitor Analysis", premium),
		AIInsights:          newPanel(PanelAIInsights, "AI Insights", premium),
		ContentOptimization: newPanel(PanelContentOptimization, "Content Optimization", premium),
	}
	if !premium {
		return d, nil
	}

	latestAnalysis, err := s.analysisRepo.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	insights, err := s.insightRepo.ListRecent(ctx, userID, 5)
	if err != nil {
		return nil, err
	}

	if latest != nil {
		d.AudienceInsights.Data = AudienceBreakdown{Age: latest.AudienceAge, Region: latest.AudienceRegion}
		var bench *model.Benchmarks
		if latestAnalysis != nil {
			bench = &latestAnalysis.Benchmarks
		}
		d.ContentOptimization.Data = analysis.PlanContent(*latest, bench)
	}
	if latestAnalysis != nil {
		d.CompetitorAnalysis.Data = latestAnalysis
	}
	d.AIInsights.Data = insights
	return d, nil
}

func newPanel(key, title string, premium bool) Panel {
	p := Panel{Key: key, Title: title, Premium: true, Locked: !premium}
	if !premium {
		p.UpgradePrompt = UpgradePrompts[key]
	}
	return p
}

func overview(account *model.SnapchatAccount, latest *model.SnapshotMetrics) Overview {
	o := Overview{}
	if account != nil {
		o.Connected = true
		o.DisplayName = account.DisplayName
		o.LastSyncedAt = account.LastSyncedAt
	}
	if latest != nil {
		o.Followers = latest.Followers
		o.Views = latest.Views
		o.StoryViews = latest.StoryViews
		o.EngagementRate = latest.EngagementRate
		o.GrowthRate = latest.GrowthRate
	}
	return o
}
