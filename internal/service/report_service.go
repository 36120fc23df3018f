package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ducksnap/internal/model"
	"ducksnap/internal/repository"

	"github.com/rs/zerolog"
)

// Retention windows for report history.
const (
	FreeRetention    = 30 * 24 * time.Hour
	PremiumRetention = 365 * 24 * time.Hour
	exportLinkTTL    = 15 * time.Minute
	recentInsights   = 20
)

type ReportHistory struct {
	RetentionDays int                      `json:"retentionDays"`
	Snapshots     []model.SnapchatSnapshot `json:"snapshots"`
}

type ExportResult struct {
	Format    string    `json:"format"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Rows      int       `json:"rows"`
}

type ReportService interface {
	History(ctx context.Context, userID int64) (*ReportHistory, error)
	// Export uploads the premium history as csv or json and returns a short-lived link.
	Export(ctx context.Context, userID int64, format string) (*ExportResult, error)
	Insights(ctx context.Context, userID int64) ([]model.Insight, error)
}

type reportService struct {
	userRepo    repository.UserRepository
	snapRepo    repository.SnapchatRepository
	insightRepo repository.InsightRepository
	storage     ExportStorage
	logger      zerolog.Logger
	now         func() time.Time
}

func NewReportService(userRepo repository.UserRepository, snapRepo repository.SnapchatRepository, insightRepo repository.InsightRepository, storage ExportStorage, logger zerolog.Logger) ReportService {
	return &reportService{
		userRepo:    userRepo,
		snapRepo:    snapRepo,
		insightRepo: insightRepo,
		storage:     storage,
		logger:      logger.With().Str("service", "ReportService").Logger(),
		now:         time.Now,
	}
}

func (s *reportService) History(ctx context.Context, userID int64) (*ReportHistory, error) {
	u, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	retention := FreeRetention
	if u.IsPremium(s.now()) {
		retention = PremiumRetention
	}
	snaps, err := s.snapRepo.SnapshotsSince(ctx, userID, s.now().Add(-retention))
	if err != nil {
		return nil, err
	}
	return &ReportHistory{RetentionDays: int(retention.Hours() / 24), Snapshots: snaps}, nil
}

func (s *reportService) Export(ctx context.Context, userID int64, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	var contentType string
	switch format {
	case "csv":
		contentType = "text/csv"
	case "json":
		contentType = "application/json"
	default:
		return nil, ErrInvalidFormat
	}

	now := s.now().UTC()
	snaps, err := s.snapRepo.SnapshotsSince(ctx, userID, now.Add(-PremiumRetention))
	if err != nil {
		return nil, err
	}

	var body []byte
	if format == "csv" {
		body, err = snapshotsCSV(snaps)
	} else {
		body, err = json.MarshalIndent(map[string]any{
			"userId":      userID,
			"generatedAt": now,
			"snapshots":   snaps,
		}, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%d/%s.%s", userID, now.Format("20060102T150405Z"), format)
	if err := s.storage.Put(ctx, key, contentType, body); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Str("key", key).Msg("Failed to upload export")
		return nil, err
	}
	url, err := s.storage.PresignGet(ctx, key, exportLinkTTL)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", userID).Str("key", key).Int("rows", len(snaps)).Msg("Report exported")
	return &ExportResult{Format: format, Key: key, URL: url, ExpiresAt: now.Add(exportLinkTTL), Rows: len(snaps)}, nil
}

var csvHeader = []string{"fetched_at", "followers", "views", "story_views", "engagement_rate", "growth_rate", "content_frequency"}

func snapshotsCSV(snaps []model.SnapchatSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, sn := range snaps {
		d := sn.Data
		if err := w.Write([]string{
			sn.FetchedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(d.Followers, 10),
			strconv.FormatInt(d.Views, 10),
			strconv.FormatInt(d.StoryViews, 10),
			strconv.FormatFloat(d.EngagementRate, 'f', 2, 64),
			strconv.FormatFloat(d.GrowthRate, 'f', 2, 64),
			strconv.FormatFloat(d.ContentFrequency, 'f', 2, 64),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *reportService) Insights(ctx context.Context, userID int64) ([]model.Insight, error) {
	return s.insightRepo.ListRecent(ctx, userID, recentInsights)
}
