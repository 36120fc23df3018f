package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ducksnap/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// AnalysisRepository persists competitor analyses.
type AnalysisRepository interface {
	Create(ctx context.Context, a *model.CompetitorAnalysis) error
	// GetLatest returns the newest analysis for the user, or nil if none exists.
	GetLatest(ctx context.Context, userID int64) (*model.CompetitorAnalysis, error)
}

type analysisRepo struct {
	db *sql.DB
}

func NewAnalysisRepo(db *sql.DB) AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, a *model.CompetitorAnalysis) error {
	benchmarks, err := json.Marshal(a.Benchmarks)
	if err != nil {
		return fmt.Errorf("marshal benchmarks: %w", err)
	}
	insights, err := json.Marshal(a.Insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}
	competitors, err := json.Marshal(a.CompetitorData)
	if err != nil {
		return fmt.Errorf("marshal competitor data: %w", err)
	}

	query, args, err := psql.Insert("competitor_analyses").
		Columns("user_id", "user_ranking", "total_competitors", "benchmarks", "insights", "recommendations", "competitor_data").
		Values(a.UserID, a.UserRanking, a.TotalCompetitors, string(benchmarks), string(insights), pq.StringArray(a.Recommendations), string(competitors)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert analysis: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("insert analysis for user %d: %w", a.UserID, err)
	}
	return nil
}

func (r *analysisRepo) GetLatest(ctx context.Context, userID int64) (*model.CompetitorAnalysis, error) {
	query, args, err := psql.Select("id", "user_id", "user_ranking", "total_competitors", "benchmarks", "insights", "recommendations", "competitor_data", "created_at").
		From("competitor_analyses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select analysis: %w", err)
	}

	var (
		a                                 model.CompetitorAnalysis
		rawBench, rawInsights, rawCompets []byte
		recs                              pq.StringArray
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.UserID, &a.UserRanking, &a.TotalCompetitors,
		&rawBench, &rawInsights, &recs, &rawCompets, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch latest analysis for user %d: %w", userID, err)
	}
	if err := json.Unmarshal(rawBench, &a.Benchmarks); err != nil {
		return nil, fmt.Errorf("unmarshal benchmarks: %w", err)
	}
	if err := json.Unmarshal(rawInsights, &a.Insights); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	if err := json.Unmarshal(rawCompets, &a.CompetitorData); err != nil {
		return nil, fmt.Errorf("unmarshal competitor data: %w", err)
	}
	a.Recommendations = []string(recs)
	return &a, nil
}
