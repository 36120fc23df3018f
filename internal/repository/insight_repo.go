package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ducksnap/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/blockloop/scan/v2"
)

type InsightRepository interface {
	Create(ctx context.Context, userID int64, insight string) error
	ListRecent(ctx context.Context, userID int64, limit uint64) ([]model.Insight, error)
}

type insightRepo struct {
	db *sql.DB
}

func NewInsightRepo(db *sql.DB) InsightRepository {
	return &insightRepo{db: db}
}

func (r *insightRepo) Create(ctx context.Context, userID int64, insight string) error {
	query, args, err := psql.Insert("ai_insights").
		Columns("user_id", "insight").
		Values(userID, insight).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert insight: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert insight for user %d: %w", userID, err)
	}
	return nil
}

func (r *insightRepo) ListRecent(ctx context.Context, userID int64, limit uint64) ([]model.Insight, error) {
	query, args, err := psql.Select("id", "user_id", "insight", "created_at").
		From("ai_insights").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select insights: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query insights for user %d: %w", userID, err)
	}
	defer rows.Close()

	insights := []model.Insight{}
	if err := scan.Rows(&insights, rows); err != nil {
		return nil, fmt.Errorf("scan insights: %w", err)
	}
	return insights, nil
}
