package repository

import (
	"context"
	"testing"
	"time"

	"ducksnap/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRepo_GetLatest(t *testing.T) {
	t.Run("decodes json columns", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAnalysisRepo(db)
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "user_id", "user_ranking", "total_competitors", "benchmarks", "insights", "recommendations", "competitor_data", "created_at"}).
			AddRow(int64(1), int64(2), 3, 10,
				[]byte(`{"avgEngagementRate":0.05,"avgFollowerGrowth":0.01,"avgContentFrequency":4,"topPerformers":[]}`),
				[]byte(`{"marketPosition":"Top Performer","strengthAreas":["Engagement"],"improvementAreas":[],"opportunities":[],"threats":[]}`),
				"{\"Post more often\"}",
				[]byte(`[{"id":"c1","name":"Rival","followers":1000}]`),
				now)
		mock.ExpectQuery(`SELECT .* FROM competitor_analyses WHERE user_id = \$1 ORDER BY created_at DESC LIMIT 1`).
			WithArgs(int64(2)).
			WillReturnRows(rows)

		a, err := repo.GetLatest(context.Background(), 2)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "Top Performer", a.Insights.MarketPosition)
		assert.Equal(t, []string{"Post more often"}, a.Recommendations)
		require.Len(t, a.CompetitorData, 1)
		assert.Equal(t, "Rival", a.CompetitorData[0].Name)
	})

	t.Run("returns nil when none", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAnalysisRepo(db)

		mock.ExpectQuery(`FROM competitor_analyses`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		a, err := repo.GetLatest(context.Background(), 2)
		assert.NoError(t, err)
		assert.Nil(t, a)
	})
}

func TestAnalysisRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnalysisRepo(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO competitor_analyses`).
		WithArgs(int64(2), 1, 4, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), now))

	a := &model.CompetitorAnalysis{UserID: 2, UserRanking: 1, TotalCompetitors: 4, Recommendations: []string{"x"}}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, int64(8), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
