package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ducksnap/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReports(users ...*model.User) (*reportService, *fakeSnapRepo, *fakeStorage) {
	snaps, storage := newFakeSnapRepo(), &fakeStorage{}
	svc := NewReportService(newFakeUserRepo(users...), snaps, &fakeInsightRepo{}, storage, zerolog.Nop()).(*reportService)
	svc.now = clock
	return svc, snaps, storage
}

func seedHistory(snaps *fakeSnapRepo, userID int64) {
	for _, days := range []int{200, 40, 5} {
		snaps.add(userID, fixedNow.Add(-time.Duration(days)*24*time.Hour), model.SnapshotMetrics{Followers: int64(1000 - days), EngagementRate: 3.456})
	}
}

func TestHistoryRetentionByTier(t *testing.T) {
	svc, snaps, _ := newReports(freeUser(1), premiumUser(2, fixedNow.Add(time.Hour)))
	seedHistory(snaps, 1)
	seedHistory(snaps, 2)

	free, err := svc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 30, free.RetentionDays)
	assert.Len(t, free.Snapshots, 1)

	premium, err := svc.History(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 365, premium.RetentionDays)
	assert.Len(t, premium.Snapshots, 3)
}

func TestExportCSV(t *testing.T) {
	svc, snaps, storage := newReports(premiumUser(2, fixedNow.Add(time.Hour)))
	seedHistory(snaps, 2)

	res, err := svc.Export(context.Background(), 2, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", res.Format)
	assert.Equal(t, "exports/2/20260310T120000Z.csv", res.Key)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, fixedNow.Add(exportLinkTTL), res.ExpiresAt)
	assert.Contains(t, res.URL, res.Key)

	body := string(storage.objects[res.Key])
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(csvHeader, ","), lines[0])
	assert.Contains(t, lines[1], ",800,")
	assert.Contains(t, lines[1], "3.46")
	assert.Equal(t, "text/csv", storage.types[res.Key])
}

func TestExportJSON(t *testing.T) {
	svc, snaps, storage := newReports(premiumUser(2, fixedNow.Add(time.Hour)))
	seedHistory(snaps, 2)

	res, err := svc.Export(context.Background(), 2, "json")
	require.NoError(t, err)

	var decoded struct {
		UserID    int64                    `json:"userId"`
		Snapshots []model.SnapchatSnapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(storage.objects[res.Key], &decoded))
	assert.Equal(t, int64(2), decoded.UserID)
	assert.Len(t, decoded.Snapshots, 3)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, _, storage := newReports(premiumUser(2, fixedNow.Add(time.Hour)))

	_, err := svc.Export(context.Background(), 2, "xlsx")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Empty(t, storage.objects)
}
