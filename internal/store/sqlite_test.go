package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/posm-recon/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_StoresRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	stores := []model.Store{
		{StoreID: "S2", StoreName: "Riverside Megastore", Region: "South", Province: "Can Tho", Channel: "GT"},
		{StoreID: "S1", StoreName: "S1 Official", Region: "North", Province: "Ha Noi", Channel: "MT"},
	}
	require.NoError(t, s.SeedStores(ctx, stores))

	got, err := s.Stores(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Listed in store_id order regardless of seed order.
	assert.Equal(t, "S1", got[0].StoreID)
	assert.Equal(t, "S1 Official", got[0].StoreName)
	assert.Equal(t, "North", got[0].Region)
	assert.Equal(t, "S2", got[1].StoreID)
}

func TestSQLiteStore_SeedUpserts(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SeedStores(ctx, []model.Store{{StoreID: "S1", StoreName: "Old Name"}}))
	require.NoError(t, s.SeedStores(ctx, []model.Store{{StoreID: "S1", StoreName: "New Name", Region: "North"}}))

	got, err := s.Stores(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New Name", got[0].StoreName)
	assert.Equal(t, "North", got[0].Region)
}

func TestSQLiteStore_DisplayAssignments(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	updated := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SeedDisplayAssignments(ctx, []model.DisplayAssignment{
		{StoreID: "S1", Model: "M2", IsDisplayed: false, UpdatedAt: updated},
		{StoreID: "S1", Model: "M1", IsDisplayed: true, UpdatedAt: updated},
	}))

	got, err := s.DisplayAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "M1", got[0].Model)
	assert.True(t, got[0].IsDisplayed)
	assert.Equal(t, "M2", got[1].Model)
	assert.False(t, got[1].IsDisplayed)
}

func TestSQLiteStore_POSMRequirements(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SeedPOSMRequirements(ctx, []model.POSMRequirement{
		{Model: "M1", POSMCode: "P2", POSMName: "Shelf Strip"},
		{Model: "M1", POSMCode: "P1", POSMName: "Wobbler"},
	}))

	got, err := s.POSMRequirements(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P1", got[0].POSMCode)
	assert.Equal(t, "Wobbler", got[0].POSMName)
}

func TestSQLiteStore_SubmissionsRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	sub := model.SurveySubmission{
		ID:            "sub-1",
		LeaderLabel:   "TL9 Nguyen Van A",
		ShopNameLabel: "S1 Official",
		SubmittedAt:   time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		ModelResponses: []model.ModelResponse{
			{Model: "M1", POSMSelections: []model.POSMSelection{
				{POSMCode: "P1", Selected: true},
				{POSMCode: "P2", Selected: false},
			}},
		},
	}
	require.NoError(t, s.SeedSubmissions(ctx, []model.SurveySubmission{sub}))

	got, err := s.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sub-1", got[0].ID)
	assert.Equal(t, "S1 Official", got[0].ShopNameLabel)
	require.Len(t, got[0].ModelResponses, 1)
	require.Len(t, got[0].ModelResponses[0].POSMSelections, 2)
	assert.True(t, got[0].ModelResponses[0].POSMSelections[0].Selected)
	assert.False(t, got[0].ModelResponses[0].POSMSelections[1].Selected)
}

func TestSQLiteStore_SeedSubmissionsAssignsID(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	sub := model.SurveySubmission{
		ShopNameLabel: "Unnamed Shop",
		ModelResponses: []model.ModelResponse{
			{Model: "M1", POSMSelections: []model.POSMSelection{{POSMCode: "P1", Selected: true}}},
		},
	}
	require.NoError(t, s.SeedSubmissions(ctx, []model.SurveySubmission{sub}))

	got, err := s.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
}

func TestSQLiteStore_EmptySeedsNoop(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SeedStores(ctx, nil))
	require.NoError(t, s.SeedSubmissions(ctx, nil))

	got, err := s.Stores(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
