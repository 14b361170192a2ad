package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/posm-recon/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Stores(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT store_id, store_name, region, province, channel FROM stores`).
		WillReturnRows(pgxmock.NewRows([]string{"store_id", "store_name", "region", "province", "channel"}).
			AddRow("S1", "S1 Official", "North", "Ha Noi", "MT").
			AddRow("S2", "Riverside Megastore", "South", "Can Tho", "GT"))

	got, err := s.Stores(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "S1 Official", got[0].StoreName)
	assert.Equal(t, "South", got[1].Region)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Submissions(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	submitted := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	responses := []byte(`[{"model":"M1","posm_selections":[{"posm_code":"P1","selected":true}]}]`)

	mock.ExpectQuery(`SELECT id, leader_label, shop_name_label, submitted_at, responses FROM submissions`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "leader_label", "shop_name_label", "submitted_at", "responses"}).
			AddRow("sub-1", "TL9", "S1 Official", submitted, responses))

	got, err := s.Submissions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sub-1", got[0].ID)
	require.Len(t, got[0].ModelResponses, 1)
	assert.Equal(t, "M1", got[0].ModelResponses[0].Model)
	assert.True(t, got[0].ModelResponses[0].POSMSelections[0].Selected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedStores(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO stores`).
		WithArgs("S1", "S1 Official", "North", "Ha Noi", "MT").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SeedStores(context.Background(), []model.Store{
		{StoreID: "S1", StoreName: "S1 Official", Region: "North", Province: "Ha Noi", Channel: "MT"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedPOSMRequirements_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO posm_requirements`).
		WillReturnError(assert.AnError)

	err := s.SeedPOSMRequirements(context.Background(), []model.POSMRequirement{
		{Model: "M1", POSMCode: "P1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed posm requirements")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS stores`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
