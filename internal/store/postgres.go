package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/posm-recon/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock's pool
// satisfies it in unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS stores (
	store_id   TEXT PRIMARY KEY,
	store_name TEXT NOT NULL,
	region     TEXT NOT NULL DEFAULT '',
	province   TEXT NOT NULL DEFAULT '',
	channel    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS display_assignments (
	store_id     TEXT NOT NULL,
	model        TEXT NOT NULL,
	is_displayed BOOLEAN NOT NULL DEFAULT true,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (store_id, model)
);

CREATE TABLE IF NOT EXISTS posm_requirements (
	model     TEXT NOT NULL,
	posm_code TEXT NOT NULL,
	posm_name TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (model, posm_code)
);

CREATE TABLE IF NOT EXISTS submissions (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	leader_label    TEXT NOT NULL DEFAULT '',
	shop_name_label TEXT NOT NULL DEFAULT '',
	submitted_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	responses       JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_display_assignments_model ON display_assignments(model);
CREATE INDEX IF NOT EXISTS idx_posm_requirements_model ON posm_requirements(model);
CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Stores(ctx context.Context) ([]model.Store, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT store_id, store_name, region, province, channel FROM stores ORDER BY store_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list stores")
	}
	defer rows.Close()

	var out []model.Store
	for rows.Next() {
		var st model.Store
		if err := rows.Scan(&st.StoreID, &st.StoreName, &st.Region, &st.Province, &st.Channel); err != nil {
			return nil, eris.Wrap(err, "postgres: scan store")
		}
		out = append(out, st)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate stores")
}

func (s *PostgresStore) DisplayAssignments(ctx context.Context) ([]model.DisplayAssignment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT store_id, model, is_displayed, updated_at FROM display_assignments ORDER BY store_id, model`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list display assignments")
	}
	defer rows.Close()

	var out []model.DisplayAssignment
	for rows.Next() {
		var da model.DisplayAssignment
		if err := rows.Scan(&da.StoreID, &da.Model, &da.IsDisplayed, &da.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan display assignment")
		}
		out = append(out, da)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate display assignments")
}

func (s *PostgresStore) POSMRequirements(ctx context.Context) ([]model.POSMRequirement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT model, posm_code, posm_name FROM posm_requirements ORDER BY model, posm_code`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list posm requirements")
	}
	defer rows.Close()

	var out []model.POSMRequirement
	for rows.Next() {
		var req model.POSMRequirement
		if err := rows.Scan(&req.Model, &req.POSMCode, &req.POSMName); err != nil {
			return nil, eris.Wrap(err, "postgres: scan posm requirement")
		}
		out = append(out, req)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate posm requirements")
}

func (s *PostgresStore) Submissions(ctx context.Context) ([]model.SurveySubmission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, leader_label, shop_name_label, submitted_at, responses FROM submissions ORDER BY submitted_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list submissions")
	}
	defer rows.Close()

	var out []model.SurveySubmission
	for rows.Next() {
		var (
			sub           model.SurveySubmission
			responsesJSON []byte
		)
		if err := rows.Scan(&sub.ID, &sub.LeaderLabel, &sub.ShopNameLabel, &sub.SubmittedAt, &responsesJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan submission")
		}
		if err := json.Unmarshal(responsesJSON, &sub.ModelResponses); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal responses for %s", sub.ID)
		}
		out = append(out, sub)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate submissions")
}

func (s *PostgresStore) SeedStores(ctx context.Context, stores []model.Store) error {
	for i, st := range stores {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO stores (store_id, store_name, region, province, channel) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (store_id) DO UPDATE SET store_name=excluded.store_name, region=excluded.region,
			 province=excluded.province, channel=excluded.channel`,
			st.StoreID, st.StoreName, st.Region, st.Province, st.Channel,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed stores: row %d", i)
		}
	}
	return nil
}

func (s *PostgresStore) SeedDisplayAssignments(ctx context.Context, assignments []model.DisplayAssignment) error {
	for i, da := range assignments {
		updated := da.UpdatedAt
		if updated.IsZero() {
			updated = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO display_assignments (store_id, model, is_displayed, updated_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (store_id, model) DO UPDATE SET is_displayed=excluded.is_displayed, updated_at=excluded.updated_at`,
			da.StoreID, da.Model, da.IsDisplayed, updated,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed display assignments: row %d", i)
		}
	}
	return nil
}

func (s *PostgresStore) SeedPOSMRequirements(ctx context.Context, requirements []model.POSMRequirement) error {
	for i, req := range requirements {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO posm_requirements (model, posm_code, posm_name) VALUES ($1, $2, $3)
			 ON CONFLICT (model, posm_code) DO UPDATE SET posm_name=excluded.posm_name`,
			req.Model, req.POSMCode, req.POSMName,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed posm requirements: row %d", i)
		}
	}
	return nil
}

func (s *PostgresStore) SeedSubmissions(ctx context.Context, submissions []model.SurveySubmission) error {
	for i, sub := range submissions {
		responsesJSON, err := json.Marshal(sub.ModelResponses)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal responses for %s", sub.ID)
		}
		id := sub.ID
		if id == "" {
			id = uuid.New().String()
		}
		submitted := sub.SubmittedAt
		if submitted.IsZero() {
			submitted = time.Now().UTC()
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO submissions (id, leader_label, shop_name_label, submitted_at, responses) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET leader_label=excluded.leader_label, shop_name_label=excluded.shop_name_label,
			 submitted_at=excluded.submitted_at, responses=excluded.responses`,
			id, sub.LeaderLabel, sub.ShopNameLabel, submitted, responsesJSON,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed submissions: row %d", i)
		}
	}
	return nil
}
