package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/posm-recon/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	is_displayed INTEGER NOT NULL DEFAULT 1,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (store_id, model)
);

CREATE TABLE IF NOT EXISTS posm_requirements (
	model     TEXT NOT NULL,
	posm_code TEXT NOT NULL,
	posm_name TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (model, posm_code)
);

CREATE TABLE IF NOT EXISTS submissions (
	id              TEXT PRIMARY KEY,
	leader_label    TEXT NOT NULL DEFAULT '',
	shop_name_label TEXT NOT NULL DEFAULT '',
	submitted_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	responses       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_display_assignments_model ON display_assignments(model);
CREATE INDEX IF NOT EXISTS idx_posm_requirements_model ON posm_requirements(model);
CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Stores(ctx context.Context) ([]model.Store, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT store_id, store_name, region, province, channel FROM stores ORDER BY store_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list stores")
	}
	defer rows.Close()

	var out []model.Store
	for rows.Next() {
		var st model.Store
		if err := rows.Scan(&st.StoreID, &st.StoreName, &st.Region, &st.Province, &st.Channel); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan store")
		}
		out = append(out, st)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate stores")
}

func (s *SQLiteStore) DisplayAssignments(ctx context.Context) ([]model.DisplayAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT store_id, model, is_displayed, updated_at FROM display_assignments ORDER BY store_id, model`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list display assignments")
	}
	defer rows.Close()

	var out []model.DisplayAssignment
	for rows.Next() {
		var da model.DisplayAssignment
		if err := rows.Scan(&da.StoreID, &da.Model, &da.IsDisplayed, &da.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan display assignment")
		}
		out = append(out, da)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate display assignments")
}

func (s *SQLiteStore) POSMRequirements(ctx context.Context) ([]model.POSMRequirement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, posm_code, posm_name FROM posm_requirements ORDER BY model, posm_code`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list posm requirements")
	}
	defer rows.Close()

	var out []model.POSMRequirement
	for rows.Next() {
		var req model.POSMRequirement
		if err := rows.Scan(&req.Model, &req.POSMCode, &req.POSMName); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan posm requirement")
		}
		out = append(out, req)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate posm requirements")
}

func (s *SQLiteStore) Submissions(ctx context.Context) ([]model.SurveySubmission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, leader_label, shop_name_label, submitted_at, responses FROM submissions ORDER BY submitted_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list submissions")
	}
	defer rows.Close()

	var out []model.SurveySubmission
	for rows.Next() {
		var (
			sub           model.SurveySubmission
			responsesJSON string
		)
		if err := rows.Scan(&sub.ID, &sub.LeaderLabel, &sub.ShopNameLabel, &sub.SubmittedAt, &responsesJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan submission")
		}
		if err := json.Unmarshal([]byte(responsesJSON), &sub.ModelResponses); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal responses for %s", sub.ID)
		}
		out = append(out, sub)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate submissions")
}

func (s *SQLiteStore) SeedStores(ctx context.Context, stores []model.Store) error {
	return s.seed(ctx, "seed stores",
		`INSERT INTO stores (store_id, store_name, region, province, channel) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(store_id) DO UPDATE SET store_name=excluded.store_name, region=excluded.region,
		 province=excluded.province, channel=excluded.channel`,
		len(stores), func(i int) []any {
			st := stores[i]
			return []any{st.StoreID, st.StoreName, st.Region, st.Province, st.Channel}
		})
}

func (s *SQLiteStore) SeedDisplayAssignments(ctx context.Context, assignments []model.DisplayAssignment) error {
	return s.seed(ctx, "seed display assignments",
		`INSERT INTO display_assignments (store_id, model, is_displayed, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(store_id, model) DO UPDATE SET is_displayed=excluded.is_displayed, updated_at=excluded.updated_at`,
		len(assignments), func(i int) []any {
			da := assignments[i]
			updated := da.UpdatedAt
			if updated.IsZero() {
				updated = time.Now().UTC()
			}
			return []any{da.StoreID, da.Model, da.IsDisplayed, updated}
		})
}

func (s *SQLiteStore) SeedPOSMRequirements(ctx context.Context, requirements []model.POSMRequirement) error {
	return s.seed(ctx, "seed posm requirements",
		`INSERT INTO posm_requirements (model, posm_code, posm_name) VALUES (?, ?, ?)
		 ON CONFLICT(model, posm_code) DO UPDATE SET posm_name=excluded.posm_name`,
		len(requirements), func(i int) []any {
			req := requirements[i]
			return []any{req.Model, req.POSMCode, req.POSMName}
		})
}

func (s *SQLiteStore) SeedSubmissions(ctx context.Context, submissions []model.SurveySubmission) error {
	rowsJSON := make([]string, len(submissions))
	for i, sub := range submissions {
		buf, err := json.Marshal(sub.ModelResponses)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal responses for %s", sub.ID)
		}
		rowsJSON[i] = string(buf)
	}
	return s.seed(ctx, "seed submissions",
		`INSERT INTO submissions (id, leader_label, shop_name_label, submitted_at, responses) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET leader_label=excluded.leader_label, shop_name_label=excluded.shop_name_label,
		 submitted_at=excluded.submitted_at, responses=excluded.responses`,
		len(submissions), func(i int) []any {
			sub := submissions[i]
			id := sub.ID
			if id == "" {
				id = uuid.New().String()
			}
			submitted := sub.SubmittedAt
			if submitted.IsZero() {
				submitted = time.Now().UTC()
			}
			return []any{id, sub.LeaderLabel, sub.ShopNameLabel, submitted, rowsJSON[i]}
		})
}

// seed runs one upsert statement per row inside a single transaction.
func (s *SQLiteStore) seed(ctx context.Context, op, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrapf(err, "sqlite: %s: begin tx", op)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrapf(err, "sqlite: %s: prepare", op)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return eris.Wrapf(err, "sqlite: %s: row %d", op, i)
		}
	}
	return eris.Wrapf(tx.Commit(), "sqlite: %s: commit", op)
}
