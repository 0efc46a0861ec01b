package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"airbnb-pricer/utils"
)

// TrainingRun is one candidate-model outcome within a training run, keyed by
// the run ID shared across all candidates of that run.
type TrainingRun struct {
	RunID     string
	ModelName string
	Selected  bool
	R2        float64
	MAE       float64
	RMSE      float64
	MAPE      float64
	Seed      int64
	Features  int
}

// PostgresWriter persists training-run history to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := utils.Retry(logger, "postgres ping", 5, 2*time.Second, db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS training_runs (
			id         SERIAL PRIMARY KEY,
			run_id     VARCHAR(36)   NOT NULL,
			model_name VARCHAR(80)   NOT NULL,
			selected   BOOLEAN       NOT NULL DEFAULT FALSE,
			r2         DOUBLE PRECISION NOT NULL,
			mae        DOUBLE PRECISION NOT NULL,
			rmse       DOUBLE PRECISION NOT NULL,
			mape       DOUBLE PRECISION NOT NULL,
			seed       BIGINT        NOT NULL,
			features   INTEGER       NOT NULL,
			created_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_training_runs_run_id ON training_runs(run_id);
		CREATE INDEX IF NOT EXISTS idx_training_runs_model  ON training_runs(model_name);
	`)
	return err
}

// SaveRun inserts all candidate outcomes of one training run.
func (pw *PostgresWriter) SaveRun(runs []TrainingRun) error {
	if len(runs) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(runs))
	valueArgs := make([]interface{}, 0, len(runs)*9)
	for idx, r := range runs {
		base := idx * 9
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		valueArgs = append(valueArgs,
			r.RunID, r.ModelName, r.Selected, r.R2, r.MAE, r.RMSE, r.MAPE, r.Seed, r.Features)
	}

	query := fmt.Sprintf(`
		INSERT INTO training_runs (run_id, model_name, selected, r2, mae, rmse, mape, seed, features)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}
	return nil
}

// FetchRuns retrieves the stored history for a given run ID.
func (pw *PostgresWriter) FetchRuns(runID string) ([]TrainingRun, error) {
	rows, err := pw.db.Query(`
		SELECT run_id, model_name, selected, r2, mae, rmse, mape, seed, features
		FROM training_runs
		WHERE run_id = $1
		ORDER BY r2 DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch runs: %w", err)
	}
	defer rows.Close()

	var out []TrainingRun
	for rows.Next() {
		var r TrainingRun
		if err := rows.Scan(&r.RunID, &r.ModelName, &r.Selected,
			&r.R2, &r.MAE, &r.RMSE, &r.MAPE, &r.Seed, &r.Features); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
