package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// evaluationsSchema mirrors the table the arena front end appends to.
const evaluationsSchema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	evaluator_email  TEXT,
	image_path       TEXT,
	image_id         TEXT,
	species          TEXT,
	model_a          TEXT,
	model_b          TEXT,
	time_a           REAL,
	time_b           REAL,
	text_len_a       INTEGER,
	text_len_b       INTEGER,
	model_response_a TEXT,
	model_response_b TEXT,
	result_code      TEXT,
	comments         TEXT,
	prompt           TEXT,
	temperature      REAL,
	created_at       TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteSource reads the evaluations table of an arena database.
type SQLiteSource struct {
	db *sqlx.DB
}

// OpenSQLite opens the database at dbPath for writing, creating the file
// and the evaluations table when missing. Only importers should use it;
// readers go through [OpenSQLiteReadOnly].
func OpenSQLite(dbPath string) (*SQLiteSource, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteSource{db: db}
	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

// OpenSQLiteReadOnly opens an existing arena database without touching it:
// no file is created, no schema is applied and the journal mode is left
// as the arena set it. A missing file is an error wrapping os.ErrNotExist.
func OpenSQLiteReadOnly(dbPath string) (*SQLiteSource, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db, err := sqlx.Open("sqlite", "file:"+dbPath+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &SQLiteSource{db: db}, nil
}

// EnsureSchema creates the evaluations table if it does not exist.
func (s *SQLiteSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, evaluationsSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

type evaluationRow struct {
	ID        int64           `db:"id"`
	ModelA    sql.NullString  `db:"model_a"`
	ModelB    sql.NullString  `db:"model_b"`
	Species   sql.NullString  `db:"species"`
	ResponseA sql.NullString  `db:"model_response_a"`
	ResponseB sql.NullString  `db:"model_response_b"`
	Result    sql.NullString  `db:"result_code"`
	Evaluator sql.NullString  `db:"evaluator_email"`
	ImageID   sql.NullString  `db:"image_id"`
	ImagePath sql.NullString  `db:"image_path"`
	TimeA     sql.NullFloat64 `db:"time_a"`
	TimeB     sql.NullFloat64 `db:"time_b"`
	Comments  sql.NullString  `db:"comments"`
}

const selectEvaluations = `
SELECT id, model_a, model_b, species, model_response_a, model_response_b,
       result_code, evaluator_email, image_id, image_path, time_a, time_b, comments
FROM evaluations
ORDER BY id`

// Snapshot implements [Source]. Rows are returned in insertion order.
func (s *SQLiteSource) Snapshot(ctx context.Context) ([]duel.Record, error) {
	var rows []evaluationRow
	if err := s.db.SelectContext(ctx, &rows, selectEvaluations); err != nil {
		return nil, fmt.Errorf("sqlite: select evaluations: %w", err)
	}

	out := make([]duel.Record, 0, len(rows))
	for _, row := range rows {
		result, err := duel.ParseResultCode(row.Result.String)
		if err != nil {
			return nil, fmt.Errorf("sqlite: evaluation %d: %w", row.ID, err)
		}
		rec := duel.Record{
			ModelA:    row.ModelA.String,
			ModelB:    row.ModelB.String,
			Species:   row.Species.String,
			ResponseA: row.ResponseA.String,
			ResponseB: row.ResponseB.String,
			Result:    result,
			Evaluator: row.Evaluator.String,
			ImageID:   row.ImageID.String,
			ImagePath: row.ImagePath.String,
			TimeA:     row.TimeA.Float64,
			TimeB:     row.TimeB.Float64,
			Comments:  row.Comments.String,
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("sqlite: evaluation %d: %w", row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Append inserts records into the evaluations table in one transaction.
func (s *SQLiteSource) Append(ctx context.Context, records []duel.Record) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `
INSERT INTO evaluations (
	evaluator_email, image_path, image_id, species, model_a, model_b,
	time_a, time_b, text_len_a, text_len_b, model_response_a, model_response_b,
	result_code, comments
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("sqlite: record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			rec.Evaluator, rec.ImagePath, rec.ImageID, rec.Species, rec.ModelA, rec.ModelB,
			rec.TimeA, rec.TimeB, len(rec.ResponseA), len(rec.ResponseB), rec.ResponseA, rec.ResponseB,
			rec.Result.Stored(), rec.Comments,
		); err != nil {
			return fmt.Errorf("sqlite: insert record %d: %w", i, err)
		}
	}
	return tx.Commit()
}
