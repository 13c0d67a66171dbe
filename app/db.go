package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"example/chess-ingest/app/config"
	"example/chess-ingest/app/models"
)

const (
	ProfilesTable = "players_profiles"
	GamesTable    = "players_games"

	loadIDColumn = "_load_id"
)

// WriteMode says whether a load replaces the table contents or appends to them.
type WriteMode int

const (
	Append WriteMode = iota
	Replace
)

var db *sql.DB

var errNoDatabase = errors.New("database not configured")

// MustInitDB opens the Postgres pool and creates the jobs table. Without a
// configured host it leaves db nil and every write becomes a no-op.
func MustInitDB(cfg config.PostgresConfig, logger *slog.Logger) {
	if !cfg.Enabled() {
		logger.Warn("POSTGRES_URL not set; batches will not be persisted")
		return
	}

	d, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		logger.Error("sql.Open failed", "err", err)
		panic(err)
	}
	if err := d.Ping(); err != nil {
		logger.Error("db.Ping failed", "err", err)
		panic(err)
	}
	if _, err := d.Exec(jobsTableDDL); err != nil {
		logger.Error("creating jobs table failed", "err", err)
		panic(err)
	}

	logger.Info("Connected to Postgres", "host", cfg.URL)
	db = d
}

// DBEnabled reports whether MustInitDB connected.
func DBEnabled() bool { return db != nil }

// flatColumn is one SQL column; struct children are flattened as parent__child.
type flatColumn struct {
	name     string
	sqlType  string
	nullable bool
	value    func(row int) any
}

func flattenColumns(rec arrow.Record) ([]flatColumn, error) {
	var cols []flatColumn
	for i, f := range rec.Schema().Fields() {
		col := rec.Column(i)
		st, isStruct := f.Type.(*arrow.StructType)
		if !isStruct {
			sqlType, err := sqlTypeFor(f.Type)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", f.Name, err)
			}
			cols = append(cols, flatColumn{
				name:     f.Name,
				sqlType:  sqlType,
				nullable: f.Nullable,
				value:    func(row int) any { return cellValue(col, row) },
			})
			continue
		}

		parent, ok := col.(*array.Struct)
		if !ok {
			return nil, fmt.Errorf("column %s: expected struct array, got %T", f.Name, col)
		}
		for j, cf := range st.Fields() {
			sqlType, err := sqlTypeFor(cf.Type)
			if err != nil {
				return nil, fmt.Errorf("column %s.%s: %w", f.Name, cf.Name, err)
			}
			child := parent.Field(j)
			cols = append(cols, flatColumn{
				name:     f.Name + "__" + cf.Name,
				sqlType:  sqlType,
				nullable: f.Nullable || cf.Nullable,
				value: func(row int) any {
					if parent.IsNull(row) {
						return nil
					}
					return cellValue(child, row)
				},
			})
		}
	}
	return cols, nil
}

func sqlTypeFor(t arrow.DataType) (string, error) {
	switch t.ID() {
	case arrow.INT32:
		return "INT", nil
	case arrow.INT64:
		return "BIGINT", nil
	case arrow.FLOAT32:
		return "REAL", nil
	case arrow.STRING:
		return "TEXT", nil
	case arrow.BOOL:
		return "BOOLEAN", nil
	}
	return "", fmt.Errorf("no postgres type for %s", t)
}

func cellValue(arr arrow.Array, row int) any {
	if arr.IsNull(row) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int32:
		return a.Value(row)
	case *array.Int64:
		return a.Value(row)
	case *array.Float32:
		return a.Value(row)
	case *array.String:
		return a.Value(row)
	case *array.Boolean:
		return a.Value(row)
	}
	return nil
}

func createTableSQL(table string, cols []flatColumn) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(pq.QuoteIdentifier(table))
	sb.WriteString(" (\n")
	for _, c := range cols {
		sb.WriteString("\t")
		sb.WriteString(pq.QuoteIdentifier(c.name))
		sb.WriteString(" ")
		sb.WriteString(c.sqlType)
		if !c.nullable {
			sb.WriteString(" NOT NULL")
		}
		sb.WriteString(",\n")
	}
	sb.WriteString("\t")
	sb.WriteString(pq.QuoteIdentifier(loadIDColumn))
	sb.WriteString(" TEXT NOT NULL\n);")
	return sb.String()
}

// BatchLoad is one record batch bound for one table.
type BatchLoad struct {
	Table  string
	Record arrow.Record
	Mode   WriteMode
}

// LoadBatch copies every row of rec into table in one transaction, creating
// the table from the batch schema when missing. Replace truncates first.
// It returns the load id stamped on the rows.
func LoadBatch(ctx context.Context, table string, rec arrow.Record, mode WriteMode) (string, error) {
	return LoadBatches(ctx, BatchLoad{Table: table, Record: rec, Mode: mode})
}

// LoadBatches writes every batch in a single transaction under one load id.
// Either all tables change or none do.
func LoadBatches(ctx context.Context, loads ...BatchLoad) (string, error) {
	if db == nil {
		// Allow runs without a backing DB.
		return "", nil
	}

	flat := make([][]flatColumn, len(loads))
	for i, l := range loads {
		cols, err := flattenColumns(l.Record)
		if err != nil {
			return "", fmt.Errorf("%s: %w", l.Table, err)
		}
		flat[i] = cols
	}
	loadID := uuid.NewString()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	for i, l := range loads {
		if err := copyBatch(ctx, tx, l, flat[i], loadID); err != nil {
			return "", fmt.Errorf("load %s: %w", l.Table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return loadID, nil
}

func copyBatch(ctx context.Context, tx *sql.Tx, l BatchLoad, cols []flatColumn, loadID string) error {
	if _, err := tx.ExecContext(ctx, createTableSQL(l.Table, cols)); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if l.Mode == Replace {
		if _, err := tx.ExecContext(ctx, "TRUNCATE "+pq.QuoteIdentifier(l.Table)); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}

	names := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		names = append(names, c.name)
	}
	names = append(names, loadIDColumn)

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(l.Table, names...))
	if err != nil {
		return err
	}
	defer stmt.Close()

	values := make([]any, len(names))
	for row := 0; row < int(l.Record.NumRows()); row++ {
		for i, c := range cols {
			values[i] = c.value(row)
		}
		values[len(cols)] = loadID
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return err
		}
	}

	// finish COPY
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}
	return stmt.Close()
}

const jobsTableDDL = `
	CREATE TABLE IF NOT EXISTS jobs (
		id           UUID PRIMARY KEY,
		players      TEXT[] NOT NULL,
		status       TEXT NOT NULL,
		games_loaded INT NOT NULL DEFAULT 0,
		error        TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// CreateJob records a queued ingestion job and returns its id.
func CreateJob(ctx context.Context, players []string) (string, error) {
	jobID := uuid.NewString()
	if db == nil {
		return jobID, nil
	}
	const q = `
        INSERT INTO jobs (id, players, status)
        VALUES ($1, $2, $3);
    `
	if _, err := db.ExecContext(ctx, q, jobID, pq.Array(players), models.JobQueued); err != nil {
		return "", err
	}
	return jobID, nil
}

// UpdateJobStatus sets the job state, the loaded game count and the failure message.
func UpdateJobStatus(ctx context.Context, jobID, status string, gamesLoaded int, errMsg string) error {
	if db == nil {
		return nil
	}
	const q = `
        UPDATE jobs
        SET status = $2, games_loaded = $3, error = $4, updated_at = now()
        WHERE id = $1;
    `
	res, err := db.ExecContext(ctx, q, jobID, status, gamesLoaded, errMsg)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("job %s: %w", jobID, sql.ErrNoRows)
	}
	return nil
}

// FindJobStatus fetches a job by id.
func FindJobStatus(ctx context.Context, jobID string) (models.JobStatus, error) {
	if db == nil {
		return models.JobStatus{}, errNoDatabase
	}
	const q = `
        SELECT id, status, players, games_loaded, error, updated_at
        FROM jobs
        WHERE id = $1;
    `
	var js models.JobStatus
	var updated time.Time
	row := db.QueryRowContext(ctx, q, jobID)
	if err := row.Scan(&js.ID, &js.Status, pq.Array(&js.Players), &js.GamesLoaded, &js.Error, &updated); err != nil {
		return models.JobStatus{}, err
	}
	js.UpdatedAt = updated
	return js, nil
}
