package app

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// recordingDriver is a database/sql driver that records prepared statements
// and transaction outcomes, and fails any statement starting with failOn.
type recordingDriver struct {
	mu      sync.Mutex
	dbs     map[string]*sqlRecorder
	counter int
}

type sqlRecorder struct {
	mu        sync.Mutex
	failOn    string
	queries   []string
	commits   int
	rollbacks int
}

func (r *sqlRecorder) prepared() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

var (
	sqlDriver     = &recordingDriver{dbs: map[string]*sqlRecorder{}}
	registerOnce  sync.Once
	errStatementRejected = errors.New("statement rejected")
)

// useRecordingDB points the package db at a fresh recorder for the test.
func useRecordingDB(t *testing.T, failOn string) *sqlRecorder {
	t.Helper()
	registerOnce.Do(func() { sql.Register("chess-recording", sqlDriver) })

	sqlDriver.mu.Lock()
	sqlDriver.counter++
	name := fmt.Sprintf("db-%d", sqlDriver.counter)
	rec := &sqlRecorder{failOn: failOn}
	sqlDriver.dbs[name] = rec
	sqlDriver.mu.Unlock()

	d, err := sql.Open("chess-recording", name)
	if err != nil {
		t.Fatalf("sql.Open error = %v", err)
	}
	prev := db
	db = d
	t.Cleanup(func() {
		db = prev
		d.Close()
	})
	return rec
}

func (d *recordingDriver) Open(name string) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.dbs[name]
	if !ok {
		return nil, fmt.Errorf("unknown recorder %s", name)
	}
	return &recordingConn{rec: rec}, nil
}

type recordingConn struct {
	rec *sqlRecorder
}

func (c *recordingConn) Prepare(query string) (driver.Stmt, error) {
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	q := strings.TrimSpace(query)
	c.rec.queries = append(c.rec.queries, q)
	if c.rec.failOn != "" && strings.HasPrefix(q, c.rec.failOn) {
		return nil, errStatementRejected
	}
	return recordingStmt{}, nil
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) { return &recordingTx{rec: c.rec}, nil }

type recordingTx struct {
	rec *sqlRecorder
}

func (tx *recordingTx) Commit() error {
	tx.rec.mu.Lock()
	defer tx.rec.mu.Unlock()
	tx.rec.commits++
	return nil
}

func (tx *recordingTx) Rollback() error {
	tx.rec.mu.Lock()
	defer tx.rec.mu.Unlock()
	tx.rec.rollbacks++
	return nil
}

type recordingStmt struct{}

func (recordingStmt) Close() error  { return nil }
func (recordingStmt) NumInput() int { return -1 }

func (recordingStmt) Exec(args []driver.Value) (driver.Result, error) {
	return driver.RowsAffected(1), nil
}

func (recordingStmt) Query(args []driver.Value) (driver.Rows, error) {
	return nil, errors.New("queries are not supported")
}
