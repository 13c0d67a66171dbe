package app

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"example/chess-ingest/app/models"
)

func testGamesBatch(t *testing.T) arrow.Record {
	t.Helper()
	games := []models.GameRecord{
		decodeGame(t, gameJSON("g1", "alice", "bob", 1683000000)),
		decodeGame(t, gameJSON("g2", "carol", "alice", 1684000000)),
	}
	rec, err := Project(memory.DefaultAllocator, games, GameSchema())
	if err != nil {
		t.Fatalf("Project error = %v", err)
	}
	return rec
}

func TestWriteIPCRoundTrip(t *testing.T) {
	rec := testGamesBatch(t)
	defer rec.Release()

	var buf bytes.Buffer
	if err := WriteIPC(&buf, rec); err != nil {
		t.Fatalf("WriteIPC error = %v", err)
	}

	r, err := ipc.NewReader(&buf)
	if err != nil {
		t.Fatalf("ipc.NewReader error = %v", err)
	}
	defer r.Release()

	if !r.Schema().Equal(rec.Schema()) {
		t.Fatalf("schema = %s, want %s", r.Schema(), rec.Schema())
	}
	var rows int64
	for r.Next() {
		rows += r.Record().NumRows()
	}
	if err := r.Err(); err != nil {
		t.Fatalf("reader error = %v", err)
	}
	if rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	rec := testGamesBatch(t)
	defer rec.Release()

	var buf bytes.Buffer
	if err := WriteParquet(&buf, rec); err != nil {
		t.Fatalf("WriteParquet error = %v", err)
	}

	pf, err := file.NewParquetReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewParquetReader error = %v", err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("NewFileReader error = %v", err)
	}
	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("ReadTable error = %v", err)
	}
	defer tbl.Release()

	if tbl.NumRows() != 2 || tbl.NumCols() != 15 {
		t.Fatalf("shape = %dx%d, want 2x15", tbl.NumRows(), tbl.NumCols())
	}
}

func TestWriteJSONRows(t *testing.T) {
	rec := testGamesBatch(t)
	defer rec.Release()

	var buf bytes.Buffer
	if err := WriteBatch(&buf, rec, FormatJSON); err != nil {
		t.Fatalf("WriteBatch error = %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("json.Unmarshal error = %v; body=%s", err, buf.String())
	}
	if len(rows) != 2 || rows[1]["uuid"] != "g2" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestWriteBatchUnknownFormat(t *testing.T) {
	rec := testGamesBatch(t)
	defer rec.Release()
	if err := WriteBatch(&bytes.Buffer{}, rec, "csv"); err == nil {
		t.Fatalf("WriteBatch should reject csv")
	}
}
