package app

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const (
	FormatArrow   = "arrow"
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// WriteIPC writes rec as an Arrow IPC stream.
func WriteIPC(w io.Writer, rec arrow.Record) error {
	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("write arrow stream: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}

// WriteParquet writes rec as a snappy-compressed Parquet file.
func WriteParquet(w io.Writer, rec arrow.Record) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet: %w", err)
	}
	return nil
}

// WriteJSON writes rec as a JSON array with one object per row.
func WriteJSON(w io.Writer, rec arrow.Record) error {
	data, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteBatch dispatches on format.
func WriteBatch(w io.Writer, rec arrow.Record, format string) error {
	switch format {
	case FormatArrow:
		return WriteIPC(w, rec)
	case FormatParquet:
		return WriteParquet(w, rec)
	case FormatJSON:
		return WriteJSON(w, rec)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
