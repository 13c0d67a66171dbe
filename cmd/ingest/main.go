package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"example/chess-ingest/app"
	"example/chess-ingest/app/config"
	"example/chess-ingest/app/logs"
)

var (
	playersCSV  = flag.String("players", "", "Comma-separated chess.com usernames")
	playersFile = flag.String("players-file", "", "TOML file with players, start_month and end_month")
	startMonth  = flag.String("start", "", "First archive month, YYYY/MM (empty for no lower bound)")
	endMonth    = flag.String("end", "", "Last archive month, YYYY/MM (empty for no upper bound)")
	kind        = flag.String("kind", "games", "What to fetch: profiles, games or archives")
	outPath     = flag.String("out", "-", "Output path, - for stdout")
	format      = flag.String("format", app.FormatArrow, "Batch format: arrow, parquet or json")
	save        = flag.Bool("save", false, "Also load the batch into Postgres")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logs.New(os.Stderr, cfg.Logs)

	players := split(*playersCSV)
	start, end := *startMonth, *endMonth
	if *playersFile != "" {
		pf, err := config.LoadPlayersFile(*playersFile)
		if err != nil {
			return fmt.Errorf("players file: %w", err)
		}
		players = append(players, pf.Players...)
		if start == "" {
			start = pf.StartMonth
		}
		if end == "" {
			end = pf.EndMonth
		}
	}
	if len(players) == 0 {
		return errors.New("no players: set -players or -players-file")
	}

	var (
		table string
		mode  app.WriteMode
	)
	switch *kind {
	case "archives":
	case "profiles":
		table, mode = app.ProfilesTable, app.Replace
	case "games":
		table, mode = app.GamesTable, app.Append
	default:
		return fmt.Errorf("unknown -kind %q", *kind)
	}

	if *save {
		app.MustInitDB(cfg.DB, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := app.NewServiceFromConfig(cfg.Chess, logger)

	if *kind == "archives" {
		indices, err := svc.GetPlayerArchives(ctx, players, start, end)
		if err != nil {
			return fmt.Errorf("archives: %w", err)
		}
		return writeOut(*outPath, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(indices)
		})
	}

	var rec arrow.Record
	if *kind == "profiles" {
		rec, err = svc.GetPlayerProfiles(ctx, players)
	} else {
		rec, err = svc.GetPlayerGames(ctx, players, start, end)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", *kind, err)
	}
	defer rec.Release()

	if err := writeOut(*outPath, func(w io.Writer) error { return app.WriteBatch(w, rec, *format) }); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	logger.Info("wrote batch", "kind", *kind, "rows", rec.NumRows(), "format", *format, "out", *outPath)

	if *save {
		loadID, err := app.LoadBatch(ctx, table, rec, mode)
		if err != nil {
			return fmt.Errorf("load %s: %w", table, err)
		}
		logger.Info("loaded batch", "table", table, "load_id", loadID)
	}
	return nil
}

// writeOut runs write against path, or stdout for "-". A failed write
// removes the partial file.
func writeOut(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
