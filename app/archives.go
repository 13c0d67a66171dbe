package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"example/chess-ingest/app/models"
)

// ArchiveResolver finds the monthly archive URLs of players within a date range.
type ArchiveResolver struct {
	fetcher Fetcher
	baseURL string
	logger  *slog.Logger
}

func NewArchiveResolver(f Fetcher, baseURL string, logger *slog.Logger) *ArchiveResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveResolver{fetcher: f, baseURL: baseURL, logger: logger.With("component", "archives")}
}

// Resolve returns one index per player, in input order, holding only the
// archives whose month lies in rng.
func (r *ArchiveResolver) Resolve(ctx context.Context, players []string, rng ArchiveDateRange) ([]models.PlayerArchiveIndex, error) {
	out := make([]models.PlayerArchiveIndex, 0, len(players))
	for _, player := range players {
		idx, err := r.fetchIndex(ctx, player)
		if err != nil {
			return nil, err
		}
		total := len(idx.Archives)
		if err := FilterArchives(&idx, rng); err != nil {
			return nil, fmt.Errorf("player %s: %w", player, err)
		}
		r.logger.Debug("resolved archives", "player", player, "total", total, "kept", len(idx.Archives),
			"start", rng.Start.String(), "end", rng.End.String())
		out = append(out, idx)
	}
	return out, nil
}

func (r *ArchiveResolver) fetchIndex(ctx context.Context, player string) (models.PlayerArchiveIndex, error) {
	u := fmt.Sprintf("%splayer/%s/games/archives", r.baseURL, url.PathEscape(player))
	var ai models.ArchiveIndex
	if err := getJSON(ctx, r.fetcher, u, &ai); err != nil {
		return models.PlayerArchiveIndex{}, fmt.Errorf("player %s archives: %w", player, err)
	}
	return models.PlayerArchiveIndex{Player: player, Archives: ai.Archives}, nil
}

// FilterArchives narrows idx in place to the archives inside rng, keeping order.
// An archive URL without a parseable year/month suffix fails the whole call.
func FilterArchives(idx *models.PlayerArchiveIndex, rng ArchiveDateRange) error {
	kept := idx.Archives[:0]
	for _, a := range idx.Archives {
		m, err := archiveMonth(a)
		if err != nil {
			return err
		}
		if rng.Contains(m) {
			kept = append(kept, a)
		}
	}
	idx.Archives = kept
	return nil
}
