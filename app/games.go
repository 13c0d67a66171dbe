package app

import (
	"context"
	"fmt"
	"log/slog"

	"example/chess-ingest/app/models"
)

// GameAggregator walks archive indices and concatenates their games.
type GameAggregator struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewGameAggregator(f Fetcher, logger *slog.Logger) *GameAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameAggregator{fetcher: f, logger: logger.With("component", "games")}
}

// Aggregate fetches every archive of every index, players first then months,
// and returns all games in that order. Games shared by two requested players
// appear once per player. Any failure aborts the whole aggregation.
func (a *GameAggregator) Aggregate(ctx context.Context, indices []models.PlayerArchiveIndex) ([]models.GameRecord, error) {
	games := []models.GameRecord{}
	for _, idx := range indices {
		for _, archiveURL := range idx.Archives {
			var mg models.MonthlyGames
			if err := getJSON(ctx, a.fetcher, archiveURL, &mg); err != nil {
				return nil, fmt.Errorf("player %s games: %w", idx.Player, err)
			}
			a.logger.Debug("fetched archive", "player", idx.Player, "url", archiveURL, "games", len(mg.Games))
			games = append(games, mg.Games...)
		}
	}
	return games, nil
}
