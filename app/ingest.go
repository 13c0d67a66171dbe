package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"example/chess-ingest/app/config"
	"example/chess-ingest/app/models"
)

// Service is the entry point for profile and game ingestion. Each call is
// sequential and builds its own buffers; a Service holds no per-call state.
type Service struct {
	resolver   *ArchiveResolver
	aggregator *GameAggregator
	profiles   *ProfileFetcher
	mem        memory.Allocator
	logger     *slog.Logger
}

// NewService wires the pipeline against baseURL (normally config.DefaultBaseURL).
func NewService(f Fetcher, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Service{
		resolver:   NewArchiveResolver(f, baseURL, logger),
		aggregator: NewGameAggregator(f, logger),
		profiles:   NewProfileFetcher(f, baseURL, logger),
		mem:        memory.DefaultAllocator,
		logger:     logger,
	}
}

// NewServiceFromConfig builds a Service with an HTTP client from cfg.
func NewServiceFromConfig(cfg config.ChessConfig, logger *slog.Logger) *Service {
	return NewService(NewClient(cfg), cfg.BaseURL, logger)
}

// GetPlayerProfiles fetches one profile per player and projects them.
func (s *Service) GetPlayerProfiles(ctx context.Context, players []string) (arrow.Record, error) {
	profiles, err := s.profiles.FetchProfiles(ctx, players)
	if err != nil {
		return nil, err
	}
	rec, err := Project(s.mem, profiles, ProfileSchema())
	if err != nil {
		return nil, err
	}
	s.logger.Info("projected profiles", "players", len(players), "rows", rec.NumRows())
	return rec, nil
}

// GetPlayerArchives returns the in-range archive URLs per player. The range is
// validated before any request is made.
func (s *Service) GetPlayerArchives(ctx context.Context, players []string, startMonth, endMonth string) ([]models.PlayerArchiveIndex, error) {
	rng, err := ParseArchiveDateRange(startMonth, endMonth)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, players, rng)
}

// CollectGames resolves archives and aggregates their games without projecting.
func (s *Service) CollectGames(ctx context.Context, players []string, startMonth, endMonth string) ([]models.GameRecord, error) {
	indices, err := s.GetPlayerArchives(ctx, players, startMonth, endMonth)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Aggregate(ctx, indices)
}

// GetPlayerGames resolves archives in [startMonth, endMonth], aggregates
// their games and projects them. An empty range result is a 0-row batch.
func (s *Service) GetPlayerGames(ctx context.Context, players []string, startMonth, endMonth string) (arrow.Record, error) {
	games, err := s.CollectGames(ctx, players, startMonth, endMonth)
	if err != nil {
		return nil, err
	}
	rec, err := Project(s.mem, games, GameSchema())
	if err != nil {
		return nil, err
	}
	s.logger.Info("projected games", "players", len(players), "rows", rec.NumRows())
	return rec, nil
}
