package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"example/chess-ingest/app/models"
)

// ProfileFetcher reads player profiles.
type ProfileFetcher struct {
	fetcher Fetcher
	baseURL string
	logger  *slog.Logger
}

func NewProfileFetcher(f Fetcher, baseURL string, logger *slog.Logger) *ProfileFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileFetcher{fetcher: f, baseURL: baseURL, logger: logger.With("component", "profiles")}
}

func (p *ProfileFetcher) FetchProfile(ctx context.Context, username string) (models.PlayerProfile, error) {
	u := fmt.Sprintf("%splayer/%s", p.baseURL, url.PathEscape(username))
	var profile models.PlayerProfile
	if err := getJSON(ctx, p.fetcher, u, &profile); err != nil {
		return models.PlayerProfile{}, fmt.Errorf("player %s profile: %w", username, err)
	}
	p.logger.Debug("fetched profile", "player", username)
	return profile, nil
}

// FetchProfiles fetches one profile per player, in order, stopping at the first failure.
func (p *ProfileFetcher) FetchProfiles(ctx context.Context, players []string) ([]models.PlayerProfile, error) {
	out := make([]models.PlayerProfile, 0, len(players))
	for _, player := range players {
		profile, err := p.FetchProfile(ctx, player)
		if err != nil {
			return nil, err
		}
		out = append(out, profile)
	}
	return out, nil
}
