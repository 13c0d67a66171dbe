package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"example/chess-ingest/app/models"
)

// fakeFetcher serves canned bodies by URL and answers 404 for anything else.
type fakeFetcher struct {
	bodies map[string]string
	calls  []string
}

func (f *fakeFetcher) GetURL(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, &StatusError{URL: url, Status: http.StatusNotFound, Body: "not found"}
	}
	return []byte(body), nil
}

const sideJSON = `{"rating":%d,"result":"%s","@id":"https://api.chess.com/pub/player/%[3]s","username":"%[3]s","uuid":"%[3]s-uuid"}`

// gameJSON is a complete finished game between white and black.
func gameJSON(uuid, white, black string, endTime int64) string {
	return fmt.Sprintf(`{
		"url": "https://www.chess.com/game/live/%[1]s",
		"pgn": "[Event \"Live Chess\"]\n\n1. e4 e5 1-0",
		"time_control": "600",
		"end_time": %[2]d,
		"rated": true,
		"tcn": "mC0K",
		"uuid": "%[1]s",
		"initial_setup": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"fen": "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2",
		"time_class": "rapid",
		"rules": "chess",
		"eco": "https://www.chess.com/openings/Kings-Pawn-Opening",
		"accuracies": {"white": 81.5, "black": 77.25},
		"white": %[3]s,
		"black": %[4]s
	}`, uuid, endTime,
		fmt.Sprintf(sideJSON, 1500, "win", white),
		fmt.Sprintf(sideJSON, 1480, "resigned", black))
}

func monthlyJSON(games ...string) string {
	return `{"games":[` + strings.Join(games, ",") + `]}`
}

func archivesJSON(urls ...string) string {
	b, _ := json.Marshal(models.ArchiveIndex{Archives: urls})
	return string(b)
}

const profileJSON = `{
	"avatar": "https://images.chesscomfiles.com/uploads/v1/user/1.png",
	"player_id": 41,
	"@id": "https://api.chess.com/pub/player/%[1]s",
	"url": "https://www.chess.com/member/%[1]s",
	"name": "Player %[1]s",
	"username": "%[1]s",
	"followers": 12,
	"country": "https://api.chess.com/pub/country/US",
	"location": "Denver",
	"last_online": 1700000000,
	"joined": 1500000000,
	"status": "basic",
	"is_streamer": false,
	"verified": false,
	"league": "Wood",
	"streaming_platforms": []
}`

func decodeGame(t *testing.T, raw string) models.GameRecord {
	t.Helper()
	var g models.GameRecord
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("json.Unmarshal error = %v", err)
	}
	return g
}
