package app

import (
	"context"
	"errors"
	"testing"

	"example/chess-ingest/app/models"
)

func TestAggregatePlayerThenMonthOrder(t *testing.T) {
	a1 := testBase + "player/a/games/2023/04"
	a2 := testBase + "player/a/games/2023/05"
	b1 := testBase + "player/b/games/2023/05"
	f := &fakeFetcher{bodies: map[string]string{
		a1: monthlyJSON(gameJSON("a-april", "a", "x", 1680000000)),
		a2: monthlyJSON(gameJSON("a-may", "a", "y", 1684000000)),
		b1: monthlyJSON(gameJSON("b-may", "z", "b", 1683000000)),
	}}
	agg := NewGameAggregator(f, nil)

	games, err := agg.Aggregate(context.Background(), []models.PlayerArchiveIndex{
		{Player: "a", Archives: []string{a1, a2}},
		{Player: "b", Archives: []string{b1}},
	})
	if err != nil {
		t.Fatalf("Aggregate error = %v", err)
	}

	want := []string{"a-april", "a-may", "b-may"}
	if len(games) != len(want) {
		t.Fatalf("len(games) = %d, want %d", len(games), len(want))
	}
	for i, g := range games {
		if *g.UUID != want[i] {
			t.Fatalf("games[%d].UUID = %s, want %s", i, *g.UUID, want[i])
		}
	}
}

func TestAggregateZeroArchives(t *testing.T) {
	f := &fakeFetcher{}
	games, err := NewGameAggregator(f, nil).Aggregate(context.Background(), []models.PlayerArchiveIndex{
		{Player: "a"},
		{Player: "b", Archives: []string{}},
	})
	if err != nil {
		t.Fatalf("Aggregate error = %v", err)
	}
	if games == nil || len(games) != 0 {
		t.Fatalf("games = %v, want empty non-nil slice", games)
	}
	if len(f.calls) != 0 {
		t.Fatalf("calls = %v, want none", f.calls)
	}
}

func TestAggregateAbortsOnFailure(t *testing.T) {
	good := testBase + "player/a/games/2023/05"
	f := &fakeFetcher{bodies: map[string]string{
		good: monthlyJSON(gameJSON("a-may", "a", "x", 1684000000)),
		testBase + "player/b/games/2023/05": `{"games": [`,
	}}
	_, err := NewGameAggregator(f, nil).Aggregate(context.Background(), []models.PlayerArchiveIndex{
		{Player: "a", Archives: []string{good}},
		{Player: "b", Archives: []string{testBase + "player/b/games/2023/05"}},
	})
	if !errors.Is(err, ErrPayloadParse) {
		t.Fatalf("Aggregate error = %v, want ErrPayloadParse", err)
	}
}
