package app

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"example/chess-ingest/app/models"
)

const testBase = "https://api.chess.com/pub/"

func TestFilterArchivesRangeBoundary(t *testing.T) {
	idx := models.PlayerArchiveIndex{
		Player: "alice",
		Archives: []string{
			testBase + "player/alice/games/2022/11",
			testBase + "player/alice/games/2022/12",
			testBase + "player/alice/games/2023/01",
		},
	}
	rng, err := ParseArchiveDateRange("2022/12", "2022/12")
	if err != nil {
		t.Fatalf("ParseArchiveDateRange error = %v", err)
	}

	if err := FilterArchives(&idx, rng); err != nil {
		t.Fatalf("FilterArchives error = %v", err)
	}
	want := []string{testBase + "player/alice/games/2022/12"}
	if !reflect.DeepEqual(idx.Archives, want) {
		t.Fatalf("Archives = %v, want %v", idx.Archives, want)
	}
}

func TestFilterArchivesBadURL(t *testing.T) {
	idx := models.PlayerArchiveIndex{Player: "alice", Archives: []string{"games"}}
	rng, _ := ParseArchiveDateRange("", "")
	if err := FilterArchives(&idx, rng); !errors.Is(err, ErrPayloadParse) {
		t.Fatalf("FilterArchives error = %v, want ErrPayloadParse", err)
	}
}

func TestArchiveResolverResolve(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase + "player/alice/games/archives": archivesJSON(
			testBase+"player/alice/games/2023/04",
			testBase+"player/alice/games/2023/05",
		),
		testBase + "player/bob/games/archives": archivesJSON(),
	}}
	r := NewArchiveResolver(f, testBase, nil)
	rng, _ := ParseArchiveDateRange("2023/05", "2023/12")

	got, err := r.Resolve(context.Background(), []string{"alice", "bob"}, rng)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if len(got) != 2 || got[0].Player != "alice" || got[1].Player != "bob" {
		t.Fatalf("Resolve = %+v, want alice then bob", got)
	}
	if len(got[0].Archives) != 1 || got[0].Archives[0] != testBase+"player/alice/games/2023/05" {
		t.Fatalf("alice archives = %v", got[0].Archives)
	}
	if len(got[1].Archives) != 0 {
		t.Fatalf("bob archives = %v, want none", got[1].Archives)
	}
}

func TestArchiveResolverUnknownPlayer(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{}}
	r := NewArchiveResolver(f, testBase, nil)
	rng, _ := ParseArchiveDateRange("", "")

	_, err := r.Resolve(context.Background(), []string{"ghost"}, rng)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("Resolve error = %v, want ErrPlayerNotFound", err)
	}
}
