package config

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// PlayersFile is the optional TOML input for the ingest CLI:
//
//	players = ["magnuscarlsen", "hikaru"]
//	start_month = "2023/01"
//	end_month = "2023/06"
type PlayersFile struct {
	Players    []string `toml:"players"`
	StartMonth string   `toml:"start_month"`
	EndMonth   string   `toml:"end_month"`
}

func LoadPlayersFile(path string) (PlayersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlayersFile{}, fmt.Errorf("read players file: %w", err)
	}

	var pf PlayersFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return PlayersFile{}, fmt.Errorf("parse players file: %w", err)
	}

	players := pf.Players[:0]
	for _, p := range pf.Players {
		if p = strings.TrimSpace(p); p != "" {
			players = append(players, p)
		}
	}
	pf.Players = players
	pf.StartMonth = strings.TrimSpace(pf.StartMonth)
	pf.EndMonth = strings.TrimSpace(pf.EndMonth)
	return pf, nil
}
