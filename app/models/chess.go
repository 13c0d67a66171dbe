package models

// Payloads received from chess.com. Every field is a pointer so a missing key
// stays distinguishable from a zero value until the projector checks it.

// ArchiveIndex is the body of player/{username}/games/archives.
type ArchiveIndex struct {
	Archives []string `json:"archives"`
}

// MonthlyGames is the body of a single archive URL.
type MonthlyGames struct {
	Games []GameRecord `json:"games"`
}

type GameRecord struct {
	URL          *string     `json:"url"`
	PGN          *string     `json:"pgn"`
	TimeControl  *string     `json:"time_control"`
	EndTime      *int64      `json:"end_time"`
	Rated        *bool       `json:"rated"`
	FEN          *string     `json:"fen"`
	TCN          *string     `json:"tcn"`
	UUID         *string     `json:"uuid"`
	InitialSetup *string     `json:"initial_setup"`
	TimeClass    *string     `json:"time_class"`
	Rules        *string     `json:"rules"`
	ECO          *string     `json:"eco"`
	Accuracies   *Accuracies `json:"accuracies"`
	White        *PlayerSide `json:"white"`
	Black        *PlayerSide `json:"black"`
}

// Accuracies are engine-computed accuracy percentages, only present on analyzed games.
type Accuracies struct {
	White *float32 `json:"white"`
	Black *float32 `json:"black"`
}

// PlayerSide is one side of a finished game.
type PlayerSide struct {
	Rating   *int32  `json:"rating"`
	Result   *string `json:"result"`
	ID       *string `json:"@id"`
	Username *string `json:"username"`
	UUID     *string `json:"uuid"`
}

// PlayerProfile is the body of player/{username}.
type PlayerProfile struct {
	Avatar             *string  `json:"avatar"`
	PlayerID           *int32   `json:"player_id"`
	ID                 *string  `json:"@id"`
	URL                *string  `json:"url"`
	Name               *string  `json:"name"`
	Username           *string  `json:"username"`
	Title              *string  `json:"title"`
	Followers          *int32   `json:"followers"`
	Country            *string  `json:"country"`
	Location           *string  `json:"location"`
	LastOnline         *int64   `json:"last_online"`
	Joined             *int64   `json:"joined"`
	Status             *string  `json:"status"`
	IsStreamer         *bool    `json:"is_streamer"`
	Verified           *bool    `json:"verified"`
	League             *string  `json:"league"`
	StreamingPlatforms []string `json:"streaming_platforms"`
}

// PlayerArchiveIndex holds a player's archive URLs, oldest first.
type PlayerArchiveIndex struct {
	Player   string   `json:"player"`
	Archives []string `json:"archives"`
}
