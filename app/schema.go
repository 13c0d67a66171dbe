package app

import (
	"github.com/apache/arrow-go/v18/arrow"

	"example/chess-ingest/app/models"
)

var (
	accuraciesType = arrow.StructOf(
		arrow.Field{Name: "white", Type: arrow.PrimitiveTypes.Float32},
		arrow.Field{Name: "black", Type: arrow.PrimitiveTypes.Float32},
	)
	playerSideType = arrow.StructOf(
		arrow.Field{Name: "rating", Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{Name: "result", Type: arrow.BinaryTypes.String},
		arrow.Field{Name: "@id", Type: arrow.BinaryTypes.String},
		arrow.Field{Name: "username", Type: arrow.BinaryTypes.String},
		arrow.Field{Name: "uuid", Type: arrow.BinaryTypes.String},
	)
)

func field(name string, t arrow.DataType, nullable bool) arrow.Field {
	return arrow.Field{Name: name, Type: t, Nullable: nullable}
}

// GameSchema is the games batch layout: 15 top-level columns, accuracies and
// the two player sides as structs.
func GameSchema() *ColumnSchema[models.GameRecord] {
	utf8 := arrow.BinaryTypes.String
	return NewColumnSchema(
		Column[models.GameRecord]{field("end_time", arrow.PrimitiveTypes.Int64, false), func(g models.GameRecord) any { return optInt64(g.EndTime) }},
		Column[models.GameRecord]{field("url", utf8, true), func(g models.GameRecord) any { return optString(g.URL) }},
		Column[models.GameRecord]{field("pgn", utf8, true), func(g models.GameRecord) any { return optString(g.PGN) }},
		Column[models.GameRecord]{field("time_control", utf8, false), func(g models.GameRecord) any { return optString(g.TimeControl) }},
		Column[models.GameRecord]{field("rated", arrow.FixedWidthTypes.Boolean, false), func(g models.GameRecord) any { return optBool(g.Rated) }},
		Column[models.GameRecord]{field("tcn", utf8, false), func(g models.GameRecord) any { return optString(g.TCN) }},
		Column[models.GameRecord]{field("uuid", utf8, false), func(g models.GameRecord) any { return optString(g.UUID) }},
		Column[models.GameRecord]{field("initial_setup", utf8, false), func(g models.GameRecord) any { return optString(g.InitialSetup) }},
		Column[models.GameRecord]{field("fen", utf8, false), func(g models.GameRecord) any { return optString(g.FEN) }},
		Column[models.GameRecord]{field("time_class", utf8, false), func(g models.GameRecord) any { return optString(g.TimeClass) }},
		Column[models.GameRecord]{field("rules", utf8, false), func(g models.GameRecord) any { return optString(g.Rules) }},
		Column[models.GameRecord]{field("eco", utf8, false), func(g models.GameRecord) any { return optString(g.ECO) }},
		Column[models.GameRecord]{field("accuracies", accuraciesType, true), func(g models.GameRecord) any { return accuraciesCell(g.Accuracies) }},
		Column[models.GameRecord]{field("white", playerSideType, false), func(g models.GameRecord) any { return sideCell(g.White) }},
		Column[models.GameRecord]{field("black", playerSideType, false), func(g models.GameRecord) any { return sideCell(g.Black) }},
	)
}

// ProfileSchema is the profiles batch layout. streaming_platforms is not exported.
func ProfileSchema() *ColumnSchema[models.PlayerProfile] {
	utf8 := arrow.BinaryTypes.String
	i32 := arrow.PrimitiveTypes.Int32
	i64 := arrow.PrimitiveTypes.Int64
	boolean := arrow.FixedWidthTypes.Boolean
	return NewColumnSchema(
		Column[models.PlayerProfile]{field("avatar", utf8, false), func(p models.PlayerProfile) any { return optString(p.Avatar) }},
		Column[models.PlayerProfile]{field("player_id", i32, false), func(p models.PlayerProfile) any { return optInt32(p.PlayerID) }},
		Column[models.PlayerProfile]{field("@id", utf8, false), func(p models.PlayerProfile) any { return optString(p.ID) }},
		Column[models.PlayerProfile]{field("url", utf8, true), func(p models.PlayerProfile) any { return optString(p.URL) }},
		Column[models.PlayerProfile]{field("name", utf8, false), func(p models.PlayerProfile) any { return optString(p.Name) }},
		Column[models.PlayerProfile]{field("username", utf8, false), func(p models.PlayerProfile) any { return optString(p.Username) }},
		Column[models.PlayerProfile]{field("title", utf8, true), func(p models.PlayerProfile) any { return optString(p.Title) }},
		Column[models.PlayerProfile]{field("followers", i32, false), func(p models.PlayerProfile) any { return optInt32(p.Followers) }},
		Column[models.PlayerProfile]{field("country", utf8, false), func(p models.PlayerProfile) any { return optString(p.Country) }},
		Column[models.PlayerProfile]{field("location", utf8, false), func(p models.PlayerProfile) any { return optString(p.Location) }},
		Column[models.PlayerProfile]{field("last_online", i64, false), func(p models.PlayerProfile) any { return optInt64(p.LastOnline) }},
		Column[models.PlayerProfile]{field("joined", i64, false), func(p models.PlayerProfile) any { return optInt64(p.Joined) }},
		Column[models.PlayerProfile]{field("status", utf8, false), func(p models.PlayerProfile) any { return optString(p.Status) }},
		Column[models.PlayerProfile]{field("is_streamer", boolean, false), func(p models.PlayerProfile) any { return optBool(p.IsStreamer) }},
		Column[models.PlayerProfile]{field("verified", boolean, false), func(p models.PlayerProfile) any { return optBool(p.Verified) }},
		Column[models.PlayerProfile]{field("league", utf8, false), func(p models.PlayerProfile) any { return optString(p.League) }},
	)
}

func accuraciesCell(a *models.Accuracies) any {
	if a == nil {
		return nil
	}
	return []any{optFloat32(a.White), optFloat32(a.Black)}
}

func sideCell(s *models.PlayerSide) any {
	if s == nil {
		return nil
	}
	return []any{optInt32(s.Rating), optString(s.Result), optString(s.ID), optString(s.Username), optString(s.UUID)}
}
