package app

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidRange      = errors.New("invalid archive date range")
	ErrNetwork           = errors.New("network error")
	ErrPayloadParse      = errors.New("payload parse error")
	ErrSchemaProjection  = errors.New("schema projection error")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNoPlayers         = errors.New("at least one player is required")
)

// StatusError is a non-2xx answer from the chess.com API.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http %d: %s", e.URL, e.Status, e.Body)
}

// Is lets callers match a 404 with errors.Is(err, ErrPlayerNotFound).
func (e *StatusError) Is(target error) bool {
	return target == ErrPlayerNotFound && e.Status == http.StatusNotFound
}
