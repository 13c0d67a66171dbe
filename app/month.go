package app

import (
	"fmt"
	"strings"
	"time"
)

const (
	monthLayout   = "2006/1"
	archiveLayout = "2006/01/02"

	// archiveDay makes an archive's YYYY/MM parseable as a full date without
	// crossing a month boundary.
	archiveDay = "27"
)

// Month is a calendar month; day and time are irrelevant.
type Month struct {
	Year  int
	Month time.Month
}

var (
	minMonth = Month{Year: 1, Month: time.January}
	maxMonth = Month{Year: 9999, Month: time.December}
)

// ParseMonth parses "YYYY/MM".
func ParseMonth(s string) (Month, error) {
	if len(s) < 5 || s[4] != '/' {
		return Month{}, fmt.Errorf("%w: %q must look like YYYY/MM", ErrInvalidDateFormat, s)
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q could not be parsed to a date: %v", ErrInvalidDateFormat, s, err)
	}
	return MonthOf(t), nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d/%02d", m.Year, int(m.Month))
}

// Compare returns -1, 0 or +1.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}
	return 0
}

func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }

// ArchiveDateRange is an inclusive month range. The zero value is not valid;
// use NewArchiveDateRange or ParseArchiveDateRange.
type ArchiveDateRange struct {
	Start Month
	End   Month
}

func NewArchiveDateRange(start, end Month) (ArchiveDateRange, error) {
	if end.Before(start) {
		return ArchiveDateRange{}, fmt.Errorf("%w: end month %s is before start month %s", ErrInvalidRange, end, start)
	}
	return ArchiveDateRange{Start: start, End: end}, nil
}

// ParseArchiveDateRange parses two "YYYY/MM" strings. An empty side is unbounded.
func ParseArchiveDateRange(start, end string) (ArchiveDateRange, error) {
	from, to := minMonth, maxMonth
	var err error
	if start = strings.TrimSpace(start); start != "" {
		if from, err = ParseMonth(start); err != nil {
			return ArchiveDateRange{}, fmt.Errorf("start month: %w", err)
		}
	}
	if end = strings.TrimSpace(end); end != "" {
		if to, err = ParseMonth(end); err != nil {
			return ArchiveDateRange{}, fmt.Errorf("end month: %w", err)
		}
	}
	return NewArchiveDateRange(from, to)
}

func (r ArchiveDateRange) Contains(m Month) bool {
	return r.Start.Compare(m) <= 0 && m.Compare(r.End) <= 0
}

// archiveMonth reads the trailing {year}/{month} pair of an archive URL such as
// https://api.chess.com/pub/player/alice/games/2023/05.
func archiveMonth(archiveURL string) (Month, error) {
	trimmed := strings.TrimRight(archiveURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return Month{}, fmt.Errorf("%w: archive url %q has no year/month suffix", ErrPayloadParse, archiveURL)
	}
	month := trimmed[idx+1:]
	rest := trimmed[:idx]
	idx = strings.LastIndex(rest, "/")
	if idx < 0 {
		return Month{}, fmt.Errorf("%w: archive url %q has no year/month suffix", ErrPayloadParse, archiveURL)
	}
	year := rest[idx+1:]

	t, err := time.Parse(archiveLayout, year+"/"+month+"/"+archiveDay)
	if err != nil {
		return Month{}, fmt.Errorf("%w: archive url %q: %v", ErrPayloadParse, archiveURL, err)
	}
	return MonthOf(t), nil
}
