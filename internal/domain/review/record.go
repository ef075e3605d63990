package review

import (
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Rating bounds of the review scale.
const (
	MinRating = 1
	MaxRating = 5
)

// DateLayout is the canonical calendar-date encoding used on the wire.
const DateLayout = "2006-01-02"

// Record is a single immutable review row.
type Record struct {
	// Entity is the reviewed location or competitor name.
	Entity string
	// Date is the review date truncated to UTC midnight.
	Date time.Time
	// Rating is on the 1..5 scale.
	Rating int
	// Text is the review body; empty means the source had no text.
	Text string
	// Topics holds one flag per taxonomy topic.
	Topics TopicSet
}

// HasTopic reports whether the topic at taxonomy position i is flagged.
func (r *Record) HasTopic(i int) bool { return r.Topics.Has(i) }

// dateLayouts are tried in order by ParseDate.  database/sql drivers hand
// back RFC 3339 timestamps, CSV exports usually carry plain dates.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"2006/01/02",
}

// ParseDate parses s with the supported layouts and truncates to a calendar
// date in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeMalformedRecord, "unparseable date").WithDetail(s)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseRating parses a rating cell.  Float encodings such as "4.0" are
// accepted when integral.
func ParseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, checkRating(n, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, errors.New(errors.ErrCodeMalformedRecord, "rating is not an integer").WithDetail(s)
	}
	return int(f), checkRating(int(f), s)
}

func checkRating(n int, raw string) error {
	if n < MinRating || n > MaxRating {
		return errors.Newf(errors.ErrCodeMalformedRecord, "rating outside %d..%d", MinRating, MaxRating).WithDetail(raw)
	}
	return nil
}

// ParseFlag parses a pre-computed topic flag cell.  Empty cells are false.
func ParseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true, nil
	case "0", "0.0", "false", "f", "no", "n", "":
		return false, nil
	}
	return false, errors.New(errors.ErrCodeMalformedRecord, "topic flag is not boolean").WithDetail(s)
}

//Personal.AI order the ending
