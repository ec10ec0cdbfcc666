package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar date.
const DayLayout = "2006-01-02"

// Day is a calendar date without a time component, stored as UTC midnight.
type Day struct {
	time.Time
}

// NewDay truncates t to its calendar date.
func NewDay(t time.Time) Day {
	return Day{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a date in the YYYY-MM-DD format.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDay(t), nil
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DayLayout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
