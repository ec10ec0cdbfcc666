package models

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/spf13/cast"
)

// Counter is a tolerant activity counter. Missing, null or non-numeric values are 0.
type Counter float64

// ParseCounter coerces an arbitrary document value into a Counter.
func ParseCounter(v any) Counter {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Counter(f)
}

// UnmarshalJSON never fails: anything that is not a finite number decodes to 0.
func (c *Counter) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = 0
		return nil //nolint:nilerr // malformed counters are tolerated
	}
	*c = ParseCounter(raw)
	return nil
}

// Float returns the counter as float64.
func (c Counter) Float() float64 {
	return float64(c)
}

func (c Counter) String() string {
	return strconv.FormatFloat(float64(c), 'f', -1, 64)
}
