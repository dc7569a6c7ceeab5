// Copyright 2021 Silvio Böhler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package date

import (
	"fmt"
	"strings"
	"time"
)

// DateInterval walks a sequence of reporting periods. The current period
// is the half-open range [Start, End). Begin and Finish optionally clamp
// the sequence.
type DateInterval struct {
	Duration      Interval
	Start, End    time.Time
	Begin, Finish time.Time

	started bool
}

// NewInterval creates an interval with the given period duration.
func NewInterval(d Interval) *DateInterval {
	return &DateInterval{Duration: d}
}

// Valid reports whether the interval has been positioned on a period.
func (di *DateInterval) Valid() bool {
	return di.started
}

// FindPeriod positions the interval on the period containing d. It
// reports false if d lies outside the Begin/Finish clamp.
func (di *DateInterval) FindPeriod(d time.Time) bool {
	if !di.Begin.IsZero() && d.Before(di.Begin) {
		return false
	}
	if !di.Finish.IsZero() && !d.Before(di.Finish) {
		return false
	}
	start := StartOf(d, di.Duration)
	if !di.Begin.IsZero() && start.Before(di.Begin) {
		start = di.Begin
	}
	di.Start = start
	di.End = nextStart(start, di.Duration)
	di.started = true
	return true
}

// Contains reports whether d falls within the current period.
func (di *DateInterval) Contains(d time.Time) bool {
	return di.started && !d.Before(di.Start) && d.Before(di.End)
}

// InclusiveEnd returns the last date within the current period.
func (di *DateInterval) InclusiveEnd() time.Time {
	return di.End.AddDate(0, 0, -1)
}

// Advance moves the interval to the next period.
func (di *DateInterval) Advance() {
	di.Start = di.End
	di.End = nextStart(di.Start, di.Duration)
}

func nextStart(start time.Time, d Interval) time.Time {
	switch d {
	case Once:
		// A degenerate period which never ends.
		return Date(9999, 12, 31)
	case Daily:
		return start.AddDate(0, 0, 1)
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Monthly:
		return start.AddDate(0, 1, 0)
	case Quarterly:
		return start.AddDate(0, 3, 0)
	case Yearly:
		return start.AddDate(1, 0, 0)
	}
	return start
}

var intervals = map[string]Interval{
	"once":      Once,
	"daily":     Daily,
	"day":       Daily,
	"weekly":    Weekly,
	"week":      Weekly,
	"monthly":   Monthly,
	"month":     Monthly,
	"quarterly": Quarterly,
	"quarter":   Quarterly,
	"yearly":    Yearly,
	"year":      Yearly,
}

// ParseInterval parses an interval keyword such as "monthly".
func ParseInterval(s string) (Interval, error) {
	if iv, ok := intervals[strings.ToLower(s)]; ok {
		return iv, nil
	}
	return Once, fmt.Errorf("invalid interval: %q", s)
}

// ParsePeriod parses a period expression of the form
//
//	[INTERVAL] [from DATE] [to|until DATE]
//
// or a bare "from DATE". At least one part must be present.
func ParsePeriod(s string) (*DateInterval, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty period expression")
	}
	di := NewInterval(Once)
	seen := false
	for i := 0; i < len(fields); i++ {
		switch f := fields[i]; f {
		case "from", "since":
			i++
			if i == len(fields) {
				return nil, fmt.Errorf("period %q: expected date after %q", s, f)
			}
			d, err := parseDate(fields[i])
			if err != nil {
				return nil, fmt.Errorf("period %q: %w", s, err)
			}
			di.Begin = d
			seen = true
		case "to", "until":
			i++
			if i == len(fields) {
				return nil, fmt.Errorf("period %q: expected date after %q", s, f)
			}
			d, err := parseDate(fields[i])
			if err != nil {
				return nil, fmt.Errorf("period %q: %w", s, err)
			}
			di.Finish = d
			seen = true
		default:
			iv, err := ParseInterval(f)
			if err != nil {
				return nil, fmt.Errorf("period %q: %w", s, err)
			}
			di.Duration = iv
			seen = true
		}
	}
	if !seen {
		return nil, fmt.Errorf("invalid period expression: %q", s)
	}
	return di, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006-01", "2006"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}
