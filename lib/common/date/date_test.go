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
	"testing"
	"time"
)

func TestStartOf(t *testing.T) {
	var tests = []struct {
		date   time.Time
		result map[Interval]time.Time
	}{
		{
			date: Date(2020, 1, 1),
			result: map[Interval]time.Time{
				Weekly:    Date(2019, 12, 30),
				Monthly:   Date(2020, 1, 1),
				Quarterly: Date(2020, 1, 1),
			},
		},
		{
			date: Date(2020, 6, 14),
			result: map[Interval]time.Time{
				Weekly:    Date(2020, 6, 8),
				Monthly:   Date(2020, 6, 1),
				Quarterly: Date(2020, 4, 1),
				Yearly:    Date(2020, 1, 1),
			},
		},
	}
	for _, test := range tests {
		for interval, result := range test.result {
			if got := StartOf(test.date, interval); got != result {
				t.Errorf("StartOf(%v, %v): got %v, want %v", test.date, interval, got, result)
			}
		}
	}
}

func TestEndOf(t *testing.T) {
	var tests = []struct {
		date   time.Time
		result map[Interval]time.Time
	}{
		{
			date: Date(2020, 1, 1),
			result: map[Interval]time.Time{
				Weekly:    Date(2020, 1, 5),
				Monthly:   Date(2020, 1, 31),
				Quarterly: Date(2020, 3, 31),
				Yearly:    Date(2020, 12, 31),
			},
		},
		{
			date: Date(2020, 2, 10),
			result: map[Interval]time.Time{
				Monthly: Date(2020, 2, 29),
			},
		},
	}
	for _, test := range tests {
		for interval, result := range test.result {
			if got := EndOf(test.date, interval); got != result {
				t.Errorf("EndOf(%v, %v): got %v, want %v", test.date, interval, got, result)
			}
		}
	}
}

func TestFindPeriod(t *testing.T) {
	di := NewInterval(Monthly)
	if !di.FindPeriod(Date(2024, 1, 15)) {
		t.Fatal("expected FindPeriod to succeed")
	}
	if di.Start != Date(2024, 1, 1) {
		t.Errorf("got start %v, want 2024-01-01", di.Start)
	}
	if di.End != Date(2024, 2, 1) {
		t.Errorf("got end %v, want 2024-02-01", di.End)
	}
	if di.InclusiveEnd() != Date(2024, 1, 31) {
		t.Errorf("got inclusive end %v, want 2024-01-31", di.InclusiveEnd())
	}
	if !di.Contains(Date(2024, 1, 31)) {
		t.Error("expected the period to contain its inclusive end")
	}
	if di.Contains(Date(2024, 2, 1)) {
		t.Error("expected the period to exclude the next start")
	}
	di.Advance()
	if di.Start != Date(2024, 2, 1) || di.End != Date(2024, 3, 1) {
		t.Errorf("got period %v..%v after advance", di.Start, di.End)
	}
}

func TestFindPeriodClamped(t *testing.T) {
	di := NewInterval(Monthly)
	di.Begin = Date(2024, 2, 1)
	di.Finish = Date(2024, 4, 1)
	if di.FindPeriod(Date(2024, 1, 15)) {
		t.Error("expected a date before the clamp to be rejected")
	}
	if di.FindPeriod(Date(2024, 4, 1)) {
		t.Error("expected a date at the clamp end to be rejected")
	}
	if !di.FindPeriod(Date(2024, 3, 15)) {
		t.Error("expected a date inside the clamp to be accepted")
	}
}

func TestParsePeriod(t *testing.T) {
	var tests = []struct {
		input    string
		duration Interval
		begin    time.Time
		finish   time.Time
		wantErr  bool
	}{
		{input: "monthly", duration: Monthly},
		{input: "weekly from 2024-01-01", duration: Weekly, begin: Date(2024, 1, 1)},
		{input: "quarterly from 2024-01-01 to 2025-01-01", duration: Quarterly, begin: Date(2024, 1, 1), finish: Date(2025, 1, 1)},
		{input: "from 2024-06-01", duration: Once, begin: Date(2024, 6, 1)},
		{input: "fortnightly", wantErr: true},
		{input: "", wantErr: true},
		{input: "from", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			di, err := ParsePeriod(test.input)
			if test.wantErr {
				if err == nil {
					t.Fatalf("ParsePeriod(%q): expected an error", test.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePeriod(%q): %v", test.input, err)
			}
			if di.Duration != test.duration {
				t.Errorf("got duration %v, want %v", di.Duration, test.duration)
			}
			if !di.Begin.Equal(test.begin) {
				t.Errorf("got begin %v, want %v", di.Begin, test.begin)
			}
			if !di.Finish.Equal(test.finish) {
				t.Errorf("got finish %v, want %v", di.Finish, test.finish)
			}
		})
	}
}
