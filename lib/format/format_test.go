// Copyright 2022 Silvio Böhler
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

package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

func testScope(t *testing.T) (scope.Scope, *commodity.Registry) {
	t.Helper()
	color.NoColor = true
	j := journal.New()
	usd := j.Registry.MustGet("USD")
	usd.UpdatePrecision(2)
	x := &journal.Xact{
		Date:  date.Date(2024, 1, 2),
		Payee: "Grocer",
	}
	p := &journal.Posting{
		Account: j.FindAccount("Expenses:Food", true),
		Amount:  amount.New(decimal.RequireFromString("5.00"), usd),
	}
	x.AddPosting(p)
	j.AddXact(x)
	rs := scope.NewReportScope(Symbols(expr.DefaultSymbols(nil)))
	return scope.BindPost(rs, p), j.Registry
}

func render(t *testing.T, text string, s scope.Scope, reg *commodity.Registry) string {
	t.Helper()
	p := &Parser{Exprs: &expr.Parser{Registry: reg}}
	f, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	res, err := f.Render(s)
	if err != nil {
		t.Fatalf("Render(%q): %v", text, err)
	}
	return res
}

func TestAlignment(t *testing.T) {
	s, reg := testScope(t)
	got := render(t, "%-20(payee) %12{amount}", s, reg)
	// The payee is padded right to 20, the amount padded left to 12.
	want := "Grocer" + strings.Repeat(" ", 14) + " " + "    5.00 USD"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	// With no width constraints, the engine renders the default
	// representation of the value.
	s, reg := testScope(t)
	var tests = []struct {
		text string
		want string
	}{
		{"%(payee)", "Grocer"},
		{"%(amount)", "5.00 USD"},
		{"%(1 + 2)", "3"},
	}
	for _, test := range tests {
		if got := render(t, test.text, s, reg); got != test.want {
			t.Errorf("render(%q): got %q, want %q", test.text, got, test.want)
		}
	}
}

func TestEscapes(t *testing.T) {
	s, reg := testScope(t)
	got := render(t, `a\tb\nc\\d %% e`, s, reg)
	want := "a\tb\nc\\d % e"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDirectiveLetters(t *testing.T) {
	s, reg := testScope(t)
	var tests = []struct {
		text string
		want string
	}{
		{"%d", "2024-01-02"},
		{"%P", "Grocer"},
		{"%A", "Expenses:Food"},
		{"%X", ""},
	}
	for _, test := range tests {
		if got := render(t, test.text, s, reg); got != test.want {
			t.Errorf("render(%q): got %q, want %q", test.text, got, test.want)
		}
	}
}

func TestFormatErrors(t *testing.T) {
	s, reg := testScope(t)
	_ = s
	p := &Parser{Exprs: &expr.Parser{Registry: reg}}
	var tests = []string{
		"%{amount",
		"%(payee",
		"%q",
		"%5000(payee)",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			if _, err := p.Parse(text); err == nil {
				t.Errorf("Parse(%q): expected an error", text)
			} else {
				var ferr Error
				if !errors.As(err, &ferr) {
					t.Errorf("Parse(%q): expected a format Error, got %T", text, err)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	var tests = []struct {
		s     string
		width int
		style Elision
		want  string
	}{
		{"abcdefgh", 6, TruncateTrailing, "abcd.."},
		{"abcdefgh", 6, TruncateLeading, "..efgh"},
		{"abcdefgh", 6, TruncateMiddle, "ab..gh"},
		{"abcdefgh", 8, TruncateTrailing, "abcdefgh"},
		{"héllöwörld", 6, TruncateTrailing, "héll.."},
		{"日本語テキスト", 5, TruncateTrailing, "日本語.."},
	}
	for _, test := range tests {
		got := Truncate(test.s, test.width, test.style, 0)
		if got != test.want {
			t.Errorf("Truncate(%q, %d, %v): got %q, want %q", test.s, test.width, test.style, got, test.want)
		}
		if runes := []rune(got); len(runes) != min(test.width, len([]rune(test.s))) {
			t.Errorf("Truncate(%q, %d): width %d code points, want %d", test.s, test.width, len(runes), test.width)
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func TestAbbreviate(t *testing.T) {
	var tests = []struct {
		s         string
		width     int
		abbrevLen int
		want      string
	}{
		{"Expenses:Food:Groceries", 18, 2, "Ex:Food:Groceries"},
		{"Expenses:Food", 13, 2, "Expenses:Food"},
		{"NoColonsHereAtAll", 10, 2, "NoColons.."},
	}
	for _, test := range tests {
		got := Truncate(test.s, test.width, Abbreviate, test.abbrevLen)
		if got != test.want {
			t.Errorf("Truncate(%q, %d, Abbreviate): got %q, want %q", test.s, test.width, got, test.want)
		}
	}
}
