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

package expr

import (
	"errors"
	"testing"
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/drewr/ledger/lib/value"
	"github.com/shopspring/decimal"
)

// testPost builds a one-posting journal for binding.
func testPost(t *testing.T) (*journal.Journal, *journal.Posting) {
	t.Helper()
	j := journal.New()
	usd := j.Registry.MustGet("USD")
	usd.UpdatePrecision(2)
	x := &journal.Xact{
		Date:  date.Date(2024, 1, 2),
		Payee: "Grocer",
		State: journal.Cleared,
	}
	p := &journal.Posting{
		Account: j.FindAccount("Expenses:Food", true),
		Amount:  amount.New(decimal.RequireFromString("5.00"), usd),
	}
	x.AddPosting(p)
	j.AddXact(x)
	return j, p
}

func bindScope(j *journal.Journal, p *journal.Posting) scope.Scope {
	rs := scope.NewReportScope(DefaultSymbols(nil))
	return scope.BindPost(rs, p)
}

func TestEval(t *testing.T) {
	j, p := testPost(t)
	s := bindScope(j, p)
	var tests = []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"2 - 3", "-1"},
		{"-5", "-5"},
		{"10 / 4", "2.5"},
		{"1 < 2 ? 10 : 20", "10"},
		{"1 > 2 ? 10 : 20", "20"},
		{"!(1 = 1)", "false"},
		{"1 = 1 & 2 = 2", "true"},
		{"1 = 2 | 2 = 2", "true"},
		{"amount", "5.00 USD"},
		{"a", "5.00 USD"},
		{"payee", "Grocer"},
		{"account", "Expenses:Food"},
		{"cleared", "true"},
		{"X", "true"},
		{"l", "2"},
		{"d", "2024-01-02"},
		{"/Groc/", "true"},
		{"/Butcher/", "false"},
		{"//Expenses:Food/", "true"},
		{"///Food/", "true"},
		{"a * 2", "10.00 USD"},
		{"abs(0 - 3)", "3"},
		{"strip(a)", "5"},
		{"d < [2024-04-01]", "true"},
		{"d >= [2024-04-01]", "false"},
		{"{2.50 USD} + a", "7.50 USD"},
	}
	parser := Parser{Registry: j.Registry}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			op, err := parser.Parse(test.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", test.input, err)
			}
			got, err := Eval(op, s)
			if err != nil {
				t.Fatalf("Eval(%q): %v", test.input, err)
			}
			if got.String() != test.want {
				t.Errorf("Eval(%q): got %q, want %q", test.input, got.String(), test.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []string{
		"1 +",
		"(1",
		"1 ? 2",
		"{1.00",
		"[2024-13-99]",
		"/unterminated",
		"1 2",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q): expected an error", input)
			} else {
				var perr ParseError
				if !errors.As(err, &perr) {
					t.Errorf("Parse(%q): expected a ParseError, got %T", input, err)
				}
			}
		})
	}
}

func TestTernaryWithoutColon(t *testing.T) {
	_, err := Parse("1 ? 2 3")
	var perr ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a ParseError, got %v", err)
	}
}

func TestParsePartial(t *testing.T) {
	var p Parser
	op, pos, err := p.ParsePartial("1 + 2) trailing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if "1 + 2) trailing"[pos] != ')' {
		t.Errorf("expected the parser to stop at ')', stopped at %d", pos)
	}
	got, err := Eval(op, scope.NewSymbolScope(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "3" {
		t.Errorf("got %q, want %q", got.String(), "3")
	}
}

func TestShortCircuit(t *testing.T) {
	// The dead branch must never be evaluated: dividing by zero there
	// would otherwise fail.
	s := scope.NewSymbolScope(nil)
	op, err := Parse("0 & 1 / 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Eval(op, s)
	if err != nil {
		t.Fatalf("short-circuit and evaluated its dead branch: %v", err)
	}
	if got.Truth() {
		t.Error("expected false")
	}
	op, err = Parse("1 | 1 / 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Eval(op, s); err != nil {
		t.Fatalf("short-circuit or evaluated its dead branch: %v", err)
	}
}

func TestLookupError(t *testing.T) {
	op, err := Parse("nonesuch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = Eval(op, scope.NewSymbolScope(nil))
	var lerr LookupError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected a LookupError, got %v", err)
	}
	if lerr.Name != "nonesuch" {
		t.Errorf("got %q, want %q", lerr.Name, "nonesuch")
	}
}

func TestCallScope(t *testing.T) {
	syms := scope.NewSymbolScope(nil)
	syms.Define("second", func(s scope.Scope) (value.Value, error) {
		args := scope.Args(s)
		if len(args) != 2 {
			return value.Null, value.Errorf("expected two arguments")
		}
		return args[1], nil
	})
	op, err := Parse("second(1, 42)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Eval(op, syms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "42" {
		t.Errorf("got %q, want %q", got.String(), "42")
	}
}

func TestMarketValue(t *testing.T) {
	j, p := testPost(t)
	eur := j.Registry.MustGet("EUR")
	eur.UpdatePrecision(2)
	src := priceSource{
		c:     p.Amount.Commodity,
		price: amount.New(decimal.RequireFromString("0.90"), eur),
	}
	rs := scope.NewReportScope(DefaultSymbols(nil))
	rs.Prices = src
	s := scope.BindPost(rs, p)
	op, err := Parse("v")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Eval(op, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "4.50 EUR" {
		t.Errorf("got %q, want %q", got.String(), "4.50 EUR")
	}
}

type priceSource struct {
	c     *commodity.Commodity
	price amount.Amount
}

func (ps priceSource) ValueAt(c *commodity.Commodity, t time.Time) (amount.Amount, bool) {
	if c == ps.c {
		return ps.price, true
	}
	return amount.Amount{}, false
}
