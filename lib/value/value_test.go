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

package value

import (
	"testing"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/shopspring/decimal"
)

func usdEur(t *testing.T) (*commodity.Commodity, *commodity.Commodity) {
	t.Helper()
	reg := commodity.NewRegistry()
	usd := reg.MustGet("USD")
	usd.UpdatePrecision(2)
	eur := reg.MustGet("EUR")
	eur.UpdatePrecision(2)
	return usd, eur
}

func amt(n string, c *commodity.Commodity) Value {
	return Amt(amount.New(decimal.RequireFromString(n), c))
}

func TestAddCoercion(t *testing.T) {
	usd, eur := usdEur(t)
	var tests = []struct {
		desc   string
		v1, v2 Value
		kind   Kind
		str    string
	}{
		{"int+int", Int(1), Int(2), INTEGER, "3"},
		{"int+amount", Int(1), amt("2.00", usd), AMOUNT, "3.00 USD"},
		{"amount+amount", amt("1.00", usd), amt("2.00", usd), AMOUNT, "3.00 USD"},
		{"mismatch widens to balance", amt("1.00", usd), amt("2.00", eur), BALANCE, "2.00 EUR, 1.00 USD"},
		{"null+amount", Null, amt("1.00", usd), AMOUNT, "1.00 USD"},
		{"string concat", Str("foo"), Str("bar"), STRING, "foobar"},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got, err := Add(test.v1, test.v2)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind() != test.kind {
				t.Errorf("got kind %s, want %s", got.Kind(), test.kind)
			}
			if got.String() != test.str {
				t.Errorf("got %q, want %q", got.String(), test.str)
			}
		})
	}
}

func TestSubCollapsesBalance(t *testing.T) {
	usd, eur := usdEur(t)
	mixed, err := Add(amt("1.00", usd), amt("2.00", eur))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := Sub(mixed, amt("2.00", eur))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind() != AMOUNT {
		t.Fatalf("expected the balance to collapse to an amount, got %s", res.Kind())
	}
	if res.String() != "1.00 USD" {
		t.Errorf("got %q, want %q", res.String(), "1.00 USD")
	}
}

func TestDivByZero(t *testing.T) {
	if _, err := Div(Int(1), Int(0)); err == nil {
		t.Error("expected a division by zero error")
	}
}

func TestMulCommodities(t *testing.T) {
	usd, eur := usdEur(t)
	if _, err := Mul(amt("1.00", usd), amt("1.00", eur)); err == nil {
		t.Error("expected an error multiplying two commodities")
	}
	got, err := Mul(amt("2.00", usd), Int(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "6.00 USD" {
		t.Errorf("got %q, want %q", got.String(), "6.00 USD")
	}
}

func TestTruth(t *testing.T) {
	usd, _ := usdEur(t)
	var tests = []struct {
		v    Value
		want bool
	}{
		{Null, false},
		{Bool(false), false},
		{Bool(true), true},
		{Int(0), false},
		{Int(-1), true},
		{amt("0.00", usd), false},
		{amt("0.01", usd), true},
		{Bal(amount.NewBalance()), false},
		{Str(""), false},
		{Str("x"), true},
	}
	for _, test := range tests {
		if got := test.v.Truth(); got != test.want {
			t.Errorf("Truth(%v): got %t, want %t", test.v, got, test.want)
		}
	}
}

func TestCompare(t *testing.T) {
	usd, eur := usdEur(t)
	o, err := Compare(amt("1.00", usd), amt("2.00", usd))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o != compare.Smaller {
		t.Errorf("got %v, want Smaller", o)
	}
	if _, err := Compare(amt("1.00", usd), amt("1.00", eur)); err == nil {
		t.Error("expected an error comparing USD with EUR")
	}
	if _, err := Compare(Str("x"), Int(1)); err == nil {
		t.Error("expected an error comparing string with integer")
	}
}

func TestCompareBalanceWithZero(t *testing.T) {
	usd, eur := usdEur(t)
	mixed, err := Add(amt("-1.00", usd), amt("-2.00", eur))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o, err := Compare(mixed, Int(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o != compare.Smaller {
		t.Errorf("expected an all-negative balance to compare below zero, got %v", o)
	}
}

func TestStripCommodity(t *testing.T) {
	usd, eur := usdEur(t)
	mixed, err := Add(amt("1.50", usd), amt("2.50", eur))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stripped, err := StripCommodity(mixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := stripped.Number()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.String() != "4" {
		t.Errorf("got %s, want 4", n)
	}
}
