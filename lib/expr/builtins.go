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
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/value"
)

// DefaultSymbols creates the symbol scope holding the built-in
// functions, chained to parent.
func DefaultSymbols(parent scope.Scope) *scope.SymbolScope {
	syms := scope.NewSymbolScope(parent)
	syms.Define("abs", unary(value.Abs))
	syms.Define("strip", unary(value.StripCommodity))
	syms.Define("round", unary(value.Round))
	// scrub strips price annotations and cost markers before
	// rendering; amounts here carry neither, so it normalizes
	// compound values.
	syms.Define("scrub", unary(func(v value.Value) (value.Value, error) {
		return value.Simplify(v), nil
	}))
	syms.Define("value", valueAt)
	syms.Define("market", valueAt)
	syms.Define("format_date", formatDate)
	syms.Define("mean", mean)
	return syms
}

// mean divides its argument (the running total when absent) by the
// current item's count.
func mean(s scope.Scope) (value.Value, error) {
	args := scope.Args(s)
	var (
		v   value.Value
		err error
	)
	if len(args) > 0 {
		v = args[0]
	} else {
		v, err = resolveName(s, "total")
		if err != nil {
			return value.Null, err
		}
	}
	count, err := resolveName(s, "count")
	if err != nil {
		return value.Null, err
	}
	n, err := count.AsInt()
	if err != nil {
		return value.Null, err
	}
	if n == 0 {
		return v, nil
	}
	return value.Div(v, value.Int(n))
}

func resolveName(s scope.Scope, name string) (value.Value, error) {
	c, ok := s.Lookup(name)
	if !ok {
		return value.Null, value.Errorf("unknown identifier: %s", name)
	}
	return c(s)
}

func unary(f func(value.Value) (value.Value, error)) scope.Callable {
	return func(s scope.Scope) (value.Value, error) {
		args := scope.Args(s)
		if len(args) != 1 {
			return value.Null, value.Errorf("expected one argument, got %d", len(args))
		}
		return f(args[0])
	}
}

// valueAt returns the price-historical valuation of its first argument
// at the time given by its second. Absent a time, the current item's
// date or "now" is used. Without a known price the argument is
// returned unchanged.
func valueAt(s scope.Scope) (value.Value, error) {
	args := scope.Args(s)
	if len(args) == 0 {
		return value.Null, value.Errorf("value: expected an argument")
	}
	report := scope.FindReport(s)
	if report == nil || report.Prices == nil {
		return args[0], nil
	}
	return MarketValue(args[0], valuationTime(s, report, args), report.Prices)
}

// MarketValue revalues v at time t using the given price source.
// Positions without a known price are kept unchanged.
func MarketValue(v value.Value, t time.Time, prices scope.PriceSource) (value.Value, error) {
	if prices == nil {
		return v, nil
	}
	switch v.Kind() {
	case value.AMOUNT, value.BALANCE:
		bal, err := v.AsBalance()
		if err != nil {
			return value.Null, err
		}
		res := amount.NewBalance()
		for _, a := range bal.Amounts() {
			if price, ok := prices.ValueAt(a.Commodity, t); ok {
				res.Add(amount.New(a.Number.Mul(price.Number), price.Commodity))
			} else {
				res.Add(a)
			}
		}
		return value.Simplify(value.Bal(res)), nil
	}
	return v, nil
}

func valuationTime(s scope.Scope, report *scope.ReportScope, args []value.Value) time.Time {
	if len(args) > 1 {
		if t, err := args[1].AsDate(); err == nil {
			return t
		}
	}
	if p := scope.BoundPost(s); p != nil {
		return p.Date()
	}
	if !report.CurrentDate.IsZero() {
		return report.CurrentDate
	}
	return time.Now()
}

func formatDate(s scope.Scope) (value.Value, error) {
	args := scope.Args(s)
	if len(args) == 0 {
		return value.Null, value.Errorf("format_date: expected an argument")
	}
	t, err := args[0].AsDate()
	if err != nil {
		return value.Null, err
	}
	layout := "2006-01-02"
	if report := scope.FindReport(s); report != nil && report.DateFormat != "" {
		layout = report.DateFormat
	}
	if len(args) > 1 {
		layout = args[1].AsString()
	}
	return value.Str(t.Format(layout)), nil
}
