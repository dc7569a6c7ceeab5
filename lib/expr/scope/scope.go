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

// Package scope implements the name-resolution model of the expression
// language. A scope maps names to callables; scopes compose by
// chaining, and a lookup walks inner to outer until a hit.
package scope

import (
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/drewr/ledger/lib/value"
)

// Callable computes a value in a scope.
type Callable func(s Scope) (value.Value, error)

// Constant wraps a fixed value as a callable.
func Constant(v value.Value) Callable {
	return func(Scope) (value.Value, error) {
		return v, nil
	}
}

// Scope resolves names to callables. Lookup must be referentially
// transparent within one evaluation.
type Scope interface {
	Lookup(name string) (Callable, bool)
	Parent() Scope
}

// SymbolScope holds static named bindings.
type SymbolScope struct {
	parent  Scope
	symbols map[string]Callable
}

// NewSymbolScope creates a symbol scope chained to parent.
func NewSymbolScope(parent Scope) *SymbolScope {
	return &SymbolScope{
		parent:  parent,
		symbols: make(map[string]Callable),
	}
}

// Define binds a name.
func (s *SymbolScope) Define(name string, c Callable) {
	s.symbols[name] = c
}

func (s *SymbolScope) Lookup(name string) (Callable, bool) {
	if c, ok := s.symbols[name]; ok {
		return c, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

func (s *SymbolScope) Parent() Scope {
	return s.parent
}

// CallScope adds the positional arguments of a function invocation.
type CallScope struct {
	parent Scope
	args   []value.Value
}

// NewCallScope creates a call scope with the given evaluated arguments.
func NewCallScope(parent Scope, args []value.Value) *CallScope {
	return &CallScope{parent: parent, args: args}
}

// Arg returns the nth evaluated argument, or null.
func (s *CallScope) Arg(n int) value.Value {
	if n < 0 || n >= len(s.args) {
		return value.Null
	}
	return s.args[n]
}

// Size returns the argument count.
func (s *CallScope) Size() int {
	return len(s.args)
}

func (s *CallScope) Lookup(name string) (Callable, bool) {
	switch name {
	case "size":
		return Constant(value.Int(int64(len(s.args)))), true
	case "arg":
		defining := s
		return func(es Scope) (value.Value, error) {
			invocation := Args(es)
			if len(invocation) == 0 {
				return value.Null, nil
			}
			n, err := invocation[0].AsInt()
			if err != nil {
				return value.Null, err
			}
			return defining.Arg(int(n)), nil
		}, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

func (s *CallScope) Parent() Scope {
	return s.parent
}

// Args returns the arguments of the innermost call scope.
func Args(s Scope) []value.Value {
	for ; s != nil; s = s.Parent() {
		if cs, ok := s.(*CallScope); ok {
			return cs.args
		}
	}
	return nil
}

// PriceSource yields historical commodity valuations.
type PriceSource interface {
	// ValueAt returns the price of one unit of c at time t.
	ValueAt(c *commodity.Commodity, t time.Time) (amount.Amount, bool)
}

// ReportScope carries the process-wide report defaults. It is
// configured at pipeline construction and read-only during evaluation.
type ReportScope struct {
	parent Scope

	// AmountExpr and TotalExpr are the configured display expressions.
	AmountExpr, TotalExpr               Callable
	DisplayAmountExpr, DisplayTotalExpr Callable
	// DateFormat is the layout for rendering dates.
	DateFormat string
	// OutputDateFormat overrides DateFormat for terminal output.
	OutputDateFormat string
	// CurrentDate is "now" for valuation and forecasting.
	CurrentDate time.Time
	// Prices resolves historical valuations; may be nil.
	Prices PriceSource
}

// NewReportScope creates a report scope with defaults.
func NewReportScope(parent Scope) *ReportScope {
	return &ReportScope{
		parent:     parent,
		DateFormat: "2006-01-02",
	}
}

func (s *ReportScope) Lookup(name string) (Callable, bool) {
	switch name {
	case "amount_expr":
		if s.AmountExpr != nil {
			return s.AmountExpr, true
		}
		return Resolve("amount"), true
	case "total_expr":
		if s.TotalExpr != nil {
			return s.TotalExpr, true
		}
		return Resolve("total"), true
	case "display_amount_expr":
		if s.DisplayAmountExpr != nil {
			return s.DisplayAmountExpr, true
		}
		return s.Lookup("amount_expr")
	case "display_total_expr":
		if s.DisplayTotalExpr != nil {
			return s.DisplayTotalExpr, true
		}
		return s.Lookup("total_expr")
	case "now", "today", "m":
		d := s.CurrentDate
		if d.IsZero() {
			d = time.Now()
		}
		return Constant(value.Date(d)), true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

// Resolve returns a callable which looks up the given name in the
// scope it is eventually evaluated in. This defers resolution to the
// innermost scope, e.g. the bound item.
func Resolve(name string) Callable {
	return func(es Scope) (value.Value, error) {
		if c, ok := es.Lookup(name); ok {
			return c(es)
		}
		return value.Null, LookupError{Name: name}
	}
}

// LookupError reports an unresolved identifier.
type LookupError struct {
	Name string
}

func (e LookupError) Error() string {
	return "unknown identifier: " + e.Name
}

func (s *ReportScope) Parent() Scope {
	return s.parent
}

// FindReport returns the enclosing report scope, if any.
func FindReport(s Scope) *ReportScope {
	for ; s != nil; s = s.Parent() {
		if rs, ok := s.(*ReportScope); ok {
			return rs
		}
	}
	return nil
}
