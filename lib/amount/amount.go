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

// Package amount implements commodity-tagged quantities and balances.
package amount

import (
	"fmt"
	"strings"

	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/shopspring/decimal"
)

// Amount is a number tagged with a commodity. A nil commodity denotes a
// bare number.
type Amount struct {
	Number    decimal.Decimal
	Commodity *commodity.Commodity
}

// New creates an amount.
func New(n decimal.Decimal, c *commodity.Commodity) Amount {
	return Amount{Number: n, Commodity: c}
}

// FromInt creates a bare integer amount.
func FromInt(n int64) Amount {
	return Amount{Number: decimal.NewFromInt(n)}
}

// Parse parses a decimal number into a bare amount.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{Number: d}, nil
}

// IsZero reports whether the number is zero.
func (a Amount) IsZero() bool {
	return a.Number.IsZero()
}

// Neg negates the amount.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Commodity: a.Commodity}
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	return Amount{Number: a.Number.Abs(), Commodity: a.Commodity}
}

// StripCommodity drops the commodity, for cross-commodity aggregation.
func (a Amount) StripCommodity() Amount {
	return Amount{Number: a.Number}
}

// Add adds two amounts of the same commodity.
func (a Amount) Add(a2 Amount) (Amount, error) {
	if a.Commodity != a2.Commodity {
		return Amount{}, fmt.Errorf("commodity mismatch: %s vs %s", name(a.Commodity), name(a2.Commodity))
	}
	return Amount{Number: a.Number.Add(a2.Number), Commodity: a.Commodity}, nil
}

// Sub subtracts an amount of the same commodity.
func (a Amount) Sub(a2 Amount) (Amount, error) {
	return a.Add(a2.Neg())
}

// Mul multiplies the amounts. The result carries the commodity of
// whichever operand has one; two different commodities are an error.
func (a Amount) Mul(a2 Amount) (Amount, error) {
	c, err := combine(a.Commodity, a2.Commodity)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Number: a.Number.Mul(a2.Number), Commodity: c}, nil
}

// Div divides by a2. Dividing two amounts of the same commodity yields a
// bare number; otherwise the result carries the commodity of whichever
// operand has one, and two different commodities are an error.
func (a Amount) Div(a2 Amount) (Amount, error) {
	if a2.Number.IsZero() {
		return Amount{}, fmt.Errorf("division by zero")
	}
	if a.Commodity != nil && a.Commodity == a2.Commodity {
		return Amount{Number: a.Number.DivRound(a2.Number, divPrecision)}, nil
	}
	c, err := combine(a.Commodity, a2.Commodity)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Number: a.Number.DivRound(a2.Number, divPrecision), Commodity: c}, nil
}

const divPrecision = 8

func combine(c1, c2 *commodity.Commodity) (*commodity.Commodity, error) {
	switch {
	case c1 == nil:
		return c2, nil
	case c2 == nil:
		return c1, nil
	case c1 == c2:
		return c1, nil
	}
	return nil, fmt.Errorf("commodity mismatch: %s vs %s", c1.Name(), c2.Name())
}

func name(c *commodity.Commodity) string {
	if c == nil {
		return "<none>"
	}
	return c.Name()
}

// Compare orders amounts by commodity, then number.
func Compare(a1, a2 Amount) compare.Order {
	if o := commodity.Compare(a1.Commodity, a2.Commodity); o != compare.Equal {
		return o
	}
	return compare.Decimal(a1.Number, a2.Number)
}

func (a Amount) String() string {
	if a.Commodity == nil {
		return a.Number.String()
	}
	return fmt.Sprintf("%s %s", a.Number.StringFixed(a.Commodity.Precision()), a.Commodity.Name())
}

// Round rounds the number to the commodity's display precision.
func (a Amount) Round() Amount {
	if a.Commodity == nil {
		return a
	}
	return Amount{Number: a.Number.Round(a.Commodity.Precision()), Commodity: a.Commodity}
}

// Balance is a sum of amounts in possibly several commodities.
type Balance map[*commodity.Commodity]decimal.Decimal

// NewBalance creates an empty balance.
func NewBalance() Balance {
	return make(Balance)
}

// BalanceOf creates a balance holding the given amounts.
func BalanceOf(as ...Amount) Balance {
	b := NewBalance()
	for _, a := range as {
		b.Add(a)
	}
	return b
}

// Add adds an amount to the balance, dropping zero positions.
func (b Balance) Add(a Amount) {
	n := b[a.Commodity].Add(a.Number)
	if n.IsZero() {
		delete(b, a.Commodity)
	} else {
		b[a.Commodity] = n
	}
}

// AddBalance adds every position of b2.
func (b Balance) AddBalance(b2 Balance) {
	for c, n := range b2 {
		b.Add(Amount{Number: n, Commodity: c})
	}
}

// Clone copies the balance.
func (b Balance) Clone() Balance {
	res := make(Balance, len(b))
	for c, n := range b {
		res[c] = n
	}
	return res
}

// Neg returns the negated balance.
func (b Balance) Neg() Balance {
	res := make(Balance, len(b))
	for c, n := range b {
		res[c] = n.Neg()
	}
	return res
}

// IsZero reports whether every position is zero.
func (b Balance) IsZero() bool {
	return len(b) == 0
}

// Amounts returns the positions sorted by commodity.
func (b Balance) Amounts() []Amount {
	res := make([]Amount, 0, len(b))
	for c, n := range b {
		res = append(res, Amount{Number: n, Commodity: c})
	}
	compare.Sort(res, Compare)
	return res
}

func (b Balance) String() string {
	as := b.Amounts()
	if len(as) == 0 {
		return "0"
	}
	strs := make([]string, 0, len(as))
	for _, a := range as {
		strs = append(strs, a.String())
	}
	return strings.Join(strs, ", ")
}
