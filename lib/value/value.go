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

// Package value implements the polymorphic value type produced by
// evaluating expressions. Arithmetic is dispatched on the pair of kinds
// with a fixed coercion matrix: integers widen to amounts, amounts of
// mismatched commodities combine into balances.
package value

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/compare"
	"github.com/shopspring/decimal"
)

// Kind is the tag of a value.
type Kind int

const (
	// NULL is the absent value.
	NULL Kind = iota
	// BOOLEAN is a truth value.
	BOOLEAN
	// INTEGER is a plain integer.
	INTEGER
	// AMOUNT is a scalar in one commodity.
	AMOUNT
	// BALANCE is a sum over several commodities.
	BALANCE
	// SEQUENCE is an ordered list of values.
	SEQUENCE
	// DATE is a calendar date.
	DATE
	// DATETIME is a point in time.
	DATETIME
	// STRING is a text value.
	STRING
	// MASK is a compiled pattern.
	MASK
)

func (k Kind) String() string {
	switch k {
	case NULL:
		return "null"
	case BOOLEAN:
		return "boolean"
	case INTEGER:
		return "integer"
	case AMOUNT:
		return "amount"
	case BALANCE:
		return "balance"
	case SEQUENCE:
		return "sequence"
	case DATE:
		return "date"
	case DATETIME:
		return "datetime"
	case STRING:
		return "string"
	case MASK:
		return "mask"
	}
	return "unknown"
}

// Error is an arithmetic or coercion failure.
type Error struct {
	msg string
}

func (e Error) Error() string {
	return e.msg
}

// Errorf creates a calculation error.
func Errorf(format string, args ...interface{}) Error {
	return Error{msg: fmt.Sprintf(format, args...)}
}

// Value is a tagged union over the enumerated kinds.
type Value struct {
	kind Kind
	b    bool
	i    int64
	amt  amount.Amount
	bal  amount.Balance
	seq  []Value
	t    time.Time
	s    string
	mask *regexp.Regexp
}

// Null is the null value.
var Null = Value{kind: NULL}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{kind: BOOLEAN, b: b}
}

// Int creates an integer value.
func Int(i int64) Value {
	return Value{kind: INTEGER, i: i}
}

// Amt creates an amount value.
func Amt(a amount.Amount) Value {
	return Value{kind: AMOUNT, amt: a}
}

// Bal creates a balance value.
func Bal(b amount.Balance) Value {
	return Value{kind: BALANCE, bal: b}
}

// Seq creates a sequence value.
func Seq(vs ...Value) Value {
	return Value{kind: SEQUENCE, seq: vs}
}

// Date creates a date value.
func Date(t time.Time) Value {
	return Value{kind: DATE, t: t}
}

// DateTime creates a datetime value.
func DateTime(t time.Time) Value {
	return Value{kind: DATETIME, t: t}
}

// Str creates a string value.
func Str(s string) Value {
	return Value{kind: STRING, s: s}
}

// Mask creates a mask value from a compiled pattern.
func Mask(r *regexp.Regexp) Value {
	return Value{kind: MASK, mask: r}
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == NULL
}

// AsBool returns the boolean payload.
func (v Value) AsBool() bool {
	return v.b
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case INTEGER:
		return v.i, nil
	case AMOUNT:
		return v.amt.Number.IntPart(), nil
	case BOOLEAN:
		if v.b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, Errorf("cannot coerce %s to integer", v.kind)
}

// AsAmount coerces the value to an amount. A single-commodity balance
// collapses to its sole position.
func (v Value) AsAmount() (amount.Amount, error) {
	switch v.kind {
	case INTEGER:
		return amount.FromInt(v.i), nil
	case AMOUNT:
		return v.amt, nil
	case BALANCE:
		as := v.bal.Amounts()
		switch len(as) {
		case 0:
			return amount.Amount{}, nil
		case 1:
			return as[0], nil
		}
		return amount.Amount{}, Errorf("balance with %d commodities is not an amount", len(as))
	case NULL:
		return amount.Amount{}, nil
	}
	return amount.Amount{}, Errorf("cannot coerce %s to amount", v.kind)
}

// AsBalance coerces the value to a balance.
func (v Value) AsBalance() (amount.Balance, error) {
	switch v.kind {
	case NULL:
		return amount.NewBalance(), nil
	case INTEGER:
		return amount.BalanceOf(amount.FromInt(v.i)), nil
	case AMOUNT:
		return amount.BalanceOf(v.amt), nil
	case BALANCE:
		return v.bal, nil
	}
	return nil, Errorf("cannot coerce %s to balance", v.kind)
}

// AsDate returns the date payload.
func (v Value) AsDate() (time.Time, error) {
	switch v.kind {
	case DATE, DATETIME:
		return v.t, nil
	}
	return time.Time{}, Errorf("cannot coerce %s to date", v.kind)
}

// AsString returns the string payload, or the default rendering for
// other kinds.
func (v Value) AsString() string {
	if v.kind == STRING {
		return v.s
	}
	return v.String()
}

// AsMask returns the mask payload.
func (v Value) AsMask() (*regexp.Regexp, error) {
	if v.kind != MASK {
		return nil, Errorf("cannot coerce %s to mask", v.kind)
	}
	return v.mask, nil
}

// AsSequence returns the value as a sequence. Non-sequence values yield
// a singleton.
func (v Value) AsSequence() []Value {
	switch v.kind {
	case SEQUENCE:
		return v.seq
	case NULL:
		return nil
	}
	return []Value{v}
}

// Truth reports the boolean interpretation: null is false, a zero
// amount or balance is false, anything else is true.
func (v Value) Truth() bool {
	switch v.kind {
	case NULL:
		return false
	case BOOLEAN:
		return v.b
	case INTEGER:
		return v.i != 0
	case AMOUNT:
		return !v.amt.IsZero()
	case BALANCE:
		return !v.bal.IsZero()
	case SEQUENCE:
		return len(v.seq) > 0
	case DATE, DATETIME:
		return !v.t.IsZero()
	case STRING:
		return v.s != ""
	case MASK:
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case NULL:
		return ""
	case BOOLEAN:
		if v.b {
			return "true"
		}
		return "false"
	case INTEGER:
		return fmt.Sprintf("%d", v.i)
	case AMOUNT:
		return v.amt.String()
	case BALANCE:
		return v.bal.String()
	case SEQUENCE:
		strs := make([]string, 0, len(v.seq))
		for _, el := range v.seq {
			strs = append(strs, el.String())
		}
		return "(" + strings.Join(strs, ", ") + ")"
	case DATE:
		return v.t.Format("2006-01-02")
	case DATETIME:
		return v.t.Format("2006-01-02 15:04:05")
	case STRING:
		return v.s
	case MASK:
		return "/" + v.mask.String() + "/"
	}
	return ""
}

// Number returns the decimal magnitude for numeric kinds.
func (v Value) Number() (decimal.Decimal, error) {
	switch v.kind {
	case INTEGER:
		return decimal.NewFromInt(v.i), nil
	case AMOUNT:
		return v.amt.Number, nil
	}
	return decimal.Decimal{}, Errorf("%s has no single magnitude", v.kind)
}

// Compare orders two values of compatible kinds.
func Compare(v1, v2 Value) (compare.Order, error) {
	switch {
	case v1.kind == INTEGER && v2.kind == INTEGER:
		return compare.Ordered(v1.i, v2.i), nil
	case (v1.kind == BALANCE || v2.kind == BALANCE) && isNumeric(v1.kind) && isNumeric(v2.kind):
		// Balances compare by the sum of their stripped positions, so
		// sign checks work for multi-commodity values.
		s1, err := strippedSum(v1)
		if err != nil {
			return compare.Equal, err
		}
		s2, err := strippedSum(v2)
		if err != nil {
			return compare.Equal, err
		}
		return compare.Decimal(s1, s2), nil
	case isNumeric(v1.kind) && isNumeric(v2.kind):
		a1, err := v1.AsAmount()
		if err != nil {
			return compare.Equal, err
		}
		a2, err := v2.AsAmount()
		if err != nil {
			return compare.Equal, err
		}
		if a1.Commodity != nil && a2.Commodity != nil && a1.Commodity != a2.Commodity {
			return compare.Equal, Errorf("cannot compare amounts in %s and %s", a1.Commodity.Name(), a2.Commodity.Name())
		}
		return compare.Decimal(a1.Number, a2.Number), nil
	case (v1.kind == DATE || v1.kind == DATETIME) && (v2.kind == DATE || v2.kind == DATETIME):
		return compare.Time(v1.t, v2.t), nil
	case v1.kind == STRING && v2.kind == STRING:
		return compare.Ordered(v1.s, v2.s), nil
	case v1.kind == BOOLEAN && v2.kind == BOOLEAN:
		return compare.Bool(v1.b, v2.b), nil
	case v1.kind == STRING && v2.kind == MASK:
		return matchOrder(v2.mask, v1.s), nil
	case v1.kind == MASK && v2.kind == STRING:
		return matchOrder(v1.mask, v2.s), nil
	}
	return compare.Equal, Errorf("cannot compare %s with %s", v1.kind, v2.kind)
}

func matchOrder(r *regexp.Regexp, s string) compare.Order {
	if r.MatchString(s) {
		return compare.Equal
	}
	return compare.Greater
}

func isNumeric(k Kind) bool {
	return k == INTEGER || k == AMOUNT || k == BALANCE
}

func strippedSum(v Value) (decimal.Decimal, error) {
	bal, err := v.AsBalance()
	if err != nil {
		return decimal.Decimal{}, err
	}
	var sum decimal.Decimal
	for _, a := range bal.Amounts() {
		sum = sum.Add(a.Number)
	}
	return sum, nil
}
