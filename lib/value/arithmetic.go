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
	"github.com/drewr/ledger/lib/amount"
	"github.com/shopspring/decimal"
)

// Add adds two values. Mismatched commodities widen to a balance.
func Add(v1, v2 Value) (Value, error) {
	switch {
	case v1.kind == NULL:
		return v2, nil
	case v2.kind == NULL:
		return v1, nil
	case v1.kind == INTEGER && v2.kind == INTEGER:
		return Int(v1.i + v2.i), nil
	case v1.kind == BALANCE || v2.kind == BALANCE:
		return addBalances(v1, v2, false)
	case isNumeric(v1.kind) && isNumeric(v2.kind):
		a1, _ := v1.AsAmount()
		a2, _ := v2.AsAmount()
		// An integer widens to an amount in the other operand's commodity.
		if v1.kind == INTEGER {
			a1.Commodity = a2.Commodity
		} else if v2.kind == INTEGER {
			a2.Commodity = a1.Commodity
		}
		if res, err := a1.Add(a2); err == nil {
			return Amt(res), nil
		}
		return addBalances(v1, v2, false)
	case v1.kind == STRING && v2.kind == STRING:
		return Str(v1.s + v2.s), nil
	case v1.kind == DATE && v2.kind == INTEGER:
		return Date(v1.t.AddDate(0, 0, int(v2.i))), nil
	case v1.kind == SEQUENCE:
		return Seq(append(append([]Value{}, v1.seq...), v2.AsSequence()...)...), nil
	}
	return Null, Errorf("cannot add %s and %s", v1.kind, v2.kind)
}

// Sub subtracts two values under the same coercion rules as Add.
func Sub(v1, v2 Value) (Value, error) {
	switch {
	case v2.kind == NULL:
		return v1, nil
	case v1.kind == NULL:
		return Neg(v2)
	case v1.kind == INTEGER && v2.kind == INTEGER:
		return Int(v1.i - v2.i), nil
	case v1.kind == BALANCE || v2.kind == BALANCE:
		return addBalances(v1, v2, true)
	case isNumeric(v1.kind) && isNumeric(v2.kind):
		a1, _ := v1.AsAmount()
		a2, _ := v2.AsAmount()
		if v1.kind == INTEGER {
			a1.Commodity = a2.Commodity
		} else if v2.kind == INTEGER {
			a2.Commodity = a1.Commodity
		}
		if res, err := a1.Sub(a2); err == nil {
			return Amt(res), nil
		}
		return addBalances(v1, v2, true)
	case v1.kind == DATE && v2.kind == INTEGER:
		return Date(v1.t.AddDate(0, 0, -int(v2.i))), nil
	case v1.kind == DATE && v2.kind == DATE:
		return Int(int64(v1.t.Sub(v2.t).Hours() / 24)), nil
	}
	return Null, Errorf("cannot subtract %s from %s", v2.kind, v1.kind)
}

func addBalances(v1, v2 Value, negate bool) (Value, error) {
	b1, err := v1.AsBalance()
	if err != nil {
		return Null, err
	}
	b2, err := v2.AsBalance()
	if err != nil {
		return Null, err
	}
	res := b1.Clone()
	if negate {
		b2 = b2.Neg()
	}
	res.AddBalance(b2)
	return Simplify(Bal(res)), nil
}

// Simplify collapses a single-commodity balance into an amount and an
// empty balance into the zero amount.
func Simplify(v Value) Value {
	if v.kind != BALANCE {
		return v
	}
	as := v.bal.Amounts()
	switch len(as) {
	case 0:
		return Amt(amount.Amount{})
	case 1:
		return Amt(as[0])
	}
	return v
}

// Mul multiplies two values. Two different commodities are an error.
func Mul(v1, v2 Value) (Value, error) {
	switch {
	case v1.kind == NULL || v2.kind == NULL:
		return Null, nil
	case v1.kind == INTEGER && v2.kind == INTEGER:
		return Int(v1.i * v2.i), nil
	case v1.kind == BALANCE && (v2.kind == INTEGER || v2.kind == AMOUNT && v2.amt.Commodity == nil):
		return scaleBalance(v1.bal, v2, false)
	case v2.kind == BALANCE && (v1.kind == INTEGER || v1.kind == AMOUNT && v1.amt.Commodity == nil):
		return scaleBalance(v2.bal, v1, false)
	case isNumeric(v1.kind) && isNumeric(v2.kind):
		a1, err := v1.AsAmount()
		if err != nil {
			return Null, err
		}
		a2, err := v2.AsAmount()
		if err != nil {
			return Null, err
		}
		res, err := a1.Mul(a2)
		if err != nil {
			return Null, Error{msg: err.Error()}
		}
		return Amt(res), nil
	}
	return Null, Errorf("cannot multiply %s and %s", v1.kind, v2.kind)
}

// Div divides two values. The divisor must be a compatible denominator;
// division by zero is an error.
func Div(v1, v2 Value) (Value, error) {
	switch {
	case v1.kind == NULL || v2.kind == NULL:
		return Null, nil
	case v1.kind == BALANCE && (v2.kind == INTEGER || v2.kind == AMOUNT && v2.amt.Commodity == nil):
		return scaleBalance(v1.bal, v2, true)
	case isNumeric(v1.kind) && isNumeric(v2.kind):
		a1, err := v1.AsAmount()
		if err != nil {
			return Null, err
		}
		a2, err := v2.AsAmount()
		if err != nil {
			return Null, err
		}
		res, err := a1.Div(a2)
		if err != nil {
			return Null, Error{msg: err.Error()}
		}
		return Amt(res), nil
	}
	return Null, Errorf("cannot divide %s by %s", v1.kind, v2.kind)
}

func scaleBalance(b amount.Balance, factor Value, invert bool) (Value, error) {
	n, err := factor.Number()
	if err != nil {
		return Null, err
	}
	if invert && n.IsZero() {
		return Null, Errorf("division by zero")
	}
	res := amount.NewBalance()
	for _, a := range b.Amounts() {
		var scaled decimal.Decimal
		if invert {
			scaled = a.Number.DivRound(n, 8)
		} else {
			scaled = a.Number.Mul(n)
		}
		res.Add(amount.New(scaled, a.Commodity))
	}
	return Simplify(Bal(res)), nil
}

// Neg negates a value.
func Neg(v Value) (Value, error) {
	switch v.kind {
	case NULL:
		return Null, nil
	case INTEGER:
		return Int(-v.i), nil
	case AMOUNT:
		return Amt(v.amt.Neg()), nil
	case BALANCE:
		return Bal(v.bal.Neg()), nil
	case BOOLEAN:
		return Bool(!v.b), nil
	}
	return Null, Errorf("cannot negate %s", v.kind)
}

// Abs returns the absolute value.
func Abs(v Value) (Value, error) {
	switch v.kind {
	case NULL:
		return Null, nil
	case INTEGER:
		if v.i < 0 {
			return Int(-v.i), nil
		}
		return v, nil
	case AMOUNT:
		return Amt(v.amt.Abs()), nil
	case BALANCE:
		res := amount.NewBalance()
		for _, a := range v.bal.Amounts() {
			res.Add(a.Abs())
		}
		return Bal(res), nil
	}
	return Null, Errorf("cannot take the absolute value of %s", v.kind)
}

// StripCommodity removes commodities for cross-commodity aggregation,
// summing balance positions into a bare number.
func StripCommodity(v Value) (Value, error) {
	switch v.kind {
	case NULL, INTEGER:
		return v, nil
	case AMOUNT:
		return Amt(v.amt.StripCommodity()), nil
	case BALANCE:
		sum := amount.Amount{}
		for _, a := range v.bal.Amounts() {
			sum.Number = sum.Number.Add(a.Number)
		}
		return Amt(sum), nil
	}
	return Null, Errorf("cannot strip commodity from %s", v.kind)
}

// Round rounds amounts to their commodity's display precision.
func Round(v Value) (Value, error) {
	switch v.kind {
	case NULL, INTEGER:
		return v, nil
	case AMOUNT:
		return Amt(v.amt.Round()), nil
	case BALANCE:
		res := amount.NewBalance()
		for _, a := range v.bal.Amounts() {
			res.Add(a.Round())
		}
		return Simplify(Bal(res)), nil
	}
	return Null, Errorf("cannot round %s", v.kind)
}
