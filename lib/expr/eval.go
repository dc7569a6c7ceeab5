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
	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/value"
)

// Eval evaluates the operator tree against the given scope.
// Short-circuit operators never evaluate their dead branch.
func Eval(op *Op, s scope.Scope) (value.Value, error) {
	switch op.Kind {
	case VALUE:
		return op.Value, nil

	case IDENT:
		c, err := op.bind(s)
		if err != nil {
			return value.Null, err
		}
		return c(s)

	case PAYEE_MASK:
		return evalMask(op, s, "payee")
	case ACCOUNT_MASK:
		return evalMask(op, s, "account")
	case SHORT_ACCOUNT_MASK:
		return evalMask(op, s, "account_name")

	case PARENT:
		return Eval(op.Left, scope.SkipBind(s))

	case NOT:
		v, err := Eval(op.Left, s)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(!v.Truth()), nil

	case NEG:
		v, err := Eval(op.Left, s)
		if err != nil {
			return value.Null, err
		}
		return value.Neg(v)

	case ADD, SUB, MUL, DIV:
		left, err := Eval(op.Left, s)
		if err != nil {
			return value.Null, err
		}
		right, err := Eval(op.Right, s)
		if err != nil {
			return value.Null, err
		}
		switch op.Kind {
		case ADD:
			return value.Add(left, right)
		case SUB:
			return value.Sub(left, right)
		case MUL:
			return value.Mul(left, right)
		default:
			return value.Div(left, right)
		}

	case EQ, NEQ, LT, LTE, GT, GTE:
		left, err := Eval(op.Left, s)
		if err != nil {
			return value.Null, err
		}
		right, err := Eval(op.Right, s)
		if err != nil {
			return value.Null, err
		}
		o, err := value.Compare(left, right)
		if err != nil {
			return value.Null, err
		}
		switch op.Kind {
		case EQ:
			return value.Bool(o == compare.Equal), nil
		case NEQ:
			return value.Bool(o != compare.Equal), nil
		case LT:
			return value.Bool(o == compare.Smaller), nil
		case LTE:
			return value.Bool(o != compare.Greater), nil
		case GT:
			return value.Bool(o == compare.Greater), nil
		default:
			return value.Bool(o != compare.Smaller), nil
		}

	case AND:
		left, err := Eval(op.Left, s)
		if err != nil {
			return value.Null, err
		}
		if !left.Truth() {
			return value.Bool(false), nil
		}
		right, err := Eval(op.Right, s)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(right.Truth()), nil

	case OR:
		left, err := Eval(op.Left, s)
		if err != nil {
			return value.Null, err
		}
		if left.Truth() {
			return value.Bool(true), nil
		}
		right, err := Eval(op.Right, s)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(right.Truth()), nil

	case QUERY:
		cond, err := Eval(op.Left, s)
		if err != nil {
			return value.Null, err
		}
		colon := op.Right
		if cond.Truth() {
			return Eval(colon.Left, s)
		}
		return Eval(colon.Right, s)

	case CONS:
		var elems []value.Value
		for _, arg := range op.Args() {
			v, err := Eval(arg, s)
			if err != nil {
				return value.Null, err
			}
			elems = append(elems, v)
		}
		return value.Seq(elems...), nil

	case CALL:
		return evalCall(op, s)
	}
	return value.Null, value.Errorf("cannot evaluate operator %d", op.Kind)
}

// bind resolves the identifier, caching the callable for the scope it
// was resolved in. A different scope invalidates the cache.
func (op *Op) bind(s scope.Scope) (scope.Callable, error) {
	if op.resolved != nil && op.resolvedIn == s {
		return op.resolved, nil
	}
	c, ok := s.Lookup(op.Ident)
	if !ok {
		return nil, LookupError{Name: op.Ident}
	}
	op.resolved, op.resolvedIn = c, s
	return c, nil
}

func evalMask(op *Op, s scope.Scope, field string) (value.Value, error) {
	rx, err := op.Value.AsMask()
	if err != nil {
		return value.Null, err
	}
	c, ok := s.Lookup(field)
	if !ok {
		return value.Null, LookupError{Name: field}
	}
	v, err := c(s)
	if err != nil {
		return value.Null, err
	}
	return value.Bool(rx.MatchString(v.AsString())), nil
}

func evalCall(op *Op, s scope.Scope) (value.Value, error) {
	callee := op.Left
	if callee.Kind != IDENT {
		return value.Null, value.Errorf("callee is not an identifier")
	}
	c, err := callee.bind(s)
	if err != nil {
		return value.Null, err
	}
	var args []value.Value
	if op.Right != nil {
		for _, arg := range op.Right.Args() {
			v, err := Eval(arg, s)
			if err != nil {
				return value.Null, err
			}
			args = append(args, v)
		}
	}
	return c(scope.NewCallScope(s, args))
}
