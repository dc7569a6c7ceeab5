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

// Package expr implements the value-expression language: a scanner and
// parser producing an operator tree, and an evaluator resolving free
// identifiers against a chain of scopes.
package expr

import (
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/value"
)

// OpKind is the kind of an operator node.
type OpKind int

const (
	// VALUE is a literal.
	VALUE OpKind = iota
	// IDENT is an identifier reference.
	IDENT
	// PAYEE_MASK matches the payee against a pattern.
	PAYEE_MASK
	// ACCOUNT_MASK matches the full account name against a pattern.
	ACCOUNT_MASK
	// SHORT_ACCOUNT_MASK matches the account's last segment.
	SHORT_ACCOUNT_MASK
	// PARENT evaluates its child outside the innermost bind scope.
	PARENT
	// NOT is logical negation.
	NOT
	// NEG is arithmetic negation.
	NEG
	// ADD through DIV are binary arithmetic.
	ADD
	SUB
	MUL
	DIV
	// EQ through GTE are comparisons.
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
	// AND and OR short-circuit.
	AND
	OR
	// QUERY is the ternary; its right child is a COLON node.
	QUERY
	COLON
	// CONS is a right-leaning argument list.
	CONS
	// CALL invokes its left child with the CONS list on the right.
	CALL
)

// Op is a node of an expression tree. At most two children, plus an
// optional literal payload and identifier name.
type Op struct {
	Kind        OpKind
	Left, Right *Op
	Value       value.Value
	Ident       string

	// binding cache: the callable resolved for Ident, valid for the
	// scope it was resolved in.
	resolved   scope.Callable
	resolvedIn scope.Scope
}

// NewValue creates a literal node.
func NewValue(v value.Value) *Op {
	return &Op{Kind: VALUE, Value: v}
}

// NewIdent creates an identifier node.
func NewIdent(name string) *Op {
	return &Op{Kind: IDENT, Ident: name}
}

// NewCall creates a call of the named function with the given
// arguments.
func NewCall(name string, args ...*Op) *Op {
	var cons *Op
	for i := len(args) - 1; i >= 0; i-- {
		cons = &Op{Kind: CONS, Left: args[i], Right: cons}
	}
	return &Op{Kind: CALL, Left: NewIdent(name), Right: cons}
}

// NewBinary creates a binary node.
func NewBinary(kind OpKind, left, right *Op) *Op {
	return &Op{Kind: kind, Left: left, Right: right}
}

// Args flattens a CONS list into a slice.
func (op *Op) Args() []*Op {
	var res []*Op
	for cur := op; cur != nil; cur = cur.Right {
		if cur.Kind == CONS {
			res = append(res, cur.Left)
		} else {
			res = append(res, cur)
			break
		}
	}
	return res
}
