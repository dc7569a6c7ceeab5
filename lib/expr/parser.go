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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/drewr/ledger/lib/value"
	"github.com/shopspring/decimal"
)

// Parser parses value expressions. The registry is used to intern
// commodities appearing in amount literals; it may be nil, in which
// case amount literals must be bare numbers.
type Parser struct {
	Registry *commodity.Registry
}

// Parse parses the whole input as one expression. Trailing
// non-whitespace is an error.
func (p *Parser) Parse(input string) (*Op, error) {
	st := &parseState{scanner: newScanner(input), registry: p.Registry}
	op, err := st.parseExpr()
	if err != nil {
		return nil, err
	}
	st.skipSpace()
	if st.current != eof {
		return nil, st.errorf("unexpected character %q", st.current)
	}
	return op, nil
}

// ParsePartial parses a leading expression and stops at the first
// character outside the expression language, returning the byte offset
// where parsing stopped.
func (p *Parser) ParsePartial(input string) (*Op, int, error) {
	st := &parseState{scanner: newScanner(input), registry: p.Registry}
	op, err := st.parseExpr()
	if err != nil {
		return nil, st.pos, err
	}
	return op, st.pos, nil
}

// Parse parses an expression without a commodity registry.
func Parse(input string) (*Op, error) {
	var p Parser
	return p.Parse(input)
}

// MustParse parses a literal expression and panics on error.
func MustParse(input string) *Op {
	op, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return op
}

type parseState struct {
	*scanner
	registry *commodity.Registry
}

func (st *parseState) errorf(format string, args ...interface{}) error {
	return ParseError{Msg: fmt.Sprintf(format, args...), Col: st.col}
}

func (st *parseState) parseExpr() (*Op, error) {
	return st.parseTernary()
}

func (st *parseState) parseTernary() (*Op, error) {
	cond, err := st.parseOr()
	if err != nil {
		return nil, err
	}
	st.skipSpace()
	if st.current != '?' {
		return cond, nil
	}
	st.advance()
	thenOp, err := st.parseTernary()
	if err != nil {
		return nil, err
	}
	st.skipSpace()
	if st.current != ':' {
		return nil, st.errorf("ternary without ':'")
	}
	st.advance()
	elseOp, err := st.parseTernary()
	if err != nil {
		return nil, err
	}
	return NewBinary(QUERY, cond, NewBinary(COLON, thenOp, elseOp)), nil
}

func (st *parseState) parseOr() (*Op, error) {
	left, err := st.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		st.skipSpace()
		if st.current != '|' {
			return left, nil
		}
		st.advance()
		if st.current == '|' {
			st.advance()
		}
		right, err := st.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewBinary(OR, left, right)
	}
}

func (st *parseState) parseAnd() (*Op, error) {
	left, err := st.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		st.skipSpace()
		if st.current != '&' {
			return left, nil
		}
		st.advance()
		if st.current == '&' {
			st.advance()
		}
		right, err := st.parseNot()
		if err != nil {
			return nil, err
		}
		left = NewBinary(AND, left, right)
	}
}

func (st *parseState) parseNot() (*Op, error) {
	st.skipSpace()
	if st.current == '!' && st.peek() != '=' {
		st.advance()
		op, err := st.parseNot()
		if err != nil {
			return nil, err
		}
		return &Op{Kind: NOT, Left: op}, nil
	}
	return st.parseComparison()
}

func (st *parseState) parseComparison() (*Op, error) {
	left, err := st.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		st.skipSpace()
		var kind OpKind
		switch st.current {
		case '=':
			kind = EQ
			st.advance()
		case '!':
			if st.peek() != '=' {
				return left, nil
			}
			kind = NEQ
			st.advance()
			st.advance()
		case '<':
			kind = LT
			st.advance()
			if st.current == '=' {
				kind = LTE
				st.advance()
			}
		case '>':
			kind = GT
			st.advance()
			if st.current == '=' {
				kind = GTE
				st.advance()
			}
		default:
			return left, nil
		}
		right, err := st.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = NewBinary(kind, left, right)
	}
}

func (st *parseState) parseAdditive() (*Op, error) {
	left, err := st.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		st.skipSpace()
		var kind OpKind
		switch st.current {
		case '+':
			kind = ADD
		case '-':
			kind = SUB
		default:
			return left, nil
		}
		st.advance()
		right, err := st.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = NewBinary(kind, left, right)
	}
}

func (st *parseState) parseMultiplicative() (*Op, error) {
	left, err := st.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		st.skipSpace()
		var kind OpKind
		switch st.current {
		case '*':
			kind = MUL
		case '/':
			kind = DIV
		default:
			return left, nil
		}
		st.advance()
		right, err := st.parseUnary()
		if err != nil {
			return nil, err
		}
		left = NewBinary(kind, left, right)
	}
}

func (st *parseState) parseUnary() (*Op, error) {
	st.skipSpace()
	if st.current == '-' {
		st.advance()
		op, err := st.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Op{Kind: NEG, Left: op}, nil
	}
	return st.parsePrimary()
}

func (st *parseState) parsePrimary() (*Op, error) {
	st.skipSpace()
	switch {
	case st.current == eof:
		return nil, st.errorf("unexpected end of expression")
	case isDigit(st.current):
		return st.parseNumber()
	case st.current == '{':
		return st.parseAmountLiteral()
	case st.current == '[':
		return st.parseDateLiteral()
	case st.current == '/':
		return st.parseMask()
	case st.current == '(':
		st.advance()
		op, err := st.parseExpr()
		if err != nil {
			return nil, err
		}
		st.skipSpace()
		if st.current != ')' {
			return nil, st.errorf("expected ')'")
		}
		st.advance()
		return op, nil
	case st.current == '^':
		st.advance()
		op, err := st.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &Op{Kind: PARENT, Left: op}, nil
	case isIdentStart(st.current):
		return st.parseIdent()
	}
	return nil, st.errorf("unexpected character %q", st.current)
}

func (st *parseState) parseNumber() (*Op, error) {
	digits := st.readWhile(isDigit)
	if st.current == '.' && isDigit(st.peek()) {
		st.advance()
		frac := st.readWhile(isDigit)
		d, err := decimal.NewFromString(digits + "." + frac)
		if err != nil {
			return nil, st.errorf("invalid number: %v", err)
		}
		return NewValue(value.Amt(amount.Amount{Number: d})), nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, st.errorf("invalid integer: %v", err)
	}
	return NewValue(value.Int(n)), nil
}

func (st *parseState) parseAmountLiteral() (*Op, error) {
	st.advance()
	start := st.pos
	for st.current != '}' && st.current != eof {
		st.advance()
	}
	if st.current != '}' {
		return nil, st.errorf("unterminated amount literal")
	}
	body := strings.TrimSpace(st.text[start:st.pos])
	st.advance()
	fields := strings.Fields(body)
	switch len(fields) {
	case 1:
		d, err := decimal.NewFromString(fields[0])
		if err != nil {
			return nil, st.errorf("invalid amount %q: %v", body, err)
		}
		return NewValue(value.Amt(amount.Amount{Number: d})), nil
	case 2:
		d, err := decimal.NewFromString(fields[0])
		if err != nil {
			return nil, st.errorf("invalid amount %q: %v", body, err)
		}
		if st.registry == nil {
			return nil, st.errorf("amount literal %q has a commodity but no registry is configured", body)
		}
		c, err := st.registry.Get(fields[1])
		if err != nil {
			return nil, st.errorf("invalid amount %q: %v", body, err)
		}
		c.UpdatePrecision(int32(-d.Exponent()))
		return NewValue(value.Amt(amount.New(d, c))), nil
	}
	return nil, st.errorf("invalid amount literal %q", body)
}

func (st *parseState) parseDateLiteral() (*Op, error) {
	st.advance()
	start := st.pos
	for st.current != ']' && st.current != eof {
		st.advance()
	}
	if st.current != ']' {
		return nil, st.errorf("unterminated date literal")
	}
	body := strings.TrimSpace(st.text[start:st.pos])
	st.advance()
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006-01", "2006"} {
		if d, err := time.Parse(layout, body); err == nil {
			return NewValue(value.Date(d)), nil
		}
	}
	return nil, st.errorf("invalid date literal %q", body)
}

// parseMask parses /pattern/ (payee), //pattern/ (account full name)
// and ///pattern/ (account short name) mask terms.
func (st *parseState) parseMask() (*Op, error) {
	kind := PAYEE_MASK
	st.advance()
	if st.current == '/' {
		kind = ACCOUNT_MASK
		st.advance()
		if st.current == '/' {
			kind = SHORT_ACCOUNT_MASK
			st.advance()
		}
	}
	start := st.pos
	for st.current != '/' && st.current != eof {
		st.advance()
	}
	if st.current != '/' {
		return nil, st.errorf("unterminated mask")
	}
	pattern := st.text[start:st.pos]
	st.advance()
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, st.errorf("invalid mask /%s/: %v", pattern, err)
	}
	return &Op{Kind: kind, Value: value.Mask(rx)}, nil
}

// shortcuts desugar the single-letter forms to named operations.
var shortcuts = map[string]string{
	"a": "amount",
	"b": "cost",
	"d": "date",
	"X": "cleared",
	"R": "real",
	"L": "actual",
	"n": "index",
	"N": "count",
	"l": "depth",
	"O": "total",
	"B": "cost_total",
	"t": "amount_expr",
	"T": "total_expr",
	"m": "now",
}

func (st *parseState) parseIdent() (*Op, error) {
	name := st.readWhile(isIdentPart)
	if st.current == '(' {
		st.advance()
		var args []*Op
		st.skipSpace()
		if st.current != ')' {
			for {
				arg, err := st.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				st.skipSpace()
				if st.current != ',' {
					break
				}
				st.advance()
			}
		}
		if st.current != ')' {
			return nil, st.errorf("expected ')' in call of %s", name)
		}
		st.advance()
		return NewCall(name, args...), nil
	}
	if len(name) == 1 {
		switch name {
		case "v":
			return NewCall("value", NewIdent("amount"), NewIdent("date")), nil
		case "V":
			return NewCall("value", NewIdent("total"), NewIdent("date")), nil
		case "g":
			gain := NewCall("value", NewIdent("amount"), NewIdent("date"))
			return NewBinary(SUB, gain, NewIdent("cost")), nil
		case "G":
			gain := NewCall("value", NewIdent("total"), NewIdent("date"))
			return NewBinary(SUB, gain, NewIdent("cost_total")), nil
		}
		if full, ok := shortcuts[name]; ok {
			return NewIdent(full), nil
		}
	}
	return NewIdent(name), nil
}
