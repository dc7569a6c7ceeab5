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

// Package format implements the format-string engine: literal text
// interleaved with embedded value expressions, with width, alignment,
// truncation and colourisation applied through the evaluator.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/value"
)

// MaxFieldWidth bounds the width of a single field.
const MaxFieldWidth = 4095

// Error is a format-string error.
type Error struct {
	Msg string
	Pos int
}

func (e Error) Error() string {
	return fmt.Sprintf("format error at position %d: %s", e.Pos, e.Msg)
}

type element struct {
	literal   string
	expr      *expr.Op
	minWidth  int
	maxWidth  int
	alignLeft bool
	// wrapped marks {…} elements whose justification happens inside
	// the expression; the renderer appends their result verbatim.
	wrapped   bool
	elision   Elision
	abbrevLen int
}

// Format is a parsed format string.
type Format struct {
	elems []*element
}

// Parser parses format strings.
type Parser struct {
	// Exprs parses the embedded expressions.
	Exprs *expr.Parser
	// AccountAbbrevLen is the per-segment length used when eliding
	// account names.
	AccountAbbrevLen int
}

// Parse parses the format string.
func (p *Parser) Parse(text string) (*Format, error) {
	f := new(Format)
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			f.elems = append(f.elems, &element{literal: literal.String()})
			literal.Reset()
		}
	}
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '\\':
			i++
			if i == len(runes) {
				return nil, Error{Msg: "trailing backslash", Pos: i}
			}
			switch runes[i] {
			case 'n':
				literal.WriteByte('\n')
			case 't':
				literal.WriteByte('\t')
			case 'r':
				literal.WriteByte('\r')
			case 'b':
				literal.WriteByte('\b')
			case 'f':
				literal.WriteByte('\f')
			case 'v':
				literal.WriteByte('\v')
			case '\\':
				literal.WriteByte('\\')
			default:
				literal.WriteRune(runes[i])
			}
		case '%':
			i++
			if i == len(runes) {
				return nil, Error{Msg: "trailing %", Pos: i}
			}
			if runes[i] == '%' {
				literal.WriteByte('%')
				continue
			}
			flush()
			elem, next, err := p.parseDirective(text, runes, i)
			if err != nil {
				return nil, err
			}
			f.elems = append(f.elems, elem)
			i = next
		default:
			literal.WriteRune(r)
		}
	}
	flush()
	return f, nil
}

func (p *Parser) parseDirective(text string, runes []rune, i int) (*element, int, error) {
	elem := new(element)
	if runes[i] == '-' {
		elem.alignLeft = true
		i++
	}
	start := i
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		i++
	}
	if i > start {
		elem.minWidth, _ = strconv.Atoi(string(runes[start:i]))
	}
	if i < len(runes) && runes[i] == '.' {
		i++
		start = i
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			i++
		}
		elem.maxWidth, _ = strconv.Atoi(string(runes[start:i]))
	}
	if elem.minWidth > MaxFieldWidth || elem.maxWidth > MaxFieldWidth {
		return nil, 0, Error{Msg: fmt.Sprintf("field width exceeds %d", MaxFieldWidth), Pos: i}
	}
	if i == len(runes) {
		return nil, 0, Error{Msg: "missing format directive", Pos: i}
	}
	switch runes[i] {
	case '(':
		op, next, err := p.parseEmbedded(text, runes, i+1, ')')
		if err != nil {
			return nil, 0, err
		}
		elem.expr = op
		return elem, next, nil
	case '{':
		op, next, err := p.parseAmountExpr(text, runes, i+1, elem)
		if err != nil {
			return nil, 0, err
		}
		elem.expr = op
		elem.wrapped = true
		return elem, next, nil
	default:
		op, err := p.letterDirective(runes[i], elem)
		if err != nil {
			return nil, 0, Error{Msg: err.Error(), Pos: i}
		}
		elem.expr = op
		return elem, i, nil
	}
}

// parseEmbedded parses one expression, expecting the closing rune.
// Returns the index of the closing rune.
func (p *Parser) parseEmbedded(text string, runes []rune, i int, closing rune) (*expr.Op, int, error) {
	offset := len(string(runes[:i]))
	op, n, err := p.exprs().ParsePartial(text[offset:])
	if err != nil {
		return nil, 0, Error{Msg: err.Error(), Pos: i}
	}
	rest := []rune(text[offset+n:])
	if len(rest) == 0 || rest[0] != closing {
		return nil, 0, Error{Msg: fmt.Sprintf("unterminated %%%c directive", closing), Pos: i}
	}
	return op, len(runes[:i]) + len([]rune(text[offset:offset+n])), nil
}

// parseAmountExpr parses the {expr} or {expr, colour-expr} form and
// wraps it so justification and colourisation happen inside the
// evaluation.
func (p *Parser) parseAmountExpr(text string, runes []rune, i int, elem *element) (*expr.Op, int, error) {
	offset := len(string(runes[:i]))
	op, n, err := p.exprs().ParsePartial(text[offset:])
	if err != nil {
		return nil, 0, Error{Msg: err.Error(), Pos: i}
	}
	pos := offset + n
	var colour *expr.Op
	if strings.HasPrefix(text[pos:], ",") {
		pos++
		c, n2, err := p.exprs().ParsePartial(text[pos:])
		if err != nil {
			return nil, 0, Error{Msg: err.Error(), Pos: i}
		}
		colour = c
		pos += n2
	}
	if !strings.HasPrefix(text[pos:], "}") {
		return nil, 0, Error{Msg: "unterminated %{ directive", Pos: i}
	}
	if colour == nil {
		colour = expr.NewBinary(expr.LT, op, expr.NewValue(value.Int(0)))
	}
	wrapped := WrapJustified(op, colour, elem.minWidth, elem.maxWidth, !elem.alignLeft)
	closing := len([]rune(text[:pos]))
	return wrapped, closing, nil
}

// WrapJustified wraps op as ansify_if(justify(scrub(op), min, max,
// right), colour), so width and colour are carried inside the
// evaluation and receive the current item as context.
func WrapJustified(op, colour *expr.Op, minWidth, maxWidth int, right bool) *expr.Op {
	justified := expr.NewCall("justify",
		expr.NewCall("scrub", op),
		expr.NewValue(value.Int(int64(minWidth))),
		expr.NewValue(value.Int(int64(maxWidth))),
		expr.NewValue(value.Bool(right)),
	)
	return expr.NewCall("ansify_if", justified, colour)
}

func (p *Parser) letterDirective(r rune, elem *element) (*expr.Op, error) {
	switch r {
	case 'd':
		return expr.NewCall("format_date", expr.NewIdent("date")), nil
	case 'p', 'P':
		return expr.NewIdent("payee"), nil
	case 'a':
		elem.elision = Abbreviate
		elem.abbrevLen = p.AccountAbbrevLen
		return expr.NewIdent("account"), nil
	case 'A':
		return expr.NewIdent("account"), nil
	case 'n':
		return expr.NewIdent("note"), nil
	case 'C':
		return expr.NewIdent("code"), nil
	case 'X':
		return expr.NewBinary(expr.QUERY,
			expr.NewIdent("cleared"),
			expr.NewBinary(expr.COLON,
				expr.NewValue(value.Str("*")),
				expr.NewValue(value.Str("")))), nil
	case 't':
		elem.wrapped = true
		op := expr.NewIdent("display_amount_expr")
		colour := expr.NewBinary(expr.LT, op, expr.NewValue(value.Int(0)))
		return WrapJustified(op, colour, elem.minWidth, elem.maxWidth, !elem.alignLeft), nil
	case 'T':
		elem.wrapped = true
		op := expr.NewIdent("display_total_expr")
		colour := expr.NewBinary(expr.LT, op, expr.NewValue(value.Int(0)))
		return WrapJustified(op, colour, elem.minWidth, elem.maxWidth, !elem.alignLeft), nil
	}
	return nil, fmt.Errorf("unknown format directive %%%c", r)
}

func (p *Parser) exprs() *expr.Parser {
	if p.Exprs != nil {
		return p.Exprs
	}
	return new(expr.Parser)
}

// Render evaluates every embedded expression against the scope and
// interleaves the results with the literal text.
func (f *Format) Render(s scope.Scope) (string, error) {
	var b strings.Builder
	for _, elem := range f.elems {
		if elem.expr == nil {
			b.WriteString(elem.literal)
			continue
		}
		v, err := expr.Eval(elem.expr, s)
		if err != nil {
			return "", err
		}
		res := v.AsString()
		if !elem.wrapped {
			res = Justify(res, elem.minWidth, elem.maxWidth, !elem.alignLeft, elem.elision, elem.abbrevLen)
		}
		b.WriteString(res)
	}
	return b.String(), nil
}
