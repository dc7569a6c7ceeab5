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

// Package parser reads ledger-style journal files into the journal
// model. Include files are parsed concurrently; the journal itself is
// built by a single consumer.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// rawPosting is a posting before account resolution.
type rawPosting struct {
	account     string
	virtual     bool
	mustBalance bool
	state       journal.State
	hasState    bool
	amount      *amount.Amount
	cost        *amount.Amount
	note        string
}

// rawXact is a transaction directive before it is added to the
// journal.
type rawXact struct {
	path     string
	line     int
	date     time.Time
	effDate  time.Time
	state    journal.State
	code     string
	payee    string
	note     string
	period   string
	postings []*rawPosting
}

// rawAccount is an account note directive.
type rawAccount struct {
	name string
	note string
}

// rawPrice is a price directive.
type rawPrice struct {
	date      time.Time
	commodity *commodity.Commodity
	price     amount.Amount
}

// Parse reads the journal at the given path, following includes.
func Parse(path string) (*journal.Journal, error) {
	j := journal.New()
	ch := make(chan interface{}, 100)
	p := &parser{registry: j.Registry, ch: ch}
	p.group.Go(func() error {
		return p.parseFile(path)
	})
	var parseErr error
	go func() {
		parseErr = p.group.Wait()
		close(ch)
	}()
	var xacts []*journal.Xact
	var periods []*journal.PeriodXact
	for d := range ch {
		switch t := d.(type) {
		case *rawXact:
			if t.period != "" {
				px, err := buildPeriodXact(j, t)
				if err != nil {
					return nil, err
				}
				periods = append(periods, px)
				continue
			}
			x, err := buildXact(j, t)
			if err != nil {
				return nil, err
			}
			xacts = append(xacts, x)
		case *rawAccount:
			j.FindAccount(t.name, true).Note = t.note
		case *rawPrice:
			j.Prices = append(j.Prices, journal.Price{
				Date:      t.date,
				Commodity: t.commodity,
				Price:     t.price,
			})
		}
	}
	if parseErr != nil {
		return nil, parseErr
	}
	// Includes are parsed concurrently, so restore date order before
	// handing the journal to the reporting pipeline.
	compare.StableSort(xacts, func(x1, x2 *journal.Xact) compare.Order {
		return compare.Time(x1.Date, x2.Date)
	})
	for _, x := range xacts {
		j.AddXact(x)
	}
	j.PeriodXacts = periods
	return j, nil
}

// ParseText parses journal text without following includes.
func ParseText(text, path string) (*journal.Journal, error) {
	j := journal.New()
	ch := make(chan interface{}, 100)
	p := &parser{registry: j.Registry, ch: ch, noIncludes: true}
	go func() {
		defer close(ch)
		if err := p.parseText(text, path); err != nil {
			ch <- err
		}
	}()
	var xacts []*journal.Xact
	for d := range ch {
		switch t := d.(type) {
		case error:
			return nil, t
		case *rawXact:
			if t.period != "" {
				px, err := buildPeriodXact(j, t)
				if err != nil {
					return nil, err
				}
				j.PeriodXacts = append(j.PeriodXacts, px)
				continue
			}
			x, err := buildXact(j, t)
			if err != nil {
				return nil, err
			}
			xacts = append(xacts, x)
		case *rawAccount:
			j.FindAccount(t.name, true).Note = t.note
		case *rawPrice:
			j.Prices = append(j.Prices, journal.Price{
				Date:      t.date,
				Commodity: t.commodity,
				Price:     t.price,
			})
		}
	}
	for _, x := range xacts {
		j.AddXact(x)
	}
	return j, nil
}

type parser struct {
	registry   *commodity.Registry
	ch         chan<- interface{}
	group      errgroup.Group
	noIncludes bool
}

func (p *parser) parseFile(path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return p.parseTextFrom(string(text), path)
}

func (p *parser) parseText(text, path string) error {
	return p.parseTextFrom(text, path)
}

func (p *parser) parseTextFrom(text, path string) error {
	s := NewScanner(text, path)
	for s.Current() != EOF {
		switch {
		case s.Current() == ';' || s.Current() == '#' || s.Current() == '%' || s.Current() == '*':
			s.SkipLine()
		case isNewline(s.Current()) || isSpaceOrTab(s.Current()):
			s.SkipLine()
		case s.Current() == '~':
			if err := p.parsePeriodXact(s); err != nil {
				return err
			}
		case unicode.IsDigit(s.Current()):
			if err := p.parseXact(s); err != nil {
				return err
			}
		case s.Current() == 'P':
			if err := p.parsePrice(s); err != nil {
				return err
			}
		case unicode.IsLetter(s.Current()):
			if err := p.parseKeywordDirective(s, path); err != nil {
				return err
			}
		default:
			return s.Errorf("unexpected character %q", s.Current())
		}
	}
	return nil
}

func (p *parser) parseKeywordDirective(s *Scanner, path string) error {
	word := s.ReadWhile(unicode.IsLetter)
	s.SkipSpace()
	switch word {
	case "include":
		target := strings.TrimSpace(s.ReadUntil(isNewline))
		s.SkipLine()
		if p.noIncludes {
			return s.Errorf("includes are not supported here")
		}
		p.group.Go(func() error {
			return p.parseFile(filepath.Join(filepath.Dir(path), target))
		})
		return nil
	case "account":
		name := strings.TrimSpace(s.ReadUntil(func(r rune) bool { return r == ';' || isNewline(r) }))
		var note string
		if s.Current() == ';' {
			s.Advance()
			note = strings.TrimSpace(s.ReadUntil(isNewline))
		}
		s.SkipLine()
		p.ch <- &rawAccount{name: name, note: note}
		return nil
	}
	return s.Errorf("unknown directive %q", word)
}

// parsePrice parses "P DATE COMMODITY PRICE COMMODITY".
func (p *parser) parsePrice(s *Scanner) error {
	s.Advance()
	s.SkipSpace()
	d, err := p.parseDate(s)
	if err != nil {
		return err
	}
	s.SkipSpace()
	name := s.ReadWhile(func(r rune) bool { return !isSpaceOrTab(r) && !isNewline(r) })
	c, err := p.registry.Get(name)
	if err != nil {
		return s.Errorf("%v", err)
	}
	s.SkipSpace()
	price, err := p.parseAmount(s, strings.TrimSpace(s.ReadUntil(isNewline)))
	if err != nil {
		return err
	}
	s.SkipLine()
	p.ch <- &rawPrice{date: d, commodity: c, price: price}
	return nil
}

func (p *parser) parseXact(s *Scanner) error {
	raw := &rawXact{line: lineOf(s), path: pathOf(s)}
	d, err := p.parseDate(s)
	if err != nil {
		return err
	}
	raw.date = d
	if s.Current() == '=' {
		s.Advance()
		eff, err := p.parseDate(s)
		if err != nil {
			return err
		}
		raw.effDate = eff
	}
	s.SkipSpace()
	switch s.Current() {
	case '*':
		raw.state = journal.Cleared
		s.Advance()
		s.SkipSpace()
	case '!':
		raw.state = journal.Pending
		s.Advance()
		s.SkipSpace()
	}
	if s.Current() == '(' {
		s.Advance()
		raw.code = s.ReadUntil(func(r rune) bool { return r == ')' || isNewline(r) })
		if err := s.ReadCharacter(')'); err != nil {
			return err
		}
		s.SkipSpace()
	}
	header := s.ReadUntil(isNewline)
	if payee, note, found := strings.Cut(header, ";"); found {
		raw.payee = strings.TrimSpace(payee)
		raw.note = strings.TrimSpace(note)
	} else {
		raw.payee = strings.TrimSpace(header)
	}
	s.SkipLine()
	if err := p.parsePostings(s, raw); err != nil {
		return err
	}
	p.ch <- raw
	return nil
}

func (p *parser) parsePeriodXact(s *Scanner) error {
	raw := &rawXact{line: lineOf(s), path: pathOf(s)}
	s.Advance()
	s.SkipSpace()
	raw.period = strings.TrimSpace(s.ReadUntil(isNewline))
	if raw.period == "" {
		return s.Errorf("periodic transaction without a period")
	}
	raw.payee = "Periodic transaction"
	s.SkipLine()
	if err := p.parsePostings(s, raw); err != nil {
		return err
	}
	p.ch <- raw
	return nil
}

func (p *parser) parsePostings(s *Scanner, raw *rawXact) error {
	for isSpaceOrTab(s.Current()) {
		s.SkipSpace()
		if isNewline(s.Current()) || s.Current() == EOF {
			s.SkipLine()
			break
		}
		line := s.ReadUntil(isNewline)
		s.SkipLine()
		rp, err := p.parsePostingLine(s, line)
		if err != nil {
			return err
		}
		raw.postings = append(raw.postings, rp)
	}
	if len(raw.postings) == 0 {
		return s.Errorf("transaction %q has no postings", raw.payee)
	}
	return nil
}

func (p *parser) parsePostingLine(s *Scanner, line string) (*rawPosting, error) {
	rp := new(rawPosting)
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "* "):
		rp.state, rp.hasState = journal.Cleared, true
		line = strings.TrimSpace(line[2:])
	case strings.HasPrefix(line, "! "):
		rp.state, rp.hasState = journal.Pending, true
		line = strings.TrimSpace(line[2:])
	}
	if note, ok := splitNote(&line); ok {
		rp.note = note
	}
	account, rest := splitAccount(line)
	switch {
	case strings.HasPrefix(account, "(") && strings.HasSuffix(account, ")"):
		rp.virtual = true
		account = account[1 : len(account)-1]
	case strings.HasPrefix(account, "[") && strings.HasSuffix(account, "]"):
		rp.virtual, rp.mustBalance = true, true
		account = account[1 : len(account)-1]
	}
	if account == "" {
		return nil, s.Errorf("posting without an account")
	}
	rp.account = account
	if rest == "" {
		return rp, nil
	}
	amountPart, costPart, perUnit := splitCost(rest)
	amt, err := p.parseAmount(s, amountPart)
	if err != nil {
		return nil, err
	}
	rp.amount = &amt
	if costPart != "" {
		cost, err := p.parseAmount(s, costPart)
		if err != nil {
			return nil, err
		}
		if perUnit {
			cost.Number = cost.Number.Mul(amt.Number)
		}
		rp.cost = &cost
	}
	return rp, nil
}

// splitNote splits a trailing "; note" off the line.
func splitNote(line *string) (string, bool) {
	if body, note, found := strings.Cut(*line, ";"); found {
		*line = strings.TrimSpace(body)
		return strings.TrimSpace(note), true
	}
	return "", false
}

// splitAccount splits the account name from the amount. They are
// separated by two or more spaces or a tab; single spaces belong to
// the account name.
func splitAccount(line string) (string, string) {
	for i := 0; i < len(line); i++ {
		if line[i] == '\t' || (line[i] == ' ' && i+1 < len(line) && line[i+1] == ' ') {
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i:])
		}
	}
	return strings.TrimSpace(line), ""
}

// splitCost splits "AMOUNT @ COST" or "AMOUNT @@ TOTALCOST".
func splitCost(rest string) (string, string, bool) {
	if amt, cost, found := strings.Cut(rest, "@@"); found {
		return strings.TrimSpace(amt), strings.TrimSpace(cost), false
	}
	if amt, cost, found := strings.Cut(rest, "@"); found {
		return strings.TrimSpace(amt), strings.TrimSpace(cost), true
	}
	return strings.TrimSpace(rest), "", false
}

// parseAmount parses "NUMBER [COMMODITY]".
func (p *parser) parseAmount(s *Scanner, text string) (amount.Amount, error) {
	fields := strings.Fields(text)
	switch len(fields) {
	case 1:
		d, err := decimal.NewFromString(fields[0])
		if err != nil {
			return amount.Amount{}, s.Errorf("invalid amount %q: %v", text, err)
		}
		return amount.Amount{Number: d}, nil
	case 2:
		d, err := decimal.NewFromString(fields[0])
		if err != nil {
			return amount.Amount{}, s.Errorf("invalid amount %q: %v", text, err)
		}
		c, err := p.registry.Get(fields[1])
		if err != nil {
			return amount.Amount{}, s.Errorf("invalid amount %q: %v", text, err)
		}
		c.UpdatePrecision(int32(-d.Exponent()))
		return amount.New(d, c), nil
	}
	return amount.Amount{}, s.Errorf("invalid amount %q", text)
}

func (p *parser) parseDate(s *Scanner) (time.Time, error) {
	text := s.ReadWhile(func(r rune) bool {
		return unicode.IsDigit(r) || r == '-' || r == '/' || r == '.'
	})
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006.01.02"} {
		if d, err := time.Parse(layout, text); err == nil {
			return d, nil
		}
	}
	return time.Time{}, s.Errorf("invalid date %q", text)
}

// buildXact resolves accounts, applies amount elision and verifies the
// transaction balances.
func buildXact(j *journal.Journal, raw *rawXact) (*journal.Xact, error) {
	x := &journal.Xact{
		Date:          raw.date,
		EffectiveDate: raw.effDate,
		State:         raw.state,
		Payee:         raw.payee,
		Code:          raw.code,
		Note:          raw.note,
	}
	var elided *journal.Posting
	remainder := amount.NewBalance()
	for _, rp := range raw.postings {
		post := &journal.Posting{
			Account:  j.FindAccount(rp.account, true),
			State:    rp.state,
			HasState: rp.hasState,
			Note:     rp.note,
		}
		if rp.virtual {
			post.Flags |= journal.Virtual
		}
		if rp.mustBalance {
			post.Flags |= journal.MustBalance
		}
		if rp.amount == nil {
			if elided != nil {
				return nil, fmt.Errorf("%s:%d: only one posting may elide its amount", raw.path, raw.line)
			}
			elided = post
		} else {
			post.Amount = *rp.amount
			if rp.cost != nil {
				cost := *rp.cost
				if post.Amount.Number.IsNegative() {
					cost.Number = cost.Number.Abs().Neg()
				}
				post.Cost = &cost
			}
			if post.IsReal() || post.Flags.Has(journal.MustBalance) {
				remainder.Add(post.ResolveAmount())
			}
		}
		x.AddPosting(post)
	}
	if elided != nil {
		as := remainder.Amounts()
		switch len(as) {
		case 0:
		case 1:
			elided.Amount = as[0].Neg()
			elided.Flags |= journal.Calculated
		default:
			// One balancing posting per commodity; the elided posting
			// takes the first.
			elided.Amount = as[0].Neg()
			elided.Flags |= journal.Calculated
			for _, a := range as[1:] {
				extra := &journal.Posting{
					Account: elided.Account,
					Amount:  a.Neg(),
					Flags:   elided.Flags | journal.Calculated,
				}
				x.AddPosting(extra)
			}
		}
	} else if !remainder.IsZero() {
		return nil, fmt.Errorf("%s:%d: transaction %q does not balance: %s", raw.path, raw.line, raw.payee, remainder)
	}
	return x, nil
}

func buildPeriodXact(j *journal.Journal, raw *rawXact) (*journal.PeriodXact, error) {
	interval, err := date.ParsePeriod(raw.period)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", raw.path, raw.line, err)
	}
	x := &journal.Xact{Payee: raw.payee}
	for _, rp := range raw.postings {
		post := &journal.Posting{
			Account: j.FindAccount(rp.account, true),
			Note:    rp.note,
		}
		if rp.amount != nil {
			post.Amount = *rp.amount
		}
		x.AddPosting(post)
	}
	return &journal.PeriodXact{
		PeriodString: raw.period,
		Period:       interval,
		Xact:         x,
	}, nil
}

func lineOf(s *Scanner) int {
	return s.line
}

func pathOf(s *Scanner) string {
	return s.path
}
