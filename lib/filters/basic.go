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

package filters

import (
	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/common/predicate"
	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// FilterPosts forwards only postings for which the predicate
// expression evaluates to true in the posting's bind scope.
type FilterPosts struct {
	nextHandler
	Pred  *expr.Op
	Scope scope.Scope
}

// NewFilterPosts creates the stage.
func NewFilterPosts(next PostHandler, pred *expr.Op, outer scope.Scope) *FilterPosts {
	return &FilterPosts{nextHandler{next}, pred, outer}
}

func (f *FilterPosts) Push(p *journal.Posting) error {
	v, err := expr.Eval(f.Pred, scope.BindPost(f.Scope, p))
	if err != nil {
		return WithPostContext(err, p)
	}
	if v.Truth() {
		return f.forward(p)
	}
	return nil
}

// MatchPosts forwards only postings matching the predicate.
type MatchPosts struct {
	nextHandler
	Pred predicate.Predicate[*journal.Posting]
}

// NewMatchPosts creates the stage.
func NewMatchPosts(next PostHandler, pred predicate.Predicate[*journal.Posting]) *MatchPosts {
	return &MatchPosts{nextHandler{next}, pred}
}

func (m *MatchPosts) Push(p *journal.Posting) error {
	if m.Pred(p) {
		return m.forward(p)
	}
	return nil
}

// TruncateXacts buffers all postings and, on flush, emits only those
// whose transaction falls into the head or tail window. Negative
// counts invert the selection.
type TruncateXacts struct {
	nextHandler
	Head, Tail int

	posts []*journal.Posting
}

// NewTruncateXacts creates the stage.
func NewTruncateXacts(next PostHandler, head, tail int) *TruncateXacts {
	return &TruncateXacts{nextHandler: nextHandler{next}, Head: head, Tail: tail}
}

func (t *TruncateXacts) Push(p *journal.Posting) error {
	t.posts = append(t.posts, p)
	return nil
}

func (t *TruncateXacts) Flush() error {
	// Index the buffered postings by transaction, counting
	// transactions rather than postings.
	var (
		indexes []int
		last    *journal.Xact
		count   int
	)
	for _, p := range t.posts {
		if p.Xact != last {
			last = p.Xact
			count++
		}
		indexes = append(indexes, count-1)
	}
	for i, p := range t.posts {
		if t.selected(indexes[i], count) {
			if err := t.forward(p); err != nil {
				return err
			}
		}
	}
	t.posts = nil
	return t.next.Flush()
}

func (t *TruncateXacts) selected(idx, count int) bool {
	if t.Head == 0 && t.Tail == 0 {
		return true
	}
	switch {
	case t.Head > 0 && idx < t.Head:
		return true
	case t.Head < 0 && idx >= -t.Head:
		return true
	case t.Tail > 0 && idx >= count-t.Tail:
		return true
	case t.Tail < 0 && idx < count+t.Tail:
		return true
	}
	return false
}

// SortPosts buffers all postings and emits them sorted by the value of
// the sort expression, keeping the relative order of equal keys.
type SortPosts struct {
	nextHandler
	Order *expr.Op
	Scope scope.Scope

	posts []*journal.Posting
}

// NewSortPosts creates the stage.
func NewSortPosts(next PostHandler, order *expr.Op, outer scope.Scope) *SortPosts {
	return &SortPosts{nextHandler: nextHandler{next}, Order: order, Scope: outer}
}

func (s *SortPosts) Push(p *journal.Posting) error {
	s.posts = append(s.posts, p)
	return nil
}

func (s *SortPosts) Flush() error {
	for _, p := range s.posts {
		key, err := expr.Eval(s.Order, scope.BindPost(s.Scope, p))
		if err != nil {
			return WithPostContext(err, p)
		}
		p.XData().SortKey = key
	}
	compare.StableSort(s.posts, func(p1, p2 *journal.Posting) compare.Order {
		o, err := value.Compare(p1.XData().SortKey, p2.XData().SortKey)
		if err != nil {
			return compare.Equal
		}
		return o
	})
	for _, p := range s.posts {
		if err := s.forward(p); err != nil {
			return err
		}
	}
	s.posts = nil
	return s.next.Flush()
}

// CalcPosts assigns each posting an incrementing count and a running
// total. With AccountWise set, each reported account's total runs
// independently.
type CalcPosts struct {
	nextHandler
	AccountWise bool

	count      int
	total      value.Value
	costTotal  value.Value
	totals     map[*journal.Account]value.Value
	costTotals map[*journal.Account]value.Value
}

// NewCalcPosts creates the stage.
func NewCalcPosts(next PostHandler, accountWise bool) *CalcPosts {
	return &CalcPosts{
		nextHandler: nextHandler{next},
		AccountWise: accountWise,
		totals:      make(map[*journal.Account]value.Value),
		costTotals:  make(map[*journal.Account]value.Value),
	}
}

func (c *CalcPosts) Push(p *journal.Posting) error {
	c.count++
	xd := p.XData()
	xd.Count = c.count

	prev, prevCost := c.total, c.costTotal
	if c.AccountWise {
		acct := p.ReportedAccount()
		prev, prevCost = c.totals[acct], c.costTotals[acct]
	}
	total, err := value.Add(prev, p.DisplayAmount())
	if err != nil {
		return WithPostContext(err, p)
	}
	costTotal, err := value.Add(prevCost, value.Amt(p.ResolveAmount()))
	if err != nil {
		return WithPostContext(err, p)
	}
	xd.Total, xd.CostTotal = total, costTotal
	if c.AccountWise {
		acct := p.ReportedAccount()
		c.totals[acct], c.costTotals[acct] = total, costTotal
		axd := acct.XData()
		axd.Total = total
		axd.PostCount++
	} else {
		c.total, c.costTotal = total, costTotal
	}
	return c.forward(p)
}

// RelatedPosts buffers postings and, on flush, expands each one into
// its sibling postings within the same transaction.
type RelatedPosts struct {
	nextHandler
	AlsoMatching bool

	posts []*journal.Posting
}

// NewRelatedPosts creates the stage.
func NewRelatedPosts(next PostHandler, alsoMatching bool) *RelatedPosts {
	return &RelatedPosts{nextHandler: nextHandler{next}, AlsoMatching: alsoMatching}
}

func (r *RelatedPosts) Push(p *journal.Posting) error {
	p.XData().Handled = true
	r.posts = append(r.posts, p)
	return nil
}

func (r *RelatedPosts) Flush() error {
	for _, p := range r.posts {
		if r.AlsoMatching {
			if err := r.forward(p); err != nil {
				return err
			}
		}
		for _, sibling := range p.Xact.Postings {
			if sibling == p || sibling.HasXData() && sibling.XData().Handled {
				continue
			}
			if !r.AlsoMatching && sibling.Flags.Has(journal.Generated) {
				continue
			}
			sibling.XData().Handled = true
			if err := r.forward(sibling); err != nil {
				return err
			}
		}
	}
	r.posts = nil
	return r.next.Flush()
}

// RoundPosts rounds displayed amounts to their commodity's display
// precision.
type RoundPosts struct {
	nextHandler
}

// NewRoundPosts creates the stage.
func NewRoundPosts(next PostHandler) *RoundPosts {
	return &RoundPosts{nextHandler{next}}
}

func (r *RoundPosts) Push(p *journal.Posting) error {
	rounded, err := value.Round(p.DisplayAmount())
	if err != nil {
		return WithPostContext(err, p)
	}
	p.XData().Value = rounded
	if !p.XData().Total.IsNull() {
		total, err := value.Round(p.XData().Total)
		if err != nil {
			return WithPostContext(err, p)
		}
		p.XData().Total = total
	}
	return r.forward(p)
}
