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
	"fmt"
	"time"

	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/common/set"
	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/journal"
)

// pendingPost is one scheduled posting stream derived from a periodic
// transaction.
type pendingPost struct {
	interval *date.DateInterval
	post     *journal.Posting
}

func pendingPosts(periodXacts []*journal.PeriodXact, requireStart bool) ([]*pendingPost, error) {
	var res []*pendingPost
	for _, px := range periodXacts {
		if requireStart && px.Period.Begin.IsZero() {
			return nil, fmt.Errorf("budget period %q has no start date", px.PeriodString)
		}
		for _, p := range px.Xact.Postings {
			if p.Amount.IsZero() {
				continue
			}
			iv := *px.Period
			res = append(res, &pendingPost{interval: &iv, post: p})
		}
	}
	return res, nil
}

// BudgetFlags select which postings a budget report shows.
type BudgetFlags int

const (
	// BudgetBudgeted shows postings against budgeted accounts.
	BudgetBudgeted BudgetFlags = 1 << iota
	// BudgetUnbudgeted shows postings against unbudgeted accounts.
	BudgetUnbudgeted
)

// BudgetPosts holds the set of periodic expected postings. For each
// real posting whose account is budgeted, it advances the schedule and
// emits the negated expected amounts of all periods strictly before
// the posting's date.
type BudgetPosts struct {
	nextHandler
	Flags BudgetFlags

	temps    temps
	pending  []*pendingPost
	budgeted set.Set[*journal.Account]
}

// NewBudgetPosts creates the stage. Every periodic transaction must
// have a resolvable start date.
func NewBudgetPosts(next PostHandler, flags BudgetFlags, periodXacts []*journal.PeriodXact) (*BudgetPosts, error) {
	pending, err := pendingPosts(periodXacts, true)
	if err != nil {
		return nil, err
	}
	for _, pp := range pending {
		pp.interval.FindPeriod(pp.interval.Begin)
	}
	if flags == 0 {
		flags = BudgetBudgeted
	}
	return &BudgetPosts{
		nextHandler: nextHandler{next},
		Flags:       flags,
		pending:     pending,
		budgeted:    set.New[*journal.Account](),
	}, nil
}

// reportBudgetItems emits expected postings for every period strictly
// before the given date.
func (b *BudgetPosts) reportBudgetItems(d time.Time) error {
	for _, pp := range b.pending {
		for pp.interval.Valid() && !d.Before(pp.interval.End) {
			if !pp.interval.Finish.IsZero() && !pp.interval.Start.Before(pp.interval.Finish) {
				break
			}
			xact := b.temps.newXact(pp.interval.Start, "Budget transaction")
			post := b.temps.newPost(xact, pp.post.Account, pp.post.Amount.Neg())
			post.Flags |= journal.Generated
			if err := b.forward(post); err != nil {
				return err
			}
			pp.interval.Advance()
		}
	}
	return nil
}

func (b *BudgetPosts) Push(p *journal.Posting) error {
	acct := p.ReportedAccount()
	budgeted := b.budgeted.Has(acct)
	if !budgeted {
		for _, pp := range b.pending {
			if pp.post.Account.IsAncestorOf(acct) {
				budgeted = true
				b.budgeted.Add(acct)
				break
			}
		}
	}
	if budgeted {
		if err := b.reportBudgetItems(p.Date()); err != nil {
			return err
		}
		if b.Flags&BudgetBudgeted != 0 {
			return b.forward(p)
		}
		return nil
	}
	if b.Flags&BudgetUnbudgeted != 0 {
		return b.forward(p)
	}
	return nil
}

// forecastGapYears bounds how far a single schedule may jump ahead.
const forecastGapYears = 5

// ForecastPosts forwards its input and then synthesises future
// postings from the periodic transactions, emitting the stream with
// the earliest next occurrence first, until the predicate fails for
// every schedule or the gap exceeds five years.
type ForecastPosts struct {
	nextHandler
	Pred  *expr.Op
	Scope scope.Scope

	temps       temps
	periodXacts []*journal.PeriodXact
	posts       []*journal.Posting
	latest      time.Time
}

// NewForecastPosts creates the stage.
func NewForecastPosts(next PostHandler, pred *expr.Op, outer scope.Scope, periodXacts []*journal.PeriodXact) *ForecastPosts {
	return &ForecastPosts{
		nextHandler: nextHandler{next},
		Pred:        pred,
		Scope:       outer,
		periodXacts: periodXacts,
	}
}

func (f *ForecastPosts) Push(p *journal.Posting) error {
	f.posts = append(f.posts, p)
	if d := p.Date(); d.After(f.latest) {
		f.latest = d
	}
	return nil
}

func (f *ForecastPosts) Flush() error {
	for _, p := range f.posts {
		if err := f.forward(p); err != nil {
			return err
		}
	}
	f.posts = nil

	start := f.latest
	if report := scope.FindReport(f.Scope); report != nil && report.CurrentDate.After(start) {
		start = report.CurrentDate
	}
	if start.IsZero() {
		start = time.Now()
	}
	limit := start.AddDate(forecastGapYears, 0, 0)

	pending, err := pendingPosts(f.periodXacts, false)
	if err != nil {
		return err
	}
	for _, pp := range pending {
		from := start
		if !pp.interval.Begin.IsZero() && pp.interval.Begin.After(from) {
			from = pp.interval.Begin
		}
		pp.interval.FindPeriod(from)
		pp.interval.Advance()
	}
	for len(pending) > 0 {
		// Pick the schedule with the earliest next occurrence.
		earliest := 0
		for i, pp := range pending {
			if pp.interval.Start.Before(pending[earliest].interval.Start) {
				earliest = i
			}
		}
		pp := pending[earliest]
		drop := func() {
			pending = append(pending[:earliest], pending[earliest+1:]...)
		}
		if pp.interval.Start.After(limit) {
			drop()
			continue
		}
		if !pp.interval.Finish.IsZero() && !pp.interval.Start.Before(pp.interval.Finish) {
			drop()
			continue
		}
		xact := f.temps.newXact(pp.interval.Start, "Forecast transaction")
		post := f.temps.newPost(xact, pp.post.Account, pp.post.Amount)
		post.Flags |= journal.Generated
		ok, err := f.test(post)
		if err != nil {
			return WithPostContext(err, post)
		}
		if !ok {
			drop()
			continue
		}
		if err := f.forward(post); err != nil {
			return err
		}
		pp.interval.Advance()
	}
	return f.next.Flush()
}

// test evaluates the forecast predicate in the synthetic posting's
// bind scope.
func (f *ForecastPosts) test(p *journal.Posting) (bool, error) {
	if f.Pred == nil {
		return false, nil
	}
	v, err := expr.Eval(f.Pred, scope.BindPost(f.Scope, p))
	if err != nil {
		return false, err
	}
	return v.Truth(), nil
}
