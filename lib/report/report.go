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

// Package report composes the filter chain from a configuration and
// drives it into a terminal formatter.
package report

import (
	"io"

	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/common/predicate"
	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/filters"
	"github.com/drewr/ledger/lib/format"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
	"github.com/fatih/color"
)

// Report owns the scopes and configuration of one reporting run.
type Report struct {
	Journal *journal.Journal
	Config  Config

	exprs   *expr.Parser
	formats *format.Parser
	scope   *scope.ReportScope
}

// New creates a report over the journal. The price source may be nil.
func New(j *journal.Journal, cfg Config, prices scope.PriceSource) (*Report, error) {
	r := &Report{
		Journal: j,
		Config:  cfg,
		exprs:   &expr.Parser{Registry: j.Registry},
	}
	r.formats = &format.Parser{
		Exprs:            r.exprs,
		AccountAbbrevLen: cfg.AccountAbbrevLen,
	}
	syms := format.Symbols(expr.DefaultSymbols(nil))
	r.scope = scope.NewReportScope(syms)
	r.scope.DateFormat = cfg.dateFormat()
	r.scope.CurrentDate = cfg.CurrentDate
	r.scope.Prices = prices
	color.NoColor = !cfg.Color
	if cfg.AmountExpr != "" {
		c, err := r.compile(cfg.AmountExpr)
		if err != nil {
			return nil, err
		}
		r.scope.AmountExpr = c
	}
	if cfg.TotalExpr != "" {
		c, err := r.compile(cfg.TotalExpr)
		if err != nil {
			return nil, err
		}
		r.scope.TotalExpr = c
	}
	return r, nil
}

// Scope returns the report scope chain.
func (r *Report) Scope() scope.Scope {
	return r.scope
}

func (r *Report) compile(text string) (scope.Callable, error) {
	op, err := r.exprs.Parse(text)
	if err != nil {
		return nil, err
	}
	return func(es scope.Scope) (value.Value, error) {
		return expr.Eval(op, es)
	}, nil
}

// BuildPostsChain wires the configured stages outside-in around the
// terminal handler and returns the head of the chain.
func (r *Report) BuildPostsChain(terminal filters.PostHandler) (filters.PostHandler, error) {
	cfg := &r.Config
	handler := terminal

	if cfg.DisplayPredicate != "" {
		op, err := r.exprs.Parse(cfg.DisplayPredicate)
		if err != nil {
			return nil, err
		}
		handler = filters.NewFilterPosts(handler, op, r.scope)
	}
	if cfg.Round {
		handler = filters.NewRoundPosts(handler)
	}
	if cfg.ChangedValues {
		var rounding *journal.Account
		if cfg.RoundingAccount != "" {
			rounding = r.Journal.FindAccount(cfg.roundingAccount(), true)
			rounding.Temp = true
		}
		revalued := r.Journal.FindAccount(cfg.revaluedAccount(), true)
		revalued.Temp = true
		handler = filters.NewChangedValuePosts(handler, r.scope, revalued, rounding)
	}
	if cfg.ForecastPredicate != "" {
		op, err := r.exprs.Parse(cfg.ForecastPredicate)
		if err != nil {
			return nil, err
		}
		handler = filters.NewForecastPosts(handler, op, r.scope, r.Journal.PeriodXacts)
	}
	if cfg.BudgetMode != NoBudget {
		var flags filters.BudgetFlags
		switch cfg.BudgetMode {
		case Budgeted:
			flags = filters.BudgetBudgeted
		case Unbudgeted:
			flags = filters.BudgetUnbudgeted
		case BudgetedAndUnbudgeted:
			flags = filters.BudgetBudgeted | filters.BudgetUnbudgeted
		}
		budget, err := filters.NewBudgetPosts(handler, flags, r.Journal.PeriodXacts)
		if err != nil {
			return nil, err
		}
		handler = budget
	}
	if cfg.Equity {
		equity := r.Journal.FindAccount(cfg.equityAccount(), true)
		handler = filters.NewPostsAsEquity(handler, equity)
	}
	switch {
	case cfg.ByDow:
		handler = filters.NewDowPosts(handler, cfg.dateFormat())
	case cfg.ByPayee:
		handler = filters.NewByPayeePosts(handler, cfg.dateFormat())
	case cfg.Interval != "":
		interval, err := date.ParsePeriod(cfg.Interval)
		if err != nil {
			return nil, err
		}
		empty := r.Journal.FindAccount(cfg.emptyAccount(), true)
		empty.Temp = true
		handler = filters.NewIntervalPosts(handler, interval, cfg.GenerateEmpty, empty, cfg.dateFormat())
	case cfg.Subtotal:
		handler = filters.NewSubtotalPosts(handler, cfg.dateFormat())
	}
	if cfg.Collapse || cfg.CollapseIfZero {
		totals := r.Journal.FindAccount(cfg.totalsAccount(), true)
		totals.Temp = true
		handler = filters.NewCollapsePosts(handler, totals, cfg.CollapseIfZero)
	}
	if cfg.Related || cfg.RelatedAll {
		handler = filters.NewRelatedPosts(handler, cfg.RelatedAll)
	}
	handler = filters.NewCalcPosts(handler, cfg.Subtotal)
	if cfg.HeadCount != 0 || cfg.TailCount != 0 {
		handler = filters.NewTruncateXacts(handler, cfg.HeadCount, cfg.TailCount)
	}
	if cfg.SortOrder != "" {
		op, err := r.exprs.Parse(cfg.SortOrder)
		if err != nil {
			return nil, err
		}
		handler = filters.NewSortPosts(handler, op, r.scope)
	}
	if cfg.Predicate != "" {
		op, err := r.exprs.Parse(cfg.Predicate)
		if err != nil {
			return nil, err
		}
		handler = filters.NewFilterPosts(handler, op, r.scope)
	}
	if len(cfg.AccountRegexes) > 0 || len(cfg.PayeeRegexes) > 0 {
		var preds []predicate.Predicate[*journal.Posting]
		if rxs := cfg.AccountRegexes; len(rxs) > 0 {
			preds = append(preds, func(p *journal.Posting) bool {
				return rxs.MatchString(p.ReportedAccount().FullName())
			})
		}
		if rxs := cfg.PayeeRegexes; len(rxs) > 0 {
			preds = append(preds, func(p *journal.Posting) bool {
				return rxs.MatchString(p.Payee())
			})
		}
		handler = filters.NewMatchPosts(handler, predicate.And(preds...))
	}
	if cfg.Anonymize {
		handler = filters.NewAnonymizePosts(handler, r.Journal)
	}
	return handler, nil
}

// PostsReport runs the posting chain into the writer using the
// configured format. Report state is discarded on return.
func (r *Report) PostsReport(w io.Writer) error {
	defer r.Journal.ClearXData()
	text := r.Config.Format
	if text == "" {
		text = DefaultRegisterFormat
	}
	f, err := r.formats.Parse(text)
	if err != nil {
		return err
	}
	terminal := NewFormatPosts(w, f, r.scope, r.Config.Columns)
	head, err := r.BuildPostsChain(terminal)
	if err != nil {
		return err
	}
	return filters.PassDownPosts(head, journal.JournalPosts(r.Journal))
}

// AccountsReport runs the posting chain into the account tree and
// renders the visited accounts. Report state is discarded on return.
func (r *Report) AccountsReport(w io.Writer) error {
	defer r.Journal.ClearXData()
	// The display predicate selects accounts here, not postings.
	display := r.Config.DisplayPredicate
	r.Config.DisplayPredicate = ""
	head, err := r.BuildPostsChain(filters.NewAccumulatePosts())
	r.Config.DisplayPredicate = display
	if err != nil {
		return err
	}
	if err := filters.PassDownPosts(head, journal.JournalPosts(r.Journal)); err != nil {
		return err
	}
	if err := filters.RollupAccounts(r.Journal.Root()); err != nil {
		return err
	}
	text := r.Config.Format
	if text == "" {
		text = DefaultBalanceFormat
	}
	f, err := r.formats.Parse(text)
	if err != nil {
		return err
	}
	var accounts filters.AccountHandler = NewFormatAccounts(w, f, r.scope, r.Config.Columns)
	if r.Config.DisplayPredicate != "" {
		op, err := r.exprs.Parse(r.Config.DisplayPredicate)
		if err != nil {
			return err
		}
		accounts = filters.NewFilterAccounts(accounts, op, r.scope)
	}
	accounts = filters.NewVisitedAccounts(accounts)
	it := journal.PreOrderAccounts(r.Journal.Root())
	if r.Config.SortOrder != "" {
		op, err := r.exprs.Parse(r.Config.SortOrder)
		if err != nil {
			return err
		}
		it = journal.SortedAccounts(r.Journal.Root(), r.accountOrder(op))
	}
	return filters.PassDownAccounts(accounts, it)
}

// accountOrder compares sibling accounts by the sort expression,
// caching the computed key. Accounts whose keys do not compare stay in
// name order.
func (r *Report) accountOrder(op *expr.Op) compare.Compare[*journal.Account] {
	key := func(a *journal.Account) value.Value {
		xd := a.XData()
		if xd.SortKey.IsNull() {
			v, err := expr.Eval(op, scope.BindAccount(r.scope, a))
			if err != nil {
				return value.Null
			}
			xd.SortKey = v
		}
		return xd.SortKey
	}
	return func(a1, a2 *journal.Account) compare.Order {
		o, err := value.Compare(key(a1), key(a2))
		if err != nil {
			return compare.Equal
		}
		return o
	}
}
