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
	"time"

	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// ChangedValuePosts emits a synthetic "Commodities revalued" posting
// whenever the market value of the running total changes between
// reported postings, and a "Commodity rounding" adjustment when the
// truncated display would drift from the running total.
type ChangedValuePosts struct {
	nextHandler
	Scope           scope.Scope
	RevaluedAccount *journal.Account
	RoundingAccount *journal.Account

	temps       temps
	lastTotal   value.Value
	lastDisplay value.Value
	lastDate    time.Time
	roundedSum  value.Value
	seen        bool
}

// NewChangedValuePosts creates the stage. The rounding account may be
// nil to disable rounding adjustments.
func NewChangedValuePosts(next PostHandler, outer scope.Scope, revalued, rounding *journal.Account) *ChangedValuePosts {
	return &ChangedValuePosts{
		nextHandler:     nextHandler{next},
		Scope:           outer,
		RevaluedAccount: revalued,
		RoundingAccount: rounding,
	}
}

func (c *ChangedValuePosts) Push(p *journal.Posting) error {
	if c.seen {
		if err := c.outputRevaluation(p.Date()); err != nil {
			return WithPostContext(err, p)
		}
	}
	if c.RoundingAccount != nil {
		if err := c.outputRounding(p); err != nil {
			return WithPostContext(err, p)
		}
	}
	if err := c.forward(p); err != nil {
		return err
	}
	c.seen = true
	c.lastDate = p.Date()
	if p.HasXData() {
		c.lastTotal = p.XData().Total
	} else {
		c.lastTotal = p.DisplayAmount()
	}
	display, err := c.market(c.lastTotal, c.lastDate)
	if err != nil {
		return WithPostContext(err, p)
	}
	c.lastDisplay = display
	return nil
}

// outputRevaluation reprices the previous running total at the given
// date and emits the delta if it is nonzero. The date comes from the
// posting about to be emitted; the previous posting's state is left
// untouched.
func (c *ChangedValuePosts) outputRevaluation(d time.Time) error {
	repriced, err := c.market(c.lastTotal, d)
	if err != nil {
		return err
	}
	diff, err := value.Sub(repriced, c.lastDisplay)
	if err != nil {
		return err
	}
	if !diff.Truth() {
		return nil
	}
	xact := c.temps.newXact(d, "Commodities revalued")
	post := c.temps.newPost(xact, c.RevaluedAccount, amountOf(diff))
	post.Flags |= journal.Generated | journal.Virtual
	if _, err := diff.AsAmount(); err != nil {
		post.XData().Value = diff
	}
	post.XData().Total = repriced
	return c.forward(post)
}

// outputRounding keeps the sum of displayed (rounded) amounts in step
// with the rounded running total.
func (c *ChangedValuePosts) outputRounding(p *journal.Posting) error {
	if !p.HasXData() || p.XData().Total.IsNull() {
		return nil
	}
	roundedTotal, err := value.Round(p.XData().Total)
	if err != nil {
		return err
	}
	roundedAmount, err := value.Round(p.DisplayAmount())
	if err != nil {
		return err
	}
	sum, err := value.Add(c.roundedSum, roundedAmount)
	if err != nil {
		return err
	}
	diff, err := value.Sub(roundedTotal, sum)
	if err != nil {
		return err
	}
	if diff.Truth() {
		xact := c.temps.newXact(p.Date(), "Commodity rounding")
		post := c.temps.newPost(xact, c.RoundingAccount, amountOf(diff))
		post.Flags |= journal.Generated | journal.Virtual
		if _, err := diff.AsAmount(); err != nil {
			post.XData().Value = diff
		}
		if err := c.forward(post); err != nil {
			return err
		}
		sum, err = value.Add(sum, diff)
		if err != nil {
			return err
		}
	}
	c.roundedSum = sum
	return nil
}

func (c *ChangedValuePosts) market(v value.Value, d time.Time) (value.Value, error) {
	report := scope.FindReport(c.Scope)
	if report == nil {
		return v, nil
	}
	return expr.MarketValue(v, d, report.Prices)
}
