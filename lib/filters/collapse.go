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
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// CollapsePosts groups consecutive postings by transaction and emits
// one synthetic posting per transaction against the totals account.
// With OnlyIfZero set, transactions with a nonzero net emit their
// original postings instead.
type CollapsePosts struct {
	nextHandler
	TotalsAccount *journal.Account
	OnlyIfZero    bool

	temps    temps
	last     *journal.Xact
	group    []*journal.Posting
	subtotal value.Value
}

// NewCollapsePosts creates the stage. The totals account is usually
// created through the journal's FindAccount channel.
func NewCollapsePosts(next PostHandler, totals *journal.Account, onlyIfZero bool) *CollapsePosts {
	return &CollapsePosts{
		nextHandler:   nextHandler{next},
		TotalsAccount: totals,
		OnlyIfZero:    onlyIfZero,
	}
}

func (c *CollapsePosts) Push(p *journal.Posting) error {
	if c.last != nil && p.Xact != c.last {
		if err := c.reportSubtotal(); err != nil {
			return err
		}
	}
	c.last = p.Xact
	c.group = append(c.group, p)
	sub, err := value.Add(c.subtotal, p.DisplayAmount())
	if err != nil {
		return WithPostContext(err, p)
	}
	c.subtotal = sub
	return nil
}

func (c *CollapsePosts) reportSubtotal() error {
	defer func() {
		c.group, c.subtotal, c.last = nil, value.Null, nil
	}()
	if len(c.group) == 1 {
		return c.forward(c.group[0])
	}
	if c.OnlyIfZero && c.subtotal.Truth() {
		for _, p := range c.group {
			if err := c.forward(p); err != nil {
				return err
			}
		}
		return nil
	}
	p := c.temps.copyPost(c.group[0], nil)
	p.Account = c.TotalsAccount
	p.Flags |= journal.Calculated
	if amt, err := c.subtotal.AsAmount(); err == nil {
		p.Amount = amt
	} else {
		p.XData().Value = c.subtotal
	}
	return c.forward(p)
}

func (c *CollapsePosts) Flush() error {
	if len(c.group) > 0 {
		if err := c.reportSubtotal(); err != nil {
			return err
		}
	}
	return c.next.Flush()
}
