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

	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/common/dict"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// PostsAsEquity emits, on flush, an "Opening Balances" transaction
// whose postings reproduce the final total of every account, balanced
// by the equity account.
type PostsAsEquity struct {
	nextHandler
	EquityAccount *journal.Account

	temps  temps
	values map[string]*subtotalValue
	latest time.Time
}

// NewPostsAsEquity creates the stage.
func NewPostsAsEquity(next PostHandler, equity *journal.Account) *PostsAsEquity {
	return &PostsAsEquity{
		nextHandler:   nextHandler{next},
		EquityAccount: equity,
		values:        make(map[string]*subtotalValue),
	}
}

func (e *PostsAsEquity) Push(p *journal.Posting) error {
	if d := p.Date(); d.After(e.latest) {
		e.latest = d
	}
	acct := p.ReportedAccount()
	sv := dict.GetDefault(e.values, acct.FullName(), func() *subtotalValue {
		return &subtotalValue{account: acct}
	})
	sum, err := value.Add(sv.value, p.DisplayAmount())
	if err != nil {
		return WithPostContext(err, p)
	}
	sv.value = sum
	return nil
}

func (e *PostsAsEquity) Flush() error {
	if len(e.values) == 0 {
		return e.next.Flush()
	}
	xact := e.temps.newXact(e.latest, "Opening Balances")
	grand := value.Null
	for _, name := range dict.SortedKeys(e.values, compare.Ordered[string]) {
		sv := e.values[name]
		if !sv.value.Truth() {
			continue
		}
		post := e.temps.newPost(xact, sv.account, amountOf(sv.value))
		post.Flags |= journal.Calculated
		if _, err := sv.value.AsAmount(); err != nil {
			post.XData().Value = sv.value
		}
		sum, err := value.Add(grand, sv.value)
		if err != nil {
			return err
		}
		grand = sum
		if err := e.forward(post); err != nil {
			return err
		}
	}
	if grand.Truth() {
		neg, err := value.Neg(grand)
		if err != nil {
			return err
		}
		post := e.temps.newPost(xact, e.EquityAccount, amountOf(neg))
		post.Flags |= journal.Calculated
		if _, err := neg.AsAmount(); err != nil {
			post.XData().Value = neg
		}
		if err := e.forward(post); err != nil {
			return err
		}
	}
	e.values = make(map[string]*subtotalValue)
	return e.next.Flush()
}
