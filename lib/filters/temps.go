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

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// temps is a stage-owned backing store for synthetic transactions and
// postings. Pointers handed downstream stay valid until the pipeline
// is torn down together with its stages.
type temps struct {
	xacts []*journal.Xact
	posts []*journal.Posting
}

// newXact creates a synthetic transaction.
func (t *temps) newXact(date time.Time, payee string) *journal.Xact {
	x := &journal.Xact{
		Date:  date,
		Payee: payee,
		Flags: journal.Temp,
	}
	t.xacts = append(t.xacts, x)
	return x
}

// newPost creates a synthetic posting on the given transaction.
func (t *temps) newPost(x *journal.Xact, account *journal.Account, amt amount.Amount) *journal.Posting {
	p := &journal.Posting{
		Account: account,
		Amount:  amt,
		Flags:   journal.Temp,
	}
	x.AddPosting(p)
	t.posts = append(t.posts, p)
	return p
}

// amountOf extracts a plain amount from a value, or zero when the
// value is compound; compound values ride in the posting's xdata.
func amountOf(v value.Value) amount.Amount {
	if a, err := v.AsAmount(); err == nil {
		return a
	}
	return amount.Amount{}
}

func zeroAmount() amount.Amount {
	return amount.Amount{}
}

// copyPost clones a posting into the store, without report state.
func (t *temps) copyPost(p *journal.Posting, x *journal.Xact) *journal.Posting {
	clone := &journal.Posting{
		Account:  p.Account,
		Amount:   p.Amount,
		Cost:     p.Cost,
		State:    p.State,
		HasState: p.HasState,
		Flags:    p.Flags | journal.Temp,
		Note:     p.Note,
	}
	if x != nil {
		x.AddPosting(clone)
	} else {
		clone.Xact = p.Xact
	}
	t.posts = append(t.posts, clone)
	return clone
}
