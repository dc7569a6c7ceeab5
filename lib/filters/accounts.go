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
	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// FilterAccounts forwards only accounts for which the predicate
// evaluates to true in the account's bind scope.
type FilterAccounts struct {
	next  AccountHandler
	Pred  *expr.Op
	Scope scope.Scope
}

// NewFilterAccounts creates the stage.
func NewFilterAccounts(next AccountHandler, pred *expr.Op, outer scope.Scope) *FilterAccounts {
	return &FilterAccounts{next: next, Pred: pred, Scope: outer}
}

func (f *FilterAccounts) Push(a *journal.Account) error {
	v, err := expr.Eval(f.Pred, scope.BindAccount(f.Scope, a))
	if err != nil {
		return WithAccountContext(err, a)
	}
	if v.Truth() {
		return f.next.Push(a)
	}
	return nil
}

func (f *FilterAccounts) Flush() error {
	return f.next.Flush()
}

func (f *FilterAccounts) Title(t string) error {
	return f.next.Title(t)
}

// VisitedAccounts forwards only accounts that were touched by the
// report, i.e. carry report state.
type VisitedAccounts struct {
	next AccountHandler
}

// NewVisitedAccounts creates the stage.
func NewVisitedAccounts(next AccountHandler) *VisitedAccounts {
	return &VisitedAccounts{next: next}
}

func (v *VisitedAccounts) Push(a *journal.Account) error {
	if a.HasXData() && a.XData().Visited {
		return v.next.Push(a)
	}
	return nil
}

func (v *VisitedAccounts) Flush() error {
	return v.next.Flush()
}

func (v *VisitedAccounts) Title(t string) error {
	return v.next.Title(t)
}

// AccumulatePosts is a terminal posting handler which folds every
// posting into its reported account's state, feeding the account
// chain.
type AccumulatePosts struct{}

// NewAccumulatePosts creates the stage.
func NewAccumulatePosts() *AccumulatePosts {
	return &AccumulatePosts{}
}

func (*AccumulatePosts) Push(p *journal.Posting) error {
	acct := p.ReportedAccount()
	xd := acct.XData()
	total, err := value.Add(xd.Total, p.DisplayAmount())
	if err != nil {
		return WithPostContext(err, p)
	}
	xd.Total = total
	xd.PostCount++
	xd.Visited = true
	return nil
}

func (*AccumulatePosts) Flush() error {
	return nil
}

func (*AccumulatePosts) Title(string) error {
	return nil
}

// RollupAccounts folds every account's accumulated total and visited
// flag into its ancestors, bottom-up, preparing the tree for the
// account chain.
func RollupAccounts(root *journal.Account) error {
	return rollupAccount(root)
}

func rollupAccount(a *journal.Account) error {
	xd := a.XData()
	for _, child := range a.Children() {
		if err := rollupAccount(child); err != nil {
			return err
		}
		cxd := child.XData()
		total, err := value.Add(xd.Total, cxd.Total)
		if err != nil {
			return WithAccountContext(err, a)
		}
		xd.Total = total
		if cxd.Visited {
			xd.Visited = true
		}
	}
	return nil
}
