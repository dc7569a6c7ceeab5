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

package scope

import (
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// BindScope wraps a posting or account as the item under evaluation.
// Field accesses resolve against the item; everything else delegates to
// the outer scope.
type BindScope struct {
	parent  Scope
	Post    *journal.Posting
	Account *journal.Account
}

// BindPost binds a posting.
func BindPost(parent Scope, p *journal.Posting) *BindScope {
	return &BindScope{parent: parent, Post: p}
}

// BindAccount binds an account.
func BindAccount(parent Scope, a *journal.Account) *BindScope {
	return &BindScope{parent: parent, Account: a}
}

func (s *BindScope) Parent() Scope {
	return s.parent
}

func (s *BindScope) Lookup(name string) (Callable, bool) {
	if s.Post != nil {
		if c, ok := postField(s.Post, name); ok {
			return c, true
		}
	}
	if s.Account != nil {
		if c, ok := accountField(s.Account, name); ok {
			return c, true
		}
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

func postField(p *journal.Posting, name string) (Callable, bool) {
	switch name {
	case "amount":
		return Constant(p.DisplayAmount()), true
	case "cost":
		return Constant(value.Amt(p.ResolveAmount())), true
	case "total":
		if p.HasXData() {
			return Constant(p.XData().Total), true
		}
		return Constant(value.Null), true
	case "cost_total":
		if p.HasXData() {
			return Constant(p.XData().CostTotal), true
		}
		return Constant(value.Null), true
	case "date":
		return Constant(value.Date(p.Date())), true
	case "payee":
		return Constant(value.Str(p.Payee())), true
	case "account":
		return Constant(value.Str(p.ReportedAccount().FullName())), true
	case "account_name":
		return Constant(value.Str(p.ReportedAccount().Name())), true
	case "note":
		return Constant(value.Str(p.Note)), true
	case "code":
		return Constant(value.Str(p.Xact.Code)), true
	case "cleared":
		return Constant(value.Bool(p.GetState() == journal.Cleared)), true
	case "pending":
		return Constant(value.Bool(p.GetState() == journal.Pending)), true
	case "real":
		return Constant(value.Bool(p.IsReal())), true
	case "actual":
		return Constant(value.Bool(!p.Flags.Has(journal.Generated))), true
	case "index", "count":
		if p.HasXData() {
			return Constant(value.Int(int64(p.XData().Count))), true
		}
		return Constant(value.Int(0)), true
	case "depth":
		return Constant(value.Int(int64(p.ReportedAccount().Depth()))), true
	}
	return nil, false
}

func accountField(a *journal.Account, name string) (Callable, bool) {
	switch name {
	case "amount", "total":
		if a.HasXData() {
			return Constant(a.XData().Total), true
		}
		return Constant(value.Null), true
	case "account":
		return Constant(value.Str(a.FullName())), true
	case "account_name":
		return Constant(value.Str(a.Name())), true
	case "note":
		return Constant(value.Str(a.Note)), true
	case "index", "count":
		if a.HasXData() {
			return Constant(value.Int(int64(a.XData().PostCount))), true
		}
		return Constant(value.Int(0)), true
	case "depth":
		return Constant(value.Int(int64(a.Depth()))), true
	case "payee", "date", "cost", "cost_total":
		return Constant(value.Null), true
	case "cleared", "pending", "real", "actual":
		return Constant(value.Bool(false)), true
	}
	return nil, false
}

// BoundPost returns the posting bound by the innermost bind scope.
func BoundPost(s Scope) *journal.Posting {
	for ; s != nil; s = s.Parent() {
		if bs, ok := s.(*BindScope); ok && bs.Post != nil {
			return bs.Post
		}
	}
	return nil
}

// BoundAccount returns the account bound by the innermost bind scope.
func BoundAccount(s Scope) *journal.Account {
	for ; s != nil; s = s.Parent() {
		if bs, ok := s.(*BindScope); ok && bs.Account != nil {
			return bs.Account
		}
	}
	return nil
}

// SkipBind returns the scope chain outside the innermost bind scope,
// for `^` parent lookups.
func SkipBind(s Scope) Scope {
	for c := s; c != nil; c = c.Parent() {
		if _, ok := c.(*BindScope); ok {
			return c.Parent()
		}
	}
	return s
}
