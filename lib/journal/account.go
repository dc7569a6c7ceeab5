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

package journal

import (
	"strings"

	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/common/dict"
	"github.com/drewr/ledger/lib/value"
)

// Account is a node in the chart of accounts. Children are keyed by
// segment name, so siblings have unique names. The root account has
// depth 0 and an empty name.
type Account struct {
	name     string
	parent   *Account
	children map[string]*Account
	depth    int

	// Postings references the postings booked against this account.
	Postings []*Posting
	// Note is an optional account note.
	Note string
	// Temp marks accounts created by the reporting pipeline.
	Temp bool

	xdata *AccountXData
}

// NewAccount creates a detached root account.
func NewAccount() *Account {
	return &Account{children: make(map[string]*Account)}
}

// Name returns the last segment of the account name.
func (a *Account) Name() string {
	return a.name
}

// FullName returns the colon-joined name of the account.
func (a *Account) FullName() string {
	if a.parent == nil || a.parent.parent == nil {
		return a.name
	}
	return a.parent.FullName() + ":" + a.name
}

// Parent returns the parent account, or nil for the root.
func (a *Account) Parent() *Account {
	return a.parent
}

// Depth returns the depth of the account; the root has depth 0.
func (a *Account) Depth() int {
	return a.depth
}

// Children returns the child accounts ordered by name.
func (a *Account) Children() []*Account {
	res := dict.Values(a.children)
	compare.Sort(res, Compare)
	return res
}

// Find returns the descendant with the given colon-separated name. With
// create set, missing intermediate accounts are created.
func (a *Account) Find(name string, create bool) *Account {
	acct := a
	for _, segment := range strings.Split(name, ":") {
		child, ok := acct.children[segment]
		if !ok {
			if !create {
				return nil
			}
			child = &Account{
				name:     segment,
				parent:   acct,
				children: make(map[string]*Account),
				depth:    acct.depth + 1,
			}
			acct.children[segment] = child
		}
		acct = child
	}
	return acct
}

// AddPosting registers a posting against this account.
func (a *Account) AddPosting(p *Posting) {
	a.Postings = append(a.Postings, p)
}

// IsAncestorOf reports whether b lies in the subtree rooted at a,
// including a itself.
func (a *Account) IsAncestorOf(b *Account) bool {
	for ; b != nil; b = b.parent {
		if b == a {
			return true
		}
	}
	return false
}

// Compare orders accounts by full name.
func Compare(a1, a2 *Account) compare.Order {
	return compare.Ordered(a1.FullName(), a2.FullName())
}

// AccountXData carries per-report state for an account. It is created
// lazily and discarded at the end of a report.
type AccountXData struct {
	// Total is the running total of the account.
	Total value.Value
	// PostCount is the number of postings seen for the account.
	PostCount int
	// Visited marks accounts touched by the current report.
	Visited bool
	// SortKey caches the computed sort key.
	SortKey value.Value
}

// XData returns the account's report state, attaching it on first use.
func (a *Account) XData() *AccountXData {
	if a.xdata == nil {
		a.xdata = new(AccountXData)
	}
	return a.xdata
}

// HasXData reports whether report state has been attached.
func (a *Account) HasXData() bool {
	return a.xdata != nil
}

// ClearXData discards report state on this account and its children.
func (a *Account) ClearXData() {
	a.xdata = nil
	for _, child := range a.children {
		child.ClearXData()
	}
}
