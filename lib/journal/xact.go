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
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/value"
)

// State is the clearing state of a transaction or posting.
type State int

const (
	// Uncleared is the default state.
	Uncleared State = iota
	// Pending marks a transaction awaiting clearance.
	Pending
	// Cleared marks a cleared transaction.
	Cleared
)

func (s State) String() string {
	switch s {
	case Pending:
		return "!"
	case Cleared:
		return "*"
	}
	return ""
}

// Flags are item flag bits shared by transactions and postings.
type Flags uint8

const (
	// Virtual marks a posting which need not balance.
	Virtual Flags = 1 << iota
	// MustBalance marks a virtual posting which still must balance.
	MustBalance
	// Calculated marks an amount inferred by the balancer.
	Calculated
	// Temp marks items synthesised by the reporting pipeline.
	Temp
	// Generated marks items produced from periodic transactions.
	Generated
)

// Has reports whether all given bits are set.
func (f Flags) Has(bits Flags) bool {
	return f&bits == bits
}

// Xact is a transaction: an ordered list of postings on one date whose
// amounts sum to zero per commodity.
type Xact struct {
	Journal       *Journal
	Date          time.Time
	EffectiveDate time.Time
	State         State
	Payee         string
	Code          string
	Note          string
	Flags         Flags
	Postings      []*Posting
}

// AddPosting appends a posting and sets its back-reference.
func (x *Xact) AddPosting(p *Posting) {
	p.Xact = x
	x.Postings = append(x.Postings, p)
}

// Magnitude sums the postings' cost-resolved amounts per commodity. For
// a balanced journal transaction this is zero in each commodity.
func (x *Xact) Magnitude() amount.Balance {
	bal := amount.NewBalance()
	for _, p := range x.Postings {
		if p.Flags.Has(Virtual) && !p.Flags.Has(MustBalance) {
			continue
		}
		bal.Add(p.ResolveAmount())
	}
	return bal
}

// Posting attributes an amount to an account as one side of a
// transaction.
type Posting struct {
	Xact    *Xact
	Account *Account
	Amount  amount.Amount
	Cost    *amount.Amount
	// State overrides the transaction state when set.
	State    State
	HasState bool
	Flags    Flags
	Note     string

	xdata *PostXData
}

// Date returns the posting date, honouring any report override.
func (p *Posting) Date() time.Time {
	if p.xdata != nil && !p.xdata.Date.IsZero() {
		return p.xdata.Date
	}
	return p.Xact.Date
}

// Payee returns the payee of the posting's transaction.
func (p *Posting) Payee() string {
	return p.Xact.Payee
}

// GetState resolves the posting state, falling back to the transaction.
func (p *Posting) GetState() State {
	if p.HasState {
		return p.State
	}
	return p.Xact.State
}

// ReportedAccount returns the account this posting is reported against,
// honouring any report override.
func (p *Posting) ReportedAccount() *Account {
	if p.xdata != nil && p.xdata.Account != nil {
		return p.xdata.Account
	}
	return p.Account
}

// IsReal reports whether the posting is not virtual.
func (p *Posting) IsReal() bool {
	return !p.Flags.Has(Virtual)
}

// ResolveAmount returns the posting amount with cost applied, i.e. the
// value the posting contributes to its transaction's balance.
func (p *Posting) ResolveAmount() amount.Amount {
	if p.Cost != nil {
		return *p.Cost
	}
	return p.Amount
}

// PostXData carries per-report state for a posting. It is created
// lazily and discarded at the end of a report.
type PostXData struct {
	// Total is the running total after this posting.
	Total value.Value
	// CostTotal is the running total of resolved costs.
	CostTotal value.Value
	// Count is the 1-based index assigned by the calc stage.
	Count int
	// Date overrides the displayed date.
	Date time.Time
	// Account overrides the reported account.
	Account *Account
	// Value overrides the displayed amount (compound values).
	Value value.Value
	// SortKey caches the computed sort key.
	SortKey value.Value
	// Handled marks postings already expanded by the related filter.
	Handled bool
	// Displayed marks postings already shown.
	Displayed bool
}

// XData returns the posting's report state, attaching it on first use.
func (p *Posting) XData() *PostXData {
	if p.xdata == nil {
		p.xdata = new(PostXData)
	}
	return p.xdata
}

// HasXData reports whether report state has been attached.
func (p *Posting) HasXData() bool {
	return p.xdata != nil
}

// ClearXData discards the posting's report state.
func (p *Posting) ClearXData() {
	p.xdata = nil
}

// DisplayAmount returns the amount to render: the xdata compound value
// if set, the plain amount otherwise.
func (p *Posting) DisplayAmount() value.Value {
	if p.xdata != nil && !p.xdata.Value.IsNull() {
		return p.xdata.Value
	}
	return value.Amt(p.Amount)
}

// CompareByDate orders postings by date, keeping document order within
// a day.
func CompareByDate(p1, p2 *Posting) compare.Order {
	return compare.Time(p1.Date(), p2.Date())
}
