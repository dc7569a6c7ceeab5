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

// Package journal implements the journal model: the account tree, the
// transactions and their postings, and the lazily attached report state.
package journal

import (
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/model/commodity"
)

// Journal owns the account tree and the ordered list of transactions of
// a single run. The reporting pipeline treats it as read-only except
// for synthetic accounts it creates through FindAccount.
type Journal struct {
	Registry *commodity.Registry

	root  *Account
	xacts []*Xact

	// PeriodXacts holds the periodic transactions feeding the budget
	// and forecast filters.
	PeriodXacts []*PeriodXact

	// Prices holds the price directives read from the journal.
	Prices []Price
}

// Price states the price of one unit of a commodity at a date.
type Price struct {
	Date      time.Time
	Commodity *commodity.Commodity
	Price     amount.Amount
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{
		Registry: commodity.NewRegistry(),
		root:     NewAccount(),
	}
}

// Root returns the root account.
func (j *Journal) Root() *Account {
	return j.root
}

// FindAccount returns the account with the given full name. With create
// set, the account and its ancestors are created on demand. This is the
// single mutation channel used by reporting filters; it is logically
// append-only.
func (j *Journal) FindAccount(name string, create bool) *Account {
	return j.root.Find(name, create)
}

// AddXact appends a transaction and registers its postings with their
// accounts.
func (j *Journal) AddXact(x *Xact) {
	x.Journal = j
	j.xacts = append(j.xacts, x)
	for _, p := range x.Postings {
		p.Account.AddPosting(p)
	}
}

// Xacts returns the transactions in document order.
func (j *Journal) Xacts() []*Xact {
	return j.xacts
}

// ClearXData discards all report state attached to accounts and
// postings.
func (j *Journal) ClearXData() {
	j.root.ClearXData()
	for _, x := range j.xacts {
		for _, p := range x.Postings {
			p.ClearXData()
		}
	}
}

// PeriodXact is a periodic transaction template with its schedule.
type PeriodXact struct {
	// PeriodString is the original period expression.
	PeriodString string
	// Period is the parsed schedule.
	Period *date.DateInterval
	// Xact holds the template postings.
	Xact *Xact
}
