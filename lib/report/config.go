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

package report

import (
	"time"

	"github.com/drewr/ledger/lib/common/regex"
)

// BudgetMode selects which side of a budget report is shown.
type BudgetMode int

const (
	// NoBudget disables budgeting.
	NoBudget BudgetMode = iota
	// Budgeted shows postings against budgeted accounts.
	Budgeted
	// Unbudgeted shows postings against unbudgeted accounts.
	Unbudgeted
	// BudgetedAndUnbudgeted shows both.
	BudgetedAndUnbudgeted
)

// Config holds the recognised report options. The zero value is a
// plain passthrough register.
type Config struct {
	// HeadCount and TailCount select a window of transactions;
	// negative counts invert the selection.
	HeadCount, TailCount int
	// SortOrder is a value expression evaluated per posting.
	SortOrder string
	// Predicate filters postings before any transformation.
	Predicate string
	// DisplayPredicate filters postings just before the formatter.
	DisplayPredicate string
	// Subtotal merges all postings into one group per account.
	Subtotal bool
	// Interval is a period expression grouping postings by period.
	Interval string
	// GenerateEmpty emits zero groups for periods without activity.
	GenerateEmpty bool
	// ByPayee groups postings by payee.
	ByPayee bool
	// ByDow groups postings by day of week.
	ByDow bool
	// Collapse replaces each transaction by one posting against the
	// totals account; CollapseIfZero only collapses balanced ones.
	Collapse       bool
	CollapseIfZero bool
	// Related reports the sibling postings instead; RelatedAll keeps
	// the matching postings too.
	Related    bool
	RelatedAll bool
	// BudgetMode enables budget reporting.
	BudgetMode BudgetMode
	// ForecastPredicate enables forecasting while it holds.
	ForecastPredicate string
	// Anonymize obscures payees and accounts.
	Anonymize bool
	// ChangedValues inserts revaluation postings.
	ChangedValues bool
	// Round rounds displayed amounts to display precision.
	Round bool
	// Equity renders the final totals as an opening transaction.
	Equity bool

	// Account names used by the synthesising stages.
	RevaluedAccount string
	RoundingAccount string
	TotalsAccount   string
	EquityAccount   string
	EmptyAccount    string

	// AmountExpr and TotalExpr override the displayed expressions.
	AmountExpr string
	TotalExpr  string
	// Format is the output format string.
	Format string
	// DateFormat is the Go layout used to render dates.
	DateFormat string
	// AccountAbbrevLen shortens account segments when eliding.
	AccountAbbrevLen int
	// Columns bounds the output line width; 0 means unbounded.
	Columns int
	// CurrentDate anchors "now" for valuation and forecasting.
	CurrentDate time.Time
	// Color enables colourised output.
	Color bool
	// AccountRegexes and PayeeRegexes filter postings by matching
	// the reported account name or payee.
	AccountRegexes regex.Regexes
	PayeeRegexes   regex.Regexes
}

// Default account names.
const (
	DefaultTotalsAccount   = "<Total>"
	DefaultRevaluedAccount = "<Revalued>"
	DefaultRoundingAccount = "<Adjustment>"
	DefaultEquityAccount   = "Equity:Opening Balances"
	DefaultEmptyAccount    = "<None>"
)

// DefaultRegisterFormat is the format of the register report.
const DefaultRegisterFormat = `%-10d %-20.20P %-23.23a %12t %12T\n`

// DefaultBalanceFormat is the format of the balance report.
const DefaultBalanceFormat = `%20T  %A\n`

func (c *Config) totalsAccount() string {
	if c.TotalsAccount == "" {
		return DefaultTotalsAccount
	}
	return c.TotalsAccount
}

func (c *Config) revaluedAccount() string {
	if c.RevaluedAccount == "" {
		return DefaultRevaluedAccount
	}
	return c.RevaluedAccount
}

func (c *Config) roundingAccount() string {
	if c.RoundingAccount == "" {
		return DefaultRoundingAccount
	}
	return c.RoundingAccount
}

func (c *Config) equityAccount() string {
	if c.EquityAccount == "" {
		return DefaultEquityAccount
	}
	return c.EquityAccount
}

func (c *Config) emptyAccount() string {
	if c.EmptyAccount == "" {
		return DefaultEmptyAccount
	}
	return c.EmptyAccount
}

func (c *Config) dateFormat() string {
	if c.DateFormat == "" {
		return "2006-01-02"
	}
	return c.DateFormat
}
