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
	"testing"
	"time"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/expr"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/model/commodity"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestBudgetPosts(t *testing.T) {
	j := mustParseJournal(t, `~ monthly from 2024-01-01
    Expenses:Rent    100.00 USD
    Assets:Bank

2024-02-15 Landlord
    Expenses:Rent    100.00 USD
    Assets:Bank
`)
	pred, err := expr.Parse("//Expenses/")
	if err != nil {
		t.Fatalf("parsing predicate: %v", err)
	}
	sink := NewCollectPosts()
	rs := reportScope(j)
	budget, err := NewBudgetPosts(sink, BudgetBudgeted, j.PeriodXacts)
	if err != nil {
		t.Fatalf("creating budget stage: %v", err)
	}
	runChain(t, j, NewFilterPosts(budget, pred, rs))
	if len(sink.Posts) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(sink.Posts))
	}
	generated := sink.Posts[0]
	if generated.Payee() != "Budget transaction" {
		t.Errorf("got payee %q, want %q", generated.Payee(), "Budget transaction")
	}
	if generated.Date() != date.Date(2024, 1, 1) {
		t.Errorf("got date %v, want 2024-01-01", generated.Date())
	}
	if got := generated.Amount.String(); got != "-100.00 USD" {
		t.Errorf("got amount %q, want %q", got, "-100.00 USD")
	}
	if !generated.Flags.Has(journal.Generated) {
		t.Error("expected the budget posting to carry the generated flag")
	}
	if sink.Posts[1].Payee() != "Landlord" {
		t.Errorf("got payee %q, want %q", sink.Posts[1].Payee(), "Landlord")
	}
}

func TestBudgetRequiresStart(t *testing.T) {
	j := mustParseJournal(t, `~ monthly
    Expenses:Rent    100.00 USD
    Assets:Bank
`)
	if _, err := NewBudgetPosts(NewCollectPosts(), BudgetBudgeted, j.PeriodXacts); err == nil {
		t.Fatal("expected an error for a budget period without a start date")
	} else if got := err.Error(); got != `budget period "monthly" has no start date` {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestBudgetUnbudgeted(t *testing.T) {
	j := mustParseJournal(t, `~ monthly from 2024-01-01
    Expenses:Rent    100.00 USD
    Assets:Bank

2024-01-15 Grocer
    Expenses:Food     10.00 USD
    Assets:Cash
`)
	pred, err := expr.Parse("//Expenses/")
	if err != nil {
		t.Fatalf("parsing predicate: %v", err)
	}
	sink := NewCollectPosts()
	rs := reportScope(j)
	budget, err := NewBudgetPosts(sink, BudgetUnbudgeted, j.PeriodXacts)
	if err != nil {
		t.Fatalf("creating budget stage: %v", err)
	}
	runChain(t, j, NewFilterPosts(budget, pred, rs))
	if diff := cmp.Diff([]string{"Grocer"}, payees(sink.Posts)); diff != "" {
		t.Errorf("unexpected postings (-want +got):\n%s", diff)
	}
}

func TestForecastPosts(t *testing.T) {
	// A monthly schedule forecast from 2024-01-15 emits February and
	// March, then the predicate rejects April.
	j := mustParseJournal(t, `~ monthly
    Expenses:Rent    1000.00 USD
    Assets:Bank
`)
	pred, err := expr.Parse("d < [2024-04-01]")
	if err != nil {
		t.Fatalf("parsing predicate: %v", err)
	}
	sink := NewCollectPosts()
	rs := reportScope(j)
	rs.CurrentDate = date.Date(2024, 1, 15)
	runChain(t, j, NewForecastPosts(sink, pred, rs, j.PeriodXacts))
	// The bank posting has no amount, so only the rent posting is
	// emitted for each period.
	var dates []time.Time
	for _, p := range sink.Posts {
		if p.Account.FullName() == "Expenses:Rent" {
			dates = append(dates, p.Date())
		}
	}
	want := []time.Time{date.Date(2024, 2, 1), date.Date(2024, 3, 1)}
	if diff := cmp.Diff(want, dates); diff != "" {
		t.Errorf("unexpected forecast dates (-want +got):\n%s", diff)
	}
	for _, p := range sink.Posts {
		if !p.Flags.Has(journal.Generated) {
			t.Error("expected forecast postings to carry the generated flag")
		}
	}
}

func TestChangedValuePosts(t *testing.T) {
	// A lot bought at 1.10 USD and repriced to 1.20 USD yields a
	// revaluation posting of 0.10 USD before the second posting.
	j := mustParseJournal(t, `2024-01-01 Buy
    Assets:EUR         1.00 EUR @ 1.10 USD
    Assets:USD        -1.10 USD

2024-06-01 Mark
    Assets:EUR         1.00 EUR @ 1.20 USD
    Assets:USD        -1.20 USD
`)
	pred, err := expr.Parse("//Assets:EUR/")
	if err != nil {
		t.Fatalf("parsing predicate: %v", err)
	}
	rs := reportScope(j)
	rs.Prices = testPrices{
		c: j.Registry.MustGet("EUR"),
		prices: map[time.Time]amount.Amount{
			date.Date(2024, 1, 1): amount.New(decimalFromString(t, "1.10"), j.Registry.MustGet("USD")),
			date.Date(2024, 6, 1): amount.New(decimalFromString(t, "1.20"), j.Registry.MustGet("USD")),
		},
	}
	revalued := j.FindAccount("<Revalued>", true)
	sink := NewCollectPosts()
	changed := NewChangedValuePosts(sink, rs, revalued, nil)
	runChain(t, j, NewFilterPosts(NewCalcPosts(changed, false), pred, rs))
	if len(sink.Posts) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(sink.Posts))
	}
	reval := sink.Posts[1]
	if reval.Payee() != "Commodities revalued" {
		t.Errorf("got payee %q, want %q", reval.Payee(), "Commodities revalued")
	}
	if got := reval.Amount.String(); got != "0.10 USD" {
		t.Errorf("got amount %q, want %q", got, "0.10 USD")
	}
	if reval.Date() != date.Date(2024, 6, 1) {
		t.Errorf("got date %v, want 2024-06-01", reval.Date())
	}
}

func TestPostsAsEquity(t *testing.T) {
	j := mustParseJournal(t, `2024-01-02 One
    Expenses:Food    10.00 USD
    Assets:Cash

2024-03-04 Two
    Expenses:Rent    20.00 USD
    Assets:Cash
`)
	equity := j.FindAccount("Equity:Opening Balances", true)
	sink := NewCollectPosts()
	runChain(t, j, NewPostsAsEquity(sink, equity))
	if len(sink.Posts) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(sink.Posts))
	}
	x := sink.Posts[0].Xact
	if x.Payee != "Opening Balances" {
		t.Errorf("got payee %q, want %q", x.Payee, "Opening Balances")
	}
	if x.Date != date.Date(2024, 3, 4) {
		t.Errorf("got date %v, want 2024-03-04", x.Date)
	}
	// Accounts sum to zero, so no balancing equity posting is needed;
	// the cash total offsets the expenses.
	sums := sumByAccount(t, sink.Posts)
	if got := sums["Assets:Cash"]; got != "-30.00 USD" {
		t.Errorf("Assets:Cash: got %q, want %q", got, "-30.00 USD")
	}
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

type testPrices struct {
	c      *commodity.Commodity
	prices map[time.Time]amount.Amount
}

func (tp testPrices) ValueAt(c *commodity.Commodity, t time.Time) (amount.Amount, bool) {
	if c != tp.c {
		return amount.Amount{}, false
	}
	var (
		best  time.Time
		price amount.Amount
		found bool
	)
	for d, p := range tp.prices {
		if !d.After(t) && (best.IsZero() || d.After(best)) {
			best, price, found = d, p, true
		}
	}
	return price, found
}
