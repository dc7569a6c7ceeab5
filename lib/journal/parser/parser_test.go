// Copyright 2021 Silvio Böhler
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

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `; a comment
2024-01-02 * (42) Grocer ; weekly shop
    Expenses:Food                       10.00 USD ; food note
    Assets:Cash

2024-01-05 ! Landlord
    Expenses:Rent                      100.00 USD
    Assets:Bank:Checking              -100.00 USD

account Assets:Cash ; petty cash

P 2024-01-01 EUR 1.10 USD

~ monthly from 2024-01-01
    Expenses:Rent                      100.00 USD
    Assets:Bank:Checking
`

func TestParseText(t *testing.T) {
	j, err := ParseText(sample, "test.ledger")
	require.NoError(t, err)

	xacts := j.Xacts()
	require.Len(t, xacts, 2)

	first := xacts[0]
	assert.Equal(t, date.Date(2024, 1, 2), first.Date)
	assert.Equal(t, journal.Cleared, first.State)
	assert.Equal(t, "42", first.Code)
	assert.Equal(t, "Grocer", first.Payee)
	assert.Equal(t, "weekly shop", first.Note)
	require.Len(t, first.Postings, 2)
	assert.Equal(t, "Expenses:Food", first.Postings[0].Account.FullName())
	assert.Equal(t, "10 USD", first.Postings[0].Amount.Number.String()+" "+first.Postings[0].Amount.Commodity.Name())
	assert.Equal(t, "food note", first.Postings[0].Note)

	// The elided posting takes the negated remainder.
	elided := first.Postings[1]
	assert.Equal(t, "Assets:Cash", elided.Account.FullName())
	assert.True(t, elided.Flags.Has(journal.Calculated))
	assert.Equal(t, "-10", elided.Amount.Number.String())

	assert.Equal(t, journal.Pending, xacts[1].State)

	assert.Equal(t, "petty cash", j.FindAccount("Assets:Cash", false).Note)

	require.Len(t, j.Prices, 1)
	assert.Equal(t, "EUR", j.Prices[0].Commodity.Name())
	assert.Equal(t, "USD", j.Prices[0].Price.Commodity.Name())

	require.Len(t, j.PeriodXacts, 1)
	px := j.PeriodXacts[0]
	assert.Equal(t, date.Monthly, px.Period.Duration)
	assert.Equal(t, date.Date(2024, 1, 1), px.Period.Begin)
	require.Len(t, px.Xact.Postings, 2)
}

func TestBalancePreserved(t *testing.T) {
	j, err := ParseText(sample, "test.ledger")
	require.NoError(t, err)
	for _, x := range j.Xacts() {
		assert.True(t, x.Magnitude().IsZero(), "transaction %q does not balance", x.Payee)
	}
}

func TestUnbalanced(t *testing.T) {
	_, err := ParseText(`2024-01-02 Grocer
    Expenses:Food    10.00 USD
    Assets:Cash      -9.00 USD
`, "test.ledger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not balance")
}

func TestCostBalancing(t *testing.T) {
	j, err := ParseText(`2024-01-02 Exchange
    Assets:EUR        10.00 EUR @ 1.10 USD
    Assets:USD       -11.00 USD
`, "test.ledger")
	require.NoError(t, err)
	x := j.Xacts()[0]
	require.Len(t, x.Postings, 2)
	require.NotNil(t, x.Postings[0].Cost)
	assert.Equal(t, "11", x.Postings[0].Cost.Number.String())
	assert.True(t, x.Magnitude().IsZero())
}

func TestVirtualPostings(t *testing.T) {
	j, err := ParseText(`2024-01-02 Payday
    Assets:Bank       100.00 USD
    Income:Salary    -100.00 USD
    (Budget:Fun)       20.00 USD
`, "test.ledger")
	require.NoError(t, err)
	x := j.Xacts()[0]
	require.Len(t, x.Postings, 3)
	assert.True(t, x.Postings[2].Flags.Has(journal.Virtual))
	assert.True(t, x.Magnitude().IsZero(), "virtual postings must not affect the balance")
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.ledger")
	require.NoError(t, os.WriteFile(main, []byte("include sub.ledger\n2024-01-05 Two\n    A:B    1.00 USD\n    C:D   -1.00 USD\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub.ledger"), []byte("2024-01-02 One\n    A:B    2.00 USD\n    C:D   -2.00 USD\n"), 0644))
	j, err := Parse(main)
	require.NoError(t, err)
	xacts := j.Xacts()
	require.Len(t, xacts, 2)
	// Transactions are restored to date order after concurrent
	// parsing.
	assert.Equal(t, "One", xacts[0].Payee)
	assert.Equal(t, "Two", xacts[1].Payee)
}
