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
	"testing"

	"github.com/drewr/ledger/lib/amount"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestAccountTree(t *testing.T) {
	j := New()
	food := j.FindAccount("Expenses:Food:Groceries", true)
	if got := food.FullName(); got != "Expenses:Food:Groceries" {
		t.Errorf("got %q, want %q", got, "Expenses:Food:Groceries")
	}
	if got := food.Name(); got != "Groceries" {
		t.Errorf("got %q, want %q", got, "Groceries")
	}
	if got := food.Depth(); got != 3 {
		t.Errorf("got depth %d, want 3", got)
	}
	if got := food.Parent().Depth(); got != 2 {
		t.Errorf("parent depth: got %d, want 2", got)
	}
	if j.Root().Depth() != 0 || j.Root().Name() != "" {
		t.Error("the root must have depth 0 and an empty name")
	}
	// Lookup without create must not mutate the tree.
	if j.FindAccount("Expenses:Travel", false) != nil {
		t.Error("expected a nil result for a missing account")
	}
	if j.FindAccount("Expenses", false).Find("Travel", false) != nil {
		t.Error("lookup must not create accounts")
	}
	// Finding again returns the identical node.
	if j.FindAccount("Expenses:Food:Groceries", true) != food {
		t.Error("expected the identical account node")
	}
}

func TestDepthInvariant(t *testing.T) {
	j := New()
	j.FindAccount("A:B:C:D", true)
	var walk func(a *Account)
	walk = func(a *Account) {
		for _, child := range a.Children() {
			if child.Depth() != a.Depth()+1 {
				t.Errorf("depth(%s) = %d, want %d", child.FullName(), child.Depth(), a.Depth()+1)
			}
			walk(child)
		}
	}
	walk(j.Root())
}

func TestPreOrderAccounts(t *testing.T) {
	j := New()
	j.FindAccount("Expenses:Food", true)
	j.FindAccount("Assets:Cash", true)
	j.FindAccount("Expenses:Rent", true)
	var names []string
	for it := PreOrderAccounts(j.Root()); ; {
		a := it.Next()
		if a == nil {
			break
		}
		names = append(names, a.FullName())
	}
	want := []string{"Assets", "Assets:Cash", "Expenses", "Expenses:Food", "Expenses:Rent"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestJournalPostsOrder(t *testing.T) {
	j := New()
	usd := j.Registry.MustGet("USD")
	for day := 1; day <= 3; day++ {
		x := &Xact{Date: date.Date(2024, 1, day), Payee: "P"}
		x.AddPosting(&Posting{
			Account: j.FindAccount("Expenses", true),
			Amount:  amount.New(decimal.NewFromInt(int64(day)), usd),
		})
		x.AddPosting(&Posting{
			Account: j.FindAccount("Assets", true),
			Amount:  amount.New(decimal.NewFromInt(int64(-day)), usd),
		})
		j.AddXact(x)
	}
	it := JournalPosts(j)
	var count int
	var last *Posting
	for p := it.Next(); p != nil; p = it.Next() {
		count++
		if last != nil && last.Xact.Date.After(p.Xact.Date) {
			t.Error("document order violated")
		}
		last = p
	}
	if count != 6 {
		t.Errorf("got %d postings, want 6", count)
	}
	// The iterator is not restartable.
	if it.Next() != nil {
		t.Error("expected an exhausted iterator to stay exhausted")
	}
}

func TestSortedPosts(t *testing.T) {
	j := New()
	usd := j.Registry.MustGet("USD")
	for _, day := range []int{3, 1, 2} {
		x := &Xact{Date: date.Date(2024, 1, day), Payee: "P"}
		x.AddPosting(&Posting{
			Account: j.FindAccount("Expenses", true),
			Amount:  amount.New(decimal.NewFromInt(1), usd),
		})
		x.AddPosting(&Posting{
			Account: j.FindAccount("Assets", true),
			Amount:  amount.New(decimal.NewFromInt(-1), usd),
		})
		j.AddXact(x)
	}
	it := SortedPosts(j, CompareByDate)
	var days []int
	for p := it.Next(); p != nil; p = it.Next() {
		days = append(days, p.Date().Day())
	}
	if diff := cmp.Diff([]int{1, 1, 2, 2, 3, 3}, days); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestAccountPosts(t *testing.T) {
	j := New()
	usd := j.Registry.MustGet("USD")
	for _, day := range []int{2, 1} {
		x := &Xact{Date: date.Date(2024, 1, day), Payee: "P"}
		x.AddPosting(&Posting{
			Account: j.FindAccount("Expenses", true),
			Amount:  amount.New(decimal.NewFromInt(1), usd),
		})
		x.AddPosting(&Posting{
			Account: j.FindAccount("Assets", true),
			Amount:  amount.New(decimal.NewFromInt(-1), usd),
		})
		j.AddXact(x)
	}
	it := AccountPosts(j)
	var got []string
	for p := it.Next(); p != nil; p = it.Next() {
		got = append(got, p.Account.FullName()+"/"+p.Date().Format("01-02"))
	}
	want := []string{"Assets/01-01", "Assets/01-02", "Expenses/01-01", "Expenses/01-02"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestXDataLazy(t *testing.T) {
	j := New()
	x := &Xact{Date: date.Date(2024, 1, 1), Payee: "P"}
	p := &Posting{Account: j.FindAccount("Expenses", true)}
	x.AddPosting(p)
	j.AddXact(x)
	if p.HasXData() {
		t.Error("expected no xdata before first use")
	}
	p.XData().Count = 7
	if !p.HasXData() {
		t.Error("expected xdata after first use")
	}
	j.ClearXData()
	if p.HasXData() {
		t.Error("expected xdata to be discarded")
	}
}

func TestPostingDateOverride(t *testing.T) {
	j := New()
	x := &Xact{Date: date.Date(2024, 1, 1), Payee: "P"}
	p := &Posting{Account: j.FindAccount("Expenses", true)}
	x.AddPosting(p)
	j.AddXact(x)
	if p.Date() != date.Date(2024, 1, 1) {
		t.Error("expected the transaction date")
	}
	p.XData().Date = date.Date(2024, 2, 2)
	if p.Date() != date.Date(2024, 2, 2) {
		t.Error("expected the overridden date")
	}
}
