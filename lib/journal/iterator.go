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
	"github.com/drewr/ledger/lib/common/compare"
)

// PostsIterator is a lazy, finite, non-restartable enumeration of
// postings. Next returns nil when exhausted.
type PostsIterator interface {
	Next() *Posting
}

type slicePosts struct {
	posts []*Posting
	pos   int
}

func (it *slicePosts) Next() *Posting {
	if it.pos == len(it.posts) {
		return nil
	}
	p := it.posts[it.pos]
	it.pos++
	return p
}

// JournalPosts enumerates postings in document order.
func JournalPosts(j *Journal) PostsIterator {
	var posts []*Posting
	for _, x := range j.xacts {
		posts = append(posts, x.Postings...)
	}
	return &slicePosts{posts: posts}
}

// SortedPosts enumerates postings sorted by the given comparison,
// keeping document order for equal keys.
func SortedPosts(j *Journal, cmp compare.Compare[*Posting]) PostsIterator {
	it := JournalPosts(j).(*slicePosts)
	compare.StableSort(it.posts, cmp)
	return it
}

// AccountPosts enumerates postings grouped by account in tree order,
// sorted by date within each account.
func AccountPosts(j *Journal) PostsIterator {
	var posts []*Posting
	walkAccounts(j.root, func(a *Account) {
		group := append([]*Posting{}, a.Postings...)
		compare.StableSort(group, CompareByDate)
		posts = append(posts, group...)
	})
	return &slicePosts{posts: posts}
}

// AccountsIterator is a lazy enumeration of accounts. Next returns nil
// when exhausted.
type AccountsIterator interface {
	Next() *Account
}

type sliceAccounts struct {
	accounts []*Account
	pos      int
}

func (it *sliceAccounts) Next() *Account {
	if it.pos == len(it.accounts) {
		return nil
	}
	a := it.accounts[it.pos]
	it.pos++
	return a
}

// PreOrderAccounts enumerates accounts depth-first in pre-order,
// excluding the root.
func PreOrderAccounts(root *Account) AccountsIterator {
	it := new(sliceAccounts)
	walkAccounts(root, func(a *Account) {
		it.accounts = append(it.accounts, a)
	})
	return it
}

// SortedAccounts enumerates accounts pre-order, with siblings ordered
// by the given comparison.
func SortedAccounts(root *Account, cmp compare.Compare[*Account]) AccountsIterator {
	it := new(sliceAccounts)
	var walk func(a *Account)
	walk = func(a *Account) {
		children := a.Children()
		compare.StableSort(children, cmp)
		for _, child := range children {
			it.accounts = append(it.accounts, child)
			walk(child)
		}
	}
	walk(root)
	return it
}

func walkAccounts(a *Account, f func(*Account)) {
	for _, child := range a.Children() {
		f(child)
		walkAccounts(child, f)
	}
}
