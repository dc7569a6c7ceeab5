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

// Package filters implements the reporting pipeline: an ordered chain
// of handlers through which postings (or accounts) stream from a
// source iterator to a terminal formatter. Each stage owns the next
// one; flushing the head cascades down the chain.
package filters

import (
	"fmt"

	"github.com/drewr/ledger/lib/journal"
)

// PostHandler is one stage of the posting pipeline.
type PostHandler interface {
	Push(p *journal.Posting) error
	Flush() error
	Title(t string) error
}

// AccountHandler is one stage of the account pipeline.
type AccountHandler interface {
	Push(a *journal.Account) error
	Flush() error
	Title(t string) error
}

// nextHandler provides the pass-through behaviour stages embed.
type nextHandler struct {
	next PostHandler
}

func (h nextHandler) forward(p *journal.Posting) error {
	return h.next.Push(p)
}

func (h nextHandler) Flush() error {
	return h.next.Flush()
}

func (h nextHandler) Title(t string) error {
	return h.next.Title(t)
}

// ErrorContext wraps an error with a description of the item (posting
// or account) being processed when it occurred; the expression text and
// format position are not recorded. The driver presents the context
// chain to the user.
type ErrorContext struct {
	Err     error
	Context string
}

func (e ErrorContext) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e ErrorContext) Unwrap() error {
	return e.Err
}

// WithPostContext wraps err with a description of the posting.
func WithPostContext(err error, p *journal.Posting) error {
	return ErrorContext{
		Err: err,
		Context: fmt.Sprintf("while handling posting %s %s %s",
			p.Date().Format("2006-01-02"), p.Payee(), p.ReportedAccount().FullName()),
	}
}

// WithAccountContext wraps err with a description of the account.
func WithAccountContext(err error, a *journal.Account) error {
	return ErrorContext{
		Err:     err,
		Context: fmt.Sprintf("while handling account %s", a.FullName()),
	}
}

// CollectPosts is a terminal handler collecting postings and titles,
// used by drivers and tests.
type CollectPosts struct {
	Posts   []*journal.Posting
	Titles  []string
	Flushed bool
}

// NewCollectPosts creates the sink.
func NewCollectPosts() *CollectPosts {
	return &CollectPosts{}
}

func (c *CollectPosts) Push(p *journal.Posting) error {
	c.Posts = append(c.Posts, p)
	return nil
}

func (c *CollectPosts) Flush() error {
	c.Flushed = true
	return nil
}

func (c *CollectPosts) Title(t string) error {
	c.Titles = append(c.Titles, t)
	return nil
}

// PassDownPosts drains the iterator into the handler and flushes it.
// Exhausting the iterator triggers the flush; on error no flush is
// performed.
func PassDownPosts(h PostHandler, it journal.PostsIterator) error {
	for p := it.Next(); p != nil; p = it.Next() {
		if err := h.Push(p); err != nil {
			return WithPostContext(err, p)
		}
	}
	return h.Flush()
}

// PassDownAccounts drains the iterator into the handler and flushes
// it.
func PassDownAccounts(h AccountHandler, it journal.AccountsIterator) error {
	for a := it.Next(); a != nil; a = it.Next() {
		if err := h.Push(a); err != nil {
			return WithAccountContext(err, a)
		}
	}
	return h.Flush()
}
