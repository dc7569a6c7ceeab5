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
	"time"

	"github.com/drewr/ledger/lib/common/compare"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/drewr/ledger/lib/common/dict"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/value"
)

// SubtotalPosts accumulates one value per account and, on flush or at
// a group boundary, emits one synthetic posting per distinct account,
// dated at the group's latest posting and with the payee set to the
// formatted group date.
type SubtotalPosts struct {
	nextHandler
	DateFormat string

	temps      temps
	values     map[string]*subtotalValue
	start, end time.Time
}

type subtotalValue struct {
	account *journal.Account
	value   value.Value
}

// NewSubtotalPosts creates the stage.
func NewSubtotalPosts(next PostHandler, dateFormat string) *SubtotalPosts {
	return &SubtotalPosts{
		nextHandler: nextHandler{next},
		DateFormat:  dateFormat,
		values:      make(map[string]*subtotalValue),
	}
}

func (s *SubtotalPosts) Push(p *journal.Posting) error {
	d := p.Date()
	if s.start.IsZero() || d.Before(s.start) {
		s.start = d
	}
	if s.end.IsZero() || d.After(s.end) {
		s.end = d
	}
	acct := p.ReportedAccount()
	sv := dict.GetDefault(s.values, acct.FullName(), func() *subtotalValue {
		return &subtotalValue{account: acct}
	})
	sum, err := value.Add(sv.value, p.DisplayAmount())
	if err != nil {
		return WithPostContext(err, p)
	}
	sv.value = sum
	return nil
}

// ReportSubtotal emits the accumulated group and resets the stage.
func (s *SubtotalPosts) ReportSubtotal() error {
	return s.reportSubtotalAs("", time.Time{})
}

// reportSubtotalAs emits the group with an explicit payee or group
// date, used by the interval stage for empty periods.
func (s *SubtotalPosts) reportSubtotalAs(payee string, groupDate time.Time) error {
	if len(s.values) == 0 {
		return nil
	}
	if groupDate.IsZero() {
		groupDate = s.end
	}
	layout := s.DateFormat
	if layout == "" {
		layout = "2006-01-02"
	}
	if payee == "" {
		payee = "- " + groupDate.Format(layout)
	}
	xact := s.temps.newXact(groupDate, payee)
	for _, name := range dict.SortedKeys(s.values, compare.Ordered[string]) {
		sv := s.values[name]
		p := s.temps.newPost(xact, sv.account, amountOf(sv.value))
		p.Flags |= journal.Calculated
		if _, err := sv.value.AsAmount(); err != nil {
			p.XData().Value = sv.value
		}
		if err := s.forward(p); err != nil {
			return err
		}
	}
	s.values = make(map[string]*subtotalValue)
	s.start, s.end = time.Time{}, time.Time{}
	return nil
}

func (s *SubtotalPosts) Flush() error {
	if err := s.ReportSubtotal(); err != nil {
		return err
	}
	return s.next.Flush()
}

// IntervalPosts routes each posting to its containing period and
// reports a subtotal whenever the period changes. With GenerateEmpty,
// zero-valued placeholder postings are emitted for intervening periods
// without activity.
type IntervalPosts struct {
	*SubtotalPosts
	Interval      *date.DateInterval
	GenerateEmpty bool
	EmptyAccount  *journal.Account
}

// NewIntervalPosts creates the stage. The empty account is used for
// generated placeholder postings.
func NewIntervalPosts(next PostHandler, interval *date.DateInterval, generateEmpty bool, empty *journal.Account, dateFormat string) *IntervalPosts {
	return &IntervalPosts{
		SubtotalPosts: NewSubtotalPosts(next, dateFormat),
		Interval:      interval,
		GenerateEmpty: generateEmpty,
		EmptyAccount:  empty,
	}
}

func (ip *IntervalPosts) Push(p *journal.Posting) error {
	d := p.Date()
	if !ip.Interval.Valid() {
		if !ip.Interval.FindPeriod(d) {
			return nil
		}
		return ip.SubtotalPosts.Push(p)
	}
	for !ip.Interval.Contains(d) {
		if d.Before(ip.Interval.Start) {
			// Out-of-order posting before the current period; count
			// it towards the period in progress.
			return ip.SubtotalPosts.Push(p)
		}
		if err := ip.closePeriod(); err != nil {
			return err
		}
		ip.Interval.Advance()
		if ip.GenerateEmpty && !ip.Interval.Contains(d) {
			zero := ip.temps.newXact(ip.Interval.InclusiveEnd(), "")
			placeholder := ip.temps.newPost(zero, ip.EmptyAccount, zeroAmount())
			if err := ip.SubtotalPosts.Push(placeholder); err != nil {
				return err
			}
		}
	}
	return ip.SubtotalPosts.Push(p)
}

// closePeriod reports the subtotal of the period being closed, labelled
// with the period's dates when it contains only placeholders.
func (ip *IntervalPosts) closePeriod() error {
	if ip.end.IsZero() {
		return ip.reportSubtotalAs("- "+ip.Interval.InclusiveEnd().Format(dateLayout(ip.DateFormat)), ip.Interval.InclusiveEnd())
	}
	return ip.ReportSubtotal()
}

func (ip *IntervalPosts) Flush() error {
	if err := ip.closePeriod(); err != nil {
		return err
	}
	return ip.next.Flush()
}

func dateLayout(layout string) string {
	if layout == "" {
		return "2006-01-02"
	}
	return layout
}

// ByPayeePosts partitions postings by payee, keeping one nested
// subtotal per payee, and flushes each group with the payee as title.
type ByPayeePosts struct {
	nextHandler
	DateFormat string

	groups map[string]*SubtotalPosts
}

// NewByPayeePosts creates the stage.
func NewByPayeePosts(next PostHandler, dateFormat string) *ByPayeePosts {
	return &ByPayeePosts{
		nextHandler: nextHandler{next},
		DateFormat:  dateFormat,
		groups:      make(map[string]*SubtotalPosts),
	}
}

func (b *ByPayeePosts) Push(p *journal.Posting) error {
	group := dict.GetDefault(b.groups, p.Payee(), func() *SubtotalPosts {
		return NewSubtotalPosts(b.next, b.DateFormat)
	})
	return group.Push(p)
}

func (b *ByPayeePosts) Flush() error {
	for _, payee := range dict.SortedKeys(b.groups, compare.Ordered[string]) {
		if err := b.next.Title(payee); err != nil {
			return err
		}
		if err := b.groups[payee].ReportSubtotal(); err != nil {
			return err
		}
	}
	b.groups = make(map[string]*SubtotalPosts)
	return b.next.Flush()
}

// DowPosts partitions postings into seven weekday buckets and, on
// flush, emits one subtotal per weekday labelled by its name.
type DowPosts struct {
	nextHandler
	DateFormat string

	buckets [7][]*journal.Posting
}

// NewDowPosts creates the stage.
func NewDowPosts(next PostHandler, dateFormat string) *DowPosts {
	return &DowPosts{nextHandler: nextHandler{next}, DateFormat: dateFormat}
}

func (d *DowPosts) Push(p *journal.Posting) error {
	dow := int(p.Date().Weekday())
	d.buckets[dow] = append(d.buckets[dow], p)
	return nil
}

func (d *DowPosts) Flush() error {
	for dow := time.Sunday; dow <= time.Saturday; dow++ {
		posts := d.buckets[dow]
		if len(posts) == 0 {
			continue
		}
		if err := d.next.Title(dow.String()); err != nil {
			return err
		}
		group := NewSubtotalPosts(d.next, d.DateFormat)
		for _, p := range posts {
			if err := group.Push(p); err != nil {
				return err
			}
		}
		if err := group.ReportSubtotal(); err != nil {
			return err
		}
		d.buckets[dow] = nil
	}
	return d.next.Flush()
}
