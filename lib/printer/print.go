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

// Package printer prints transactions in canonical journal form.
package printer

import (
	"fmt"
	"io"

	"github.com/drewr/ledger/lib/journal"
	"github.com/mattn/go-runewidth"
)

// Printer prints journal entries.
type Printer struct {
	w io.Writer

	// AccountWidth is the column the amount is aligned to.
	AccountWidth int
}

// New creates a printer on the writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w, AccountWidth: 34}
}

// PrintXact prints one transaction.
func (p *Printer) PrintXact(x *journal.Xact) error {
	header := x.Date.Format("2006-01-02")
	if !x.EffectiveDate.IsZero() {
		header += "=" + x.EffectiveDate.Format("2006-01-02")
	}
	if s := x.State.String(); s != "" {
		header += " " + s
	}
	if x.Code != "" {
		header += " (" + x.Code + ")"
	}
	header += " " + x.Payee
	if x.Note != "" {
		header += " ; " + x.Note
	}
	if _, err := fmt.Fprintln(p.w, header); err != nil {
		return err
	}
	for _, post := range x.Postings {
		if err := p.printPosting(post); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printPosting(post *journal.Posting) error {
	name := post.Account.FullName()
	switch {
	case post.Flags.Has(journal.MustBalance):
		name = "[" + name + "]"
	case post.Flags.Has(journal.Virtual):
		name = "(" + name + ")"
	}
	line := "    " + runewidth.FillRight(name, p.AccountWidth)
	line += "  " + post.Amount.String()
	if post.Cost != nil {
		line += " @@ " + post.Cost.Abs().String()
	}
	if post.Note != "" {
		line += " ; " + post.Note
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

// PrintJournal prints every transaction, separated by blank lines.
func (p *Printer) PrintJournal(j *journal.Journal) error {
	for i, x := range j.Xacts() {
		if i > 0 {
			if _, err := fmt.Fprintln(p.w); err != nil {
				return err
			}
		}
		if err := p.PrintXact(x); err != nil {
			return err
		}
	}
	return nil
}
