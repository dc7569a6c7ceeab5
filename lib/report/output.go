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
	"io"
	"strings"

	"github.com/drewr/ledger/lib/expr/scope"
	"github.com/drewr/ledger/lib/filters"
	"github.com/drewr/ledger/lib/format"
	"github.com/drewr/ledger/lib/journal"
)

// FormatPosts is the terminal posting handler: it renders each posting
// through the format engine and writes the result to the sink.
type FormatPosts struct {
	w       io.Writer
	format  *format.Format
	scope   scope.Scope
	columns int
}

// NewFormatPosts creates the formatter. A nonzero columns bounds the
// width of each output line.
func NewFormatPosts(w io.Writer, f *format.Format, outer scope.Scope, columns int) *FormatPosts {
	return &FormatPosts{w: w, format: f, scope: outer, columns: columns}
}

func (f *FormatPosts) Push(p *journal.Posting) error {
	line, err := f.format.Render(scope.BindPost(f.scope, p))
	if err != nil {
		return filters.WithPostContext(err, p)
	}
	_, err = io.WriteString(f.w, clipLines(line, f.columns))
	return err
}

func (f *FormatPosts) Flush() error {
	return nil
}

func (f *FormatPosts) Title(t string) error {
	_, err := io.WriteString(f.w, t+"\n")
	return err
}

// FormatAccounts is the terminal account handler.
type FormatAccounts struct {
	w       io.Writer
	format  *format.Format
	scope   scope.Scope
	columns int
}

// NewFormatAccounts creates the formatter.
func NewFormatAccounts(w io.Writer, f *format.Format, outer scope.Scope, columns int) *FormatAccounts {
	return &FormatAccounts{w: w, format: f, scope: outer, columns: columns}
}

func (f *FormatAccounts) Push(a *journal.Account) error {
	line, err := f.format.Render(scope.BindAccount(f.scope, a))
	if err != nil {
		return filters.WithAccountContext(err, a)
	}
	_, err = io.WriteString(f.w, clipLines(line, f.columns))
	return err
}

func (f *FormatAccounts) Flush() error {
	return nil
}

func (f *FormatAccounts) Title(t string) error {
	_, err := io.WriteString(f.w, t+"\n")
	return err
}

// clipLines truncates each line to the given width in code points,
// honouring the COLUMNS convention.
func clipLines(text string, columns int) string {
	if columns <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if runes := []rune(line); len(runes) > columns {
			lines[i] = string(runes[:columns])
		}
	}
	return strings.Join(lines, "\n")
}
