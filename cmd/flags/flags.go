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

// Package flags holds the shared report flags and custom flag types.
package flags

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/drewr/ledger/lib/common/regex"
	"github.com/drewr/ledger/lib/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DateFlag parses a date flag value.
type DateFlag struct {
	date time.Time
}

var _ pflag.Value = (*DateFlag)(nil)

// Value returns the date.
func (df *DateFlag) Value() time.Time {
	return df.date
}

func (df *DateFlag) String() string {
	if df.date.IsZero() {
		return ""
	}
	return df.date.Format("2006-01-02")
}

// Set implements pflag.Value.
func (df *DateFlag) Set(v string) error {
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", v, err)
	}
	df.date = d
	return nil
}

// Type implements pflag.Value.
func (df *DateFlag) Type() string {
	return "date"
}

// RegexFlag accumulates regexes from a repeatable flag.
type RegexFlag struct {
	rxs regex.Regexes
}

var _ pflag.Value = (*RegexFlag)(nil)

func (rf RegexFlag) String() string {
	var ss []string
	for _, r := range rf.rxs {
		ss = append(ss, r.String())
	}
	return strings.Join(ss, ",")
}

// Set implements pflag.Value.
func (rf *RegexFlag) Set(v string) error {
	t, err := regexp.Compile(v)
	if err != nil {
		return err
	}
	rf.rxs.Add(t)
	return nil
}

// Type implements pflag.Value.
func (rf RegexFlag) Type() string {
	return "<regex>"
}

// Value returns the accumulated regexes.
func (rf *RegexFlag) Value() regex.Regexes {
	return rf.rxs
}

// ReportFlags are the options shared by the reporting commands.
type ReportFlags struct {
	head, tail             int
	sort                   string
	limit, display         string
	subtotal               bool
	period                 string
	emptyPeriods           bool
	byPayee, byDow         bool
	collapse, collapseZero bool
	related, relatedAll    bool
	forecast               string
	anonymize              bool
	market                 bool
	round                  bool
	revaluedAccount        string
	roundingAccount        string
	totalsAccount          string
	amountExpr, totalExpr  string
	format, dateFormat     string
	abbrevLen              int
	currentDate            DateFlag
	color                  bool
	accounts, payeesMatch  RegexFlag

	// PriceDB is the path of the YAML price database.
	PriceDB string
	// Output writes the report to a file instead of stdout.
	Output string
}

// Setup registers the flags on the command.
func (rf *ReportFlags) Setup(c *cobra.Command) {
	c.Flags().IntVar(&rf.head, "head", 0, "show only the first n transactions")
	c.Flags().IntVar(&rf.tail, "tail", 0, "show only the last n transactions")
	c.Flags().StringVarP(&rf.sort, "sort", "S", "", "sort postings by this value expression")
	c.Flags().StringVarP(&rf.limit, "limit", "l", "", "limit postings with this value expression")
	c.Flags().StringVarP(&rf.display, "display", "d", "", "display only postings matching this value expression")
	c.Flags().BoolVarP(&rf.subtotal, "subtotal", "s", false, "subtotal postings per account")
	c.Flags().StringVarP(&rf.period, "period", "p", "", "group postings by period, e.g. 'monthly'")
	c.Flags().BoolVarP(&rf.emptyPeriods, "empty", "E", false, "show periods with no activity")
	c.Flags().BoolVarP(&rf.byPayee, "by-payee", "P", false, "group postings by payee")
	c.Flags().BoolVarP(&rf.byDow, "days-of-week", "D", false, "group postings by day of week")
	c.Flags().BoolVarP(&rf.collapse, "collapse", "n", false, "collapse transactions to one posting")
	c.Flags().BoolVar(&rf.collapseZero, "collapse-if-zero", false, "collapse only balanced transactions")
	c.Flags().BoolVarP(&rf.related, "related", "r", false, "show the related postings instead")
	c.Flags().BoolVar(&rf.relatedAll, "related-all", false, "show all postings of matching transactions")
	c.Flags().StringVar(&rf.forecast, "forecast", "", "forecast while this value expression holds")
	c.Flags().BoolVar(&rf.anonymize, "anon", false, "anonymize payees and accounts")
	c.Flags().BoolVarP(&rf.market, "market", "V", false, "report changed market values")
	c.Flags().BoolVar(&rf.round, "round", false, "round displayed amounts to display precision")
	c.Flags().StringVar(&rf.revaluedAccount, "revalued-account", "", "account for revaluation postings")
	c.Flags().StringVar(&rf.roundingAccount, "rounding-account", "", "account for rounding postings")
	c.Flags().StringVar(&rf.totalsAccount, "totals-account", "", "account for collapsed totals")
	c.Flags().StringVarP(&rf.amountExpr, "amount", "t", "", "value expression for displayed amounts")
	c.Flags().StringVarP(&rf.totalExpr, "total", "T", "", "value expression for displayed totals")
	c.Flags().StringVarP(&rf.format, "format", "F", "", "output format string")
	c.Flags().StringVarP(&rf.dateFormat, "date-format", "y", "", "date layout for output")
	c.Flags().IntVar(&rf.abbrevLen, "abbrev-len", 2, "segment length when abbreviating accounts")
	c.Flags().Var(&rf.currentDate, "now", "set the current date")
	c.Flags().Var(&rf.accounts, "account", "filter accounts with a regex")
	c.Flags().Var(&rf.payeesMatch, "payee", "filter payees with a regex")
	c.Flags().BoolVar(&rf.color, "color", true, "print output in color")
	c.Flags().StringVar(&rf.PriceDB, "price-db", os.Getenv("LEDGER_PRICE_DB"), "path of the price database")
	c.Flags().StringVarP(&rf.Output, "output", "o", "", "write output to this file")
}

// Config converts the flags into a report configuration.
func (rf *ReportFlags) Config() report.Config {
	cfg := report.Config{
		HeadCount:         rf.head,
		TailCount:         rf.tail,
		SortOrder:         rf.sort,
		Predicate:         rf.limit,
		DisplayPredicate:  rf.display,
		Subtotal:          rf.subtotal,
		Interval:          rf.period,
		GenerateEmpty:     rf.emptyPeriods,
		ByPayee:           rf.byPayee,
		ByDow:             rf.byDow,
		Collapse:          rf.collapse,
		CollapseIfZero:    rf.collapseZero,
		Related:           rf.related,
		RelatedAll:        rf.relatedAll,
		ForecastPredicate: rf.forecast,
		Anonymize:         rf.anonymize,
		ChangedValues:     rf.market,
		Round:             rf.round,
		RevaluedAccount:   rf.revaluedAccount,
		RoundingAccount:   rf.roundingAccount,
		TotalsAccount:     rf.totalsAccount,
		AmountExpr:        rf.amountExpr,
		TotalExpr:         rf.totalExpr,
		Format:            rf.format,
		DateFormat:        rf.dateFormat,
		AccountAbbrevLen:  rf.abbrevLen,
		CurrentDate:       rf.currentDate.Value(),
		Color:             rf.color,
		AccountRegexes:    rf.accounts.Value(),
		PayeeRegexes:      rf.payeesMatch.Value(),
	}
	if columns, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && columns > 0 {
		cfg.Columns = columns
	}
	return cfg
}
