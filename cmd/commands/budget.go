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

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/drewr/ledger/cmd/flags"
	"github.com/drewr/ledger/lib/report"

	"github.com/spf13/cobra"
)

// CreateBudgetCmd creates the budget command.
func CreateBudgetCmd() *cobra.Command {
	var r budgetRunner
	c := &cobra.Command{
		Use:   "budget JOURNAL",
		Short: "report postings against the periodic budget",
		Long: `Report postings against the budget defined by the journal's
periodic transactions.`,
		Args: cobra.ExactArgs(1),
		Run:  r.run,
	}
	r.ReportFlags.Setup(c)
	c.Flags().BoolVar(&r.unbudgeted, "unbudgeted", false, "show only unbudgeted postings")
	c.Flags().BoolVar(&r.both, "both", false, "show budgeted and unbudgeted postings")
	return c
}

type budgetRunner struct {
	flags.ReportFlags

	unbudgeted bool
	both       bool
}

func (r *budgetRunner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

func (r *budgetRunner) execute(cmd *cobra.Command, args []string) error {
	rep, err := loadReport(args[0], &r.ReportFlags)
	if err != nil {
		return err
	}
	switch {
	case r.both:
		rep.Config.BudgetMode = report.BudgetedAndUnbudgeted
	case r.unbudgeted:
		rep.Config.BudgetMode = report.Unbudgeted
	default:
		rep.Config.BudgetMode = report.Budgeted
	}
	return withOutput(r.Output, cmd.OutOrStdout(), func(w io.Writer) error {
		return rep.PostsReport(w)
	})
}
