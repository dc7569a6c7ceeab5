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

	"github.com/spf13/cobra"
)

// CreateBalanceCmd creates the balance command.
func CreateBalanceCmd() *cobra.Command {
	var r balanceRunner
	c := &cobra.Command{
		Use:   "balance JOURNAL",
		Short: "print account balances",
		Long:  `Compute a balance per account over the filtered postings.`,
		Args:  cobra.ExactArgs(1),
		Run:   r.run,
	}
	r.ReportFlags.Setup(c)
	return c
}

type balanceRunner struct {
	flags.ReportFlags
}

func (r *balanceRunner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

func (r *balanceRunner) execute(cmd *cobra.Command, args []string) error {
	rep, err := loadReport(args[0], &r.ReportFlags)
	if err != nil {
		return err
	}
	return withOutput(r.Output, cmd.OutOrStdout(), func(w io.Writer) error {
		return rep.AccountsReport(w)
	})
}
