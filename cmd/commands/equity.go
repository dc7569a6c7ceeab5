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
	"github.com/drewr/ledger/lib/filters"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/printer"

	"github.com/spf13/cobra"
)

// CreateEquityCmd creates the equity command.
func CreateEquityCmd() *cobra.Command {
	var r equityRunner
	c := &cobra.Command{
		Use:   "equity JOURNAL",
		Short: "print the final balances as an opening transaction",
		Args:  cobra.ExactArgs(1),
		Run:   r.run,
	}
	r.ReportFlags.Setup(c)
	return c
}

type equityRunner struct {
	flags.ReportFlags
}

func (r *equityRunner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

func (r *equityRunner) execute(cmd *cobra.Command, args []string) error {
	rep, err := loadReport(args[0], &r.ReportFlags)
	if err != nil {
		return err
	}
	rep.Config.Equity = true
	defer rep.Journal.ClearXData()
	sink := filters.NewCollectPosts()
	head, err := rep.BuildPostsChain(sink)
	if err != nil {
		return err
	}
	if err := filters.PassDownPosts(head, journal.JournalPosts(rep.Journal)); err != nil {
		return err
	}
	return withOutput(r.Output, cmd.OutOrStdout(), func(w io.Writer) error {
		if len(sink.Posts) == 0 {
			return nil
		}
		return printer.New(w).PrintXact(sink.Posts[0].Xact)
	})
}
