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

	"github.com/drewr/ledger/lib/journal/parser"
	"github.com/drewr/ledger/lib/printer"

	"github.com/spf13/cobra"
)

// CreatePrintCmd creates the print command.
func CreatePrintCmd() *cobra.Command {
	var r printRunner
	c := &cobra.Command{
		Use:   "print JOURNAL",
		Short: "print the journal in canonical form",
		Args:  cobra.ExactArgs(1),
		Run:   r.run,
	}
	c.Flags().StringVarP(&r.output, "output", "o", "", "write output to this file")
	return c
}

type printRunner struct {
	output string
}

func (r *printRunner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

func (r *printRunner) execute(cmd *cobra.Command, args []string) error {
	j, err := parser.Parse(args[0])
	if err != nil {
		return err
	}
	return withOutput(r.output, cmd.OutOrStdout(), func(w io.Writer) error {
		return printer.New(w).PrintJournal(j)
	})
}
