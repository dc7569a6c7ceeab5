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
	"log"
	"os"
	"runtime/pprof"

	"github.com/drewr/ledger/cmd/flags"
	"github.com/drewr/ledger/lib/journal"
	"github.com/drewr/ledger/lib/journal/parser"
	"github.com/drewr/ledger/lib/prices"
	"github.com/drewr/ledger/lib/report"

	"github.com/spf13/cobra"
)

// CreateRegisterCmd creates the register command.
func CreateRegisterCmd() *cobra.Command {
	var r registerRunner
	c := &cobra.Command{
		Use:   "register JOURNAL",
		Short: "print a posting register",
		Long:  `Print postings as they stream through the reporting pipeline.`,
		Args:  cobra.ExactArgs(1),
		Run:   r.run,
	}
	r.setupFlags(c)
	return c
}

type registerRunner struct {
	flags.ReportFlags

	cpuprofile string
}

func (r *registerRunner) setupFlags(c *cobra.Command) {
	r.ReportFlags.Setup(c)
	c.Flags().StringVar(&r.cpuprofile, "cpuprofile", "", "file to write profile")
}

func (r *registerRunner) run(cmd *cobra.Command, args []string) {
	if r.cpuprofile != "" {
		f, err := os.Create(r.cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

func (r *registerRunner) execute(cmd *cobra.Command, args []string) error {
	rep, err := loadReport(args[0], &r.ReportFlags)
	if err != nil {
		return err
	}
	return withOutput(r.Output, cmd.OutOrStdout(), func(w io.Writer) error {
		return rep.PostsReport(w)
	})
}

// loadReport parses the journal and prepares a report from the flags.
func loadReport(path string, rf *flags.ReportFlags) (*report.Report, error) {
	j, err := parser.Parse(path)
	if err != nil {
		return nil, err
	}
	db, err := loadPrices(j, rf.PriceDB)
	if err != nil {
		return nil, err
	}
	return report.New(j, rf.Config(), db)
}

func loadPrices(j *journal.Journal, path string) (*prices.DB, error) {
	db := prices.New()
	db.AddJournalPrices(j)
	if path != "" {
		if err := db.LoadFile(path, j.Registry); err != nil {
			return nil, err
		}
	}
	return db, nil
}
