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
	"bufio"
	"fmt"
	"math/rand"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/drewr/ledger/lib/common/date"
	"github.com/spf13/cobra"
)

// CreateGenerateCmd creates the generate command.
func CreateGenerateCmd() *cobra.Command {
	var r generateRunner
	c := &cobra.Command{
		Use:   "generate FILE",
		Short: "generate a demo journal",
		Long:  `Generate a synthetic journal for demos and benchmarks.`,
		Args:  cobra.ExactArgs(1),
		Run:   r.run,
	}
	c.Flags().IntVar(&r.transactions, "transactions", 1000, "number of transactions to generate")
	c.Flags().IntVar(&r.accounts, "accounts", 20, "number of expense accounts to generate")
	c.Flags().Int64Var(&r.seed, "seed", 1, "random seed")
	return c
}

type generateRunner struct {
	transactions int
	accounts     int
	seed         int64
}

func (r *generateRunner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%+v\n", err)
		os.Exit(1)
	}
}

var payees = []string{
	"Grocer", "Landlord", "Utility Co", "Bookshop", "Cafe",
	"Hardware Store", "Pharmacy", "Garage",
}

func (r *generateRunner) execute(cmd *cobra.Command, args []string) error {
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	rnd := rand.New(rand.NewSource(r.seed))

	fmt.Fprintln(w, "~ monthly from 2020-01-01")
	fmt.Fprintln(w, "    Expenses:Rent                       1200.00 USD")
	fmt.Fprintln(w, "    Assets:Bank:Checking")
	fmt.Fprintln(w)

	bar := pb.StartNew(r.transactions)
	defer bar.Finish()
	d := date.Date(2020, 1, 1)
	for i := 0; i < r.transactions; i++ {
		payee := payees[rnd.Intn(len(payees))]
		acct := fmt.Sprintf("Expenses:Category%02d", rnd.Intn(r.accounts))
		cents := rnd.Intn(20000) + 100
		fmt.Fprintf(w, "%s * %s\n", d.Format("2006-01-02"), payee)
		fmt.Fprintf(w, "    %-34s  %d.%02d USD\n", acct, cents/100, cents%100)
		fmt.Fprintln(w, "    Assets:Bank:Checking")
		fmt.Fprintln(w)
		d = d.AddDate(0, 0, rnd.Intn(3))
		bar.Increment()
	}
	return w.Flush()
}
