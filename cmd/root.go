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

// Package cmd is the main command file for Cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/drewr/ledger/cmd/commands"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "ledger is a plain text accounting tool",
	Long:  `ledger is a plain text accounting tool with a composable reporting pipeline.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(commands.CreateRegisterCmd())
	rootCmd.AddCommand(commands.CreateBalanceCmd())
	rootCmd.AddCommand(commands.CreatePrintCmd())
	rootCmd.AddCommand(commands.CreateEquityCmd())
	rootCmd.AddCommand(commands.CreateBudgetCmd())
	rootCmd.AddCommand(commands.CreateGenerateCmd())
}
