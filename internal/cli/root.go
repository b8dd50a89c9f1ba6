// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cli wires the aya command-line surface of spec §6: a compile
// subcommand driving a single-shot Orchestrator pass, and a repl
// subcommand that passes its flags through to an out-of-scope REPL
// collaborator.
package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building via a release pipeline, but not when
// installed with "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "aya",
	Short: "A core for the aya proof assistant.",
	Long:  "Normalizes cubical terms, resolves module scopes, and orchestrates incremental builds for the aya proof assistant.",
	Run: func(cmd *cobra.Command, _ []string) {
		if getFlag(cmd, "version") {
			fmt.Print("aya ")
			switch {
			case Version != "":
				fmt.Print(Version)
			default:
				if info, ok := debug.ReadBuildInfo(); ok {
					fmt.Print(info.Main.Version)
				} else {
					fmt.Print("(unknown version)")
				}
			}
			fmt.Println()
		}
	},
}

// Execute runs the root command; subcommands attach themselves to it in
// their init functions. Called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return r
}

func getStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return r
}

//nolint:errcheck
func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

func configureLogging(cmd *cobra.Command) {
	if getFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
