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
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ReplLauncher runs the interactive REPL collaborator, which this module
// does not itself implement (spec §1). A caller that has one wires it in
// before Execute; cmd/aya leaves it unset.
var ReplLauncher func(args []string) error

var replCmd = &cobra.Command{
	Use:                "repl [flags]",
	Short:              "start an interactive session.",
	Long:               "Passes its flags through to the REPL collaborator untouched.",
	DisableFlagParsing: true,
	Run: func(_ *cobra.Command, args []string) {
		if ReplLauncher == nil {
			fmt.Println("repl: no REPL collaborator configured")
			os.Exit(1)
		}
		if err := ReplLauncher(args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
