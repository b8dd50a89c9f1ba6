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
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LLLgoyour/aya-dev/internal/core/build"
	"github.com/LLLgoyour/aya-dev/internal/core/report"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] file",
	Short: "compile a source file, or an entire library, and report diagnostics.",
	Long:  "Registers the given file (or, with --library, the library rooted at it) with the build orchestrator and runs a single reload pass.",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		if len(args) == 0 {
			fmt.Println("compile: no action specified")
			os.Exit(1)
		}

		opts := compileOptions{
			target:       args[0],
			asLibrary:    getFlag(cmd, "library"),
			ascii:        getFlag(cmd, "ascii"),
			trace:        getFlag(cmd, "trace"),
			prettyStage:  getString(cmd, "pretty-stage"),
			prettyFormat: getString(cmd, "pretty-format"),
			prettyDir:    getString(cmd, "pretty-dir"),
			modulePaths:  getStringArray(cmd, "module-path"),
		}

		if !runCompile(opts) {
			os.Exit(1)
		}
	},
}

type compileOptions struct {
	target    string
	asLibrary bool
	ascii     bool
	trace     bool
	// prettyStage/prettyFormat/prettyDir are accepted here and wait on a
	// concrete render.Renderer to dispatch to (§1's pretty-printer is a
	// stub boundary in this module). modulePaths likewise waits on the
	// Resolver gaining a search-path notion; today every import resolves
	// through whatever the front end hands the Resolver directly.
	prettyStage  string
	prettyFormat string
	prettyDir    string
	modulePaths  []string
}

// runCompile drives one end-to-end orchestrator pass over the target and
// prints its diagnostics, returning whether the pass produced no errors.
func runCompile(opts compileOptions) bool {
	var failed bool

	publish := func(uri string, diags []report.Diagnostic) {
		for _, d := range diags {
			printDiagnostic(uri, d, opts.ascii)
			if d.Severity == report.SeverityError {
				failed = true
			}
		}
	}

	orchestrator := build.New(newFilePipeline(), publish)

	var ids []build.LibraryID
	var err error
	if opts.asLibrary {
		ids, err = orchestrator.RegisterLibrary(opts.target)
	} else {
		id := orchestrator.FileCreated(opts.target)
		ids = []build.LibraryID{id}
	}
	if err != nil {
		fmt.Println(err)
		return false
	}

	for _, id := range ids {
		if _, err := orchestrator.Reload(context.Background(), id); err != nil {
			fmt.Println(err)
			failed = true
		}
	}

	if opts.trace {
		log.WithField("libraries", len(ids)).Debug("compile pass complete")
	}

	return !failed
}

func printDiagnostic(uri string, d report.Diagnostic, ascii bool) {
	marker := "✗"
	if d.Severity == report.SeverityWarning {
		marker = "!"
	}
	if ascii {
		if d.Severity == report.SeverityWarning {
			marker = "!"
		} else {
			marker = "x"
		}
	}
	fmt.Printf("%s %s: %s: %s\n", marker, uri, d.Kind, d.Message)
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("library", false, "treat the target as a library root rather than a single file")
	compileCmd.Flags().Bool("ascii", false, "restrict diagnostic markers to ASCII")
	compileCmd.Flags().String("pretty-stage", "", "emit a pretty-printed artifact for the named pipeline stage")
	compileCmd.Flags().String("pretty-format", "", "pretty-printed artifact format")
	compileCmd.Flags().String("pretty-dir", "", "directory to write pretty-printed artifacts into")
	compileCmd.Flags().Bool("trace", false, "log a debug-level summary line after the compile pass (shown only with --verbose)")
	compileCmd.Flags().StringArray("module-path", []string{}, "additional module search path (repeatable)")
}
