/* Copyright 2025 Circadian Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package cmd implements the circadian-server command line
package cmd

import (
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// dotenvPath is read into the environment before any command runs
var dotenvPath = ".env"

func loadDotenv(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "loading %s", dotenvPath)
	}

	return nil
}

// NewRootCmd returns the root command with every subcommand registered
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "circadian-server",
		Short:             "Circadian App backend",
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: loadDotenv,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(newStartCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the command line and reports a failure on stderr
func Execute() error {
	root := NewRootCmd()

	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return err
	}

	return nil
}
