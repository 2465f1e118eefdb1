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

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/circadianapp/circadian/pkg/server/app"
	"github.com/circadianapp/circadian/pkg/server/config"
	"github.com/circadianapp/circadian/pkg/server/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var userShowExample = `
 * Print the record stored for a user
 circadian-server user show --uid abc

 * Read from a local SQLite store
 circadian-server user show --uid abc --store sql --dbPath ./server.db`

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect user records",
	}

	cmd.AddCommand(newUserShowCmd())

	return cmd
}

func newUserShowCmd() *cobra.Command {
	var f storeFlags
	var uid string

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a user record as JSON",
		Example: userShowExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uid == "" {
				return errors.New("--uid is required")
			}

			cfg, err := config.New(f.params())
			if err != nil {
				return errors.Wrap(err, "loading config")
			}

			return runUserShow(cmd, cfg, uid)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&uid, "uid", "", "User id (required)")

	return cmd
}

func runUserShow(cmd *cobra.Command, cfg config.Config, uid string) error {
	log.SetLevel(cfg.LogLevel)

	a, err := initApp(cmd.Context(), cfg)
	if err != nil {
		return errors.Wrap(err, "initializing app")
	}
	defer a.Store.Close()

	rec, err := a.GetUser(cmd.Context(), uid)
	if errors.Is(err, app.ErrNotFound) {
		return errors.Wrapf(err, "user %s", uid)
	}
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	printSuccessf(cmd.ErrOrStderr(), "Found user %s in %s", uid, cfg.Store)

	return nil
}
