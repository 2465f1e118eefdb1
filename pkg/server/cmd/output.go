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
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	colorRed   = color.New(color.FgRed)
	colorGreen = color.New(color.FgGreen)
)

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s Error: %s\n", colorRed.Sprint("⨯"), err)
}

func printSuccessf(w io.Writer, msg string, v ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", colorGreen.Sprint("✔"), fmt.Sprintf(msg, v...))
}
