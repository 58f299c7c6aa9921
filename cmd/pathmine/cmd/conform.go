/*
Copyright © 2024 Jonathan Taylor <jonrtaylor12@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cmd

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jt05610/pathmine/quality"
)

var (
	netFile       string
	alignTimeout  time.Duration
	maxExpansions int
	worstCount    int
)

// conformCmd represents the conform command
var conformCmd = &cobra.Command{
	Use:   "conform",
	Short: "Check an event log against a mined net",
	Long: `Replay and align every case of an event log against a net and report
fitness, precision, generalization, and simplicity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := loadLog(inputFile)
		if err != nil {
			return err
		}
		net, err := loadNet(netFile)
		if err != nil {
			return err
		}
		cfg := quality.DefaultConfig()
		cfg.Align.Timeout = alignTimeout
		cfg.Align.MaxExpansions = maxExpansions
		cfg.Worst = worstCount
		cfg.Logger = logger
		cfg.Replay.Logger = logger
		cfg.Align.Logger = logger
		report, err := quality.Evaluate(cmd.Context(), net, log, cfg)
		if err != nil {
			return err
		}
		var out io.Writer = os.Stdout
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
			}()
			out = f
		}
		enc := yaml.NewEncoder(out)
		defer func() {
			_ = enc.Close()
		}()
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(conformCmd)
	conformCmd.Flags().StringVarP(&inputFile, "input", "i", "", "event log file")
	conformCmd.Flags().StringVarP(&netFile, "net", "n", "", "net file")
	conformCmd.Flags().StringVarP(&outputFile, "output", "o", "", "report file (default stdout)")
	conformCmd.Flags().DurationVar(&alignTimeout, "timeout", 10*time.Second, "per-trace alignment budget")
	conformCmd.Flags().IntVar(&maxExpansions, "max-expansions", 1<<18, "per-trace alignment step budget")
	conformCmd.Flags().IntVar(&worstCount, "worst", 10, "number of worst-fitting traces to list")
	_ = conformCmd.MarkFlagRequired("input")
	_ = conformCmd.MarkFlagRequired("net")
}
