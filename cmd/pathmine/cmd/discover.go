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
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jt05610/pathmine/discover"
	"github.com/jt05610/pathmine/netfile"
)

var (
	netName string
	noise   float64
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Mine a Petri net from an event log",
	Long: `Mine a block-structured Petri net from an event log and write it in the
YAML interchange format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := loadLog(inputFile)
		if err != nil {
			return err
		}
		stats := log.Summary()
		logger.Info("log loaded",
			zap.Int("cases", stats.Cases),
			zap.Int("events", stats.Events),
			zap.Int("activities", stats.Activities),
			zap.Int("variants", stats.Variants),
		)
		cfg := discover.DefaultConfig()
		cfg.Name = netName
		cfg.NoiseThreshold = noise
		cfg.Logger = logger
		net, err := discover.Discover(log, cfg)
		if err != nil {
			return err
		}
		out, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer func() {
			_ = out.Close()
		}()
		svc := &netfile.Service{}
		return svc.Flush(out, net)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVarP(&inputFile, "input", "i", "", "event log file")
	discoverCmd.Flags().StringVarP(&outputFile, "output", "o", "net.yaml", "output net file")
	discoverCmd.Flags().StringVar(&netName, "name", "discovered", "name of the mined net")
	discoverCmd.Flags().Float64Var(&noise, "noise", 0.2, "noise threshold for infrequent directly-follows edges")
	_ = discoverCmd.MarkFlagRequired("input")
}
