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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jt05610/pathmine/graphviz"
)

var format string

// vizCmd represents the viz command
var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Create a graphviz figure from a net",
	Long:  `Create a graphviz figure from a net in the YAML interchange format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := loadNet(inputFile)
		if err != nil {
			return err
		}
		if outputFile == "" {
			outputFile = net.Name + "." + format
		}
		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return err
			}
		}
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		w := graphviz.New(&graphviz.Config{
			Name:   net.Name,
			Format: graphviz.Format(format),
		})
		return w.Flush(f, net)
	},
}

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringVarP(&inputFile, "input", "i", "", "net file")
	vizCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file")
	vizCmd.Flags().StringVarP(&format, "format", "f", "svg", "output format")
	_ = vizCmd.MarkFlagRequired("input")
}
