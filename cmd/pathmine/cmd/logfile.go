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
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/eventlog"
	"github.com/jt05610/pathmine/netfile"
)

// logFile is the normalized event-log schema accepted at the CLI edge. The
// heavy lifting of cleaning raw records happens upstream of this tool.
type logFile struct {
	Cases []caseEntry `yaml:"cases"`
}

type caseEntry struct {
	ID     string         `yaml:"id"`
	Attrs  map[string]any `yaml:"attrs,omitempty"`
	Events []eventEntry   `yaml:"events"`
}

type eventEntry struct {
	Activity string         `yaml:"activity"`
	Time     time.Time      `yaml:"time"`
	Attrs    map[string]any `yaml:"attrs,omitempty"`
}

func loadLog(path string) (*eventlog.Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	var lf logFile
	if err := yaml.NewDecoder(f).Decode(&lf); err != nil {
		return nil, fmt.Errorf("decode log %s: %w", path, err)
	}
	cases := make([]eventlog.Case, len(lf.Cases))
	for i, ce := range lf.Cases {
		events := make([]eventlog.Event, len(ce.Events))
		for j, ee := range ce.Events {
			events[j] = eventlog.Event{Activity: ee.Activity, Time: ee.Time, Attributes: ee.Attrs}
		}
		cases[i] = eventlog.Case{ID: ce.ID, Events: events, Attributes: ce.Attrs}
	}
	log, err := eventlog.New(cases)
	if err != nil {
		return nil, err
	}
	for _, d := range log.Skipped {
		logger.Warn("case skipped", zap.String("case", d.CaseID), zap.String("reason", d.Reason))
	}
	if whereExpr != "" {
		return log.Filter(whereExpr)
	}
	return log, nil
}

func loadNet(path string) (*pathmine.Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	svc := &netfile.Service{}
	return svc.Load(f)
}
