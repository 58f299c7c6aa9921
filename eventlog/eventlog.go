// Package eventlog defines the normalized event log handed to the mining
// core by the ingestion layer. Logs are read-only once constructed; every
// algorithm downstream treats them as immutable input.
package eventlog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrEmptyLog reports a log with no usable cases. No model can be discovered
// from it, so it is fatal for the whole run.
var ErrEmptyLog = errors.New("event log has no cases")

// MalformedLogError reports an event missing a required field. It is fatal
// for the event's case only; the case is dropped and accounted for.
type MalformedLogError struct {
	CaseID string
	Reason string
}

func (e *MalformedLogError) Error() string {
	return fmt.Sprintf("case %q: %s", e.CaseID, e.Reason)
}

// Reason codes attached to dropped cases.
const (
	ReasonMissingCaseID    = "missing case id"
	ReasonMissingActivity  = "missing activity label"
	ReasonMissingTimestamp = "missing timestamp"
	ReasonDuplicateCaseID  = "duplicate case id"
)

// Event is a single timestamped activity execution.
type Event struct {
	Activity   string
	Time       time.Time
	Attributes map[string]any
}

// Case is one subject's full record: an identifier and its ordered events.
type Case struct {
	ID         string
	Events     []Event
	Attributes map[string]any
}

// Trace returns the case's ordered activity labels.
func (c *Case) Trace() []string {
	trace := make([]string, len(c.Events))
	for i, e := range c.Events {
		trace[i] = e.Activity
	}
	return trace
}

// Dropped records a case excluded during normalization, with its reason code.
type Dropped struct {
	CaseID string
	Reason string
}

// Log is a normalized event log. Case order is preserved for reporting but
// never affects algorithm results.
type Log struct {
	Cases   []Case
	Skipped []Dropped
}

// New validates and normalizes raw cases into a Log. Events inside each case
// are sorted by timestamp with a stable tie-break on original order. Cases
// with a missing id, or an event missing its activity or timestamp, are
// dropped and listed in Skipped. An empty result is ErrEmptyLog.
func New(cases []Case) (*Log, error) {
	log := &Log{Cases: make([]Case, 0, len(cases))}
	seen := make(map[string]bool, len(cases))
	for _, c := range cases {
		if reason, ok := check(c, seen); !ok {
			log.Skipped = append(log.Skipped, Dropped{CaseID: c.ID, Reason: reason})
			continue
		}
		seen[c.ID] = true
		events := make([]Event, len(c.Events))
		copy(events, c.Events)
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Time.Before(events[j].Time)
		})
		log.Cases = append(log.Cases, Case{ID: c.ID, Events: events, Attributes: c.Attributes})
	}
	if len(log.Cases) == 0 {
		return nil, ErrEmptyLog
	}
	return log, nil
}

func check(c Case, seen map[string]bool) (string, bool) {
	if c.ID == "" {
		return ReasonMissingCaseID, false
	}
	if seen[c.ID] {
		return ReasonDuplicateCaseID, false
	}
	for _, e := range c.Events {
		if e.Activity == "" {
			return ReasonMissingActivity, false
		}
		if e.Time.IsZero() {
			return ReasonMissingTimestamp, false
		}
	}
	return "", true
}

// Traces returns the activity sequences of every case, in case order.
func (l *Log) Traces() [][]string {
	traces := make([][]string, len(l.Cases))
	for i := range l.Cases {
		traces[i] = l.Cases[i].Trace()
	}
	return traces
}

// Activities returns the sorted set of distinct activity labels in the log.
func (l *Log) Activities() []string {
	set := map[string]bool{}
	for i := range l.Cases {
		for _, e := range l.Cases[i].Events {
			set[e.Activity] = true
		}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Stats summarizes a log for reporting.
type Stats struct {
	Cases      int `yaml:"cases"`
	Events     int `yaml:"events"`
	Activities int `yaml:"activities"`
	Variants   int `yaml:"variants"`
	Skipped    int `yaml:"skipped"`
}

// Summary computes log-level statistics: case and event totals, distinct
// activities, and distinct trace variants.
func (l *Log) Summary() Stats {
	events := 0
	variants := map[string]bool{}
	for i := range l.Cases {
		events += len(l.Cases[i].Events)
		variants[strings.Join(l.Cases[i].Trace(), "\x00")] = true
	}
	return Stats{
		Cases:      len(l.Cases),
		Events:     events,
		Activities: len(l.Activities()),
		Variants:   len(variants),
		Skipped:    len(l.Skipped),
	}
}
