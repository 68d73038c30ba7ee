// Package doctor runs diagnostic checks against the local setup and the
// remote task store.
package doctor

import (
	"context"
	"encoding/json"
)

// Status is the outcome of a single check item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check's output.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items produced by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check is a single diagnostic.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Totals counts items by status. Fixable only counts items still warning or
// failing.
type Totals struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

// Report is the outcome of a doctor run.
type Report struct {
	Checks []Result
	Totals Totals
}

// Healthy reports whether no item failed. Warnings do not make a setup
// unhealthy.
func (r Report) Healthy() bool {
	return r.Totals.Failed == 0
}

func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Healthy bool     `json:"healthy"`
		Summary Totals   `json:"summary"`
		Checks  []Result `json:"checks"`
	}{r.Healthy(), r.Totals, r.Checks})
}

// RunAll runs checks in order and tallies their items. A cancelled context
// stops the run before the next check starts.
func RunAll(ctx context.Context, checks []Check) Report {
	report := Report{Checks: make([]Result, 0, len(checks))}
	for _, check := range checks {
		if ctx.Err() != nil {
			report.Checks = append(report.Checks, Result{
				Name:  check.Name(),
				Items: []CheckItem{{Label: "skipped", Status: StatusWarn, Detail: ctx.Err().Error()}},
			})
			continue
		}
		report.Checks = append(report.Checks, check.Run(ctx))
	}
	report.Totals = Tally(report.Checks)
	return report
}

// Tally counts the items across results.
func Tally(results []Result) Totals {
	var t Totals
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				t.Passed++
			case StatusWarn:
				t.Warned++
			case StatusFail:
				t.Failed++
			}
			if item.Fixable && item.Status != StatusPass {
				t.Fixable++
			}
		}
	}
	return t
}
