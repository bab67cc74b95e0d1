package sync

import (
	"fmt"
	"strings"

	"github.com/rbxsync/rbxsync/pkg/cloud"
)

// Action describes what the reconciler did for one resource.
type Action string

// Per-resource reconciliation outcomes.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionFailed  Action = "failed"
	ActionSkipped Action = "skipped" // dry run
)

// ResourceResult is the outcome of reconciling a single declared resource.
type ResourceResult struct {
	Category cloud.Category
	Name     string
	ID       int64 // resolved remote identifier, zero when unresolved
	Action   Action

	// IconUploaded reports whether a new icon upload occurred (as opposed
	// to a content-addressed reuse of a prior asset).
	IconUploaded bool

	Err error
}

// Failed reports whether this resource's reconciliation failed.
func (r *ResourceResult) Failed() bool {
	return r.Err != nil
}

// Result is the complete outcome of a reconciliation run.
type Result struct {
	UniverseUpdated bool

	// Resources holds one entry per declared resource, in reconciliation
	// order, including failures.
	Resources []ResourceResult

	// CategoryErrors records categories whose listing failed entirely.
	// Their resources were not attempted.
	CategoryErrors map[cloud.Category]error

	DryRun bool
}

// Failures returns the per-resource failures of the run.
func (r *Result) Failures() []ResourceResult {
	var failed []ResourceResult
	for _, res := range r.Resources {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// HasFailures reports whether anything in the run went wrong.
func (r *Result) HasFailures() bool {
	return len(r.Failures()) > 0 || len(r.CategoryErrors) > 0
}

// Counts returns created/updated/failed totals.
func (r *Result) Counts() (created, updated, failed int) {
	for _, res := range r.Resources {
		switch res.Action {
		case ActionCreated:
			created++
		case ActionUpdated:
			updated++
		case ActionFailed:
			failed++
		}
	}
	return created, updated, failed
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	created, updated, failed := r.Counts()

	var parts []string
	parts = append(parts, fmt.Sprintf("%d created, %d updated, %d failed", created, updated, failed))
	if len(r.CategoryErrors) > 0 {
		var cats []string
		for cat := range r.CategoryErrors {
			cats = append(cats, string(cat))
		}
		parts = append(parts, fmt.Sprintf("%d categories not listed (%s)", len(r.CategoryErrors), strings.Join(cats, ", ")))
	}
	if r.DryRun {
		parts = append(parts, "(dry run)")
	}
	return strings.Join(parts, " ")
}
