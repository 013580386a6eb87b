package engine

import (
	"fmt"
	"strings"

	"github.com/yubzen/fileops/internal/ops"
)

// Status is the batch state machine position. FAILED, CANCELLED and
// Completed are terminal.
type Status string

const (
	StatusParsed              Status = "parsed"
	StatusValidated           Status = "validated"
	StatusFailed              Status = "failed"
	StatusConfirmationPending Status = "confirmation_pending"
	StatusApproved            Status = "approved"
	StatusCancelled           Status = "cancelled"
	StatusBackedUp            Status = "backed_up"
	StatusExecuting           Status = "executing"
	StatusCompleted           Status = "completed"
)

// Outcome classifies how one operation ended.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRenamed  Outcome = "renamed"  // create collided, proceeded under a new path
	OutcomeDegraded Outcome = "degraded" // edit target missing, executed as create
	OutcomeFailed   Outcome = "failed"
)

// OpResult records one operation's fate. Op reflects what was requested;
// FinalPath is where the operation actually landed (differs from Op.Path
// only on rename).
type OpResult struct {
	Op        ops.FileOperation `yaml:"-"`
	Kind      ops.Kind          `yaml:"kind"`
	Path      string            `yaml:"path"`
	FinalPath string            `yaml:"finalPath,omitempty"`
	Outcome   Outcome           `yaml:"outcome"`
	Reason    string            `yaml:"reason,omitempty"`
}

// Result aggregates one batch. It is created fresh per run and superseded,
// not merged, by the next batch.
type Result struct {
	Status   Status     `yaml:"status"`
	Executed []OpResult `yaml:"executed,omitempty"`
	Failed   []OpResult `yaml:"failed,omitempty"`
	Err      string     `yaml:"error,omitempty"`
}

// Counts tallies executed operations by kind, counting a degraded edit as
// the create it became.
func (r *Result) Counts() map[ops.Kind]int {
	counts := make(map[ops.Kind]int)
	for _, res := range r.Executed {
		kind := res.Kind
		if res.Outcome == OutcomeDegraded {
			kind = ops.KindCreate
		}
		counts[kind]++
	}
	return counts
}

// Summary renders a short human-readable report line.
func (r *Result) Summary() string {
	switch r.Status {
	case StatusFailed:
		return "batch rejected: " + r.Err
	case StatusCancelled:
		return "batch cancelled before any changes"
	}
	counts := r.Counts()
	parts := make([]string, 0, 4)
	if n := counts[ops.KindCreate]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d created", n))
	}
	if n := counts[ops.KindEdit]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d edited", n))
	}
	if n := counts[ops.KindDelete]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", n))
	}
	if len(r.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", len(r.Failed)))
	}
	if len(parts) == 0 {
		return "no file operations applied"
	}
	return strings.Join(parts, ", ")
}

// FailureDetails lists per-operation failure reasons, one per line.
func (r *Result) FailureDetails() string {
	if len(r.Failed) == 0 {
		return ""
	}
	lines := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		lines = append(lines, fmt.Sprintf("%s %s: %s", f.Kind, f.Path, f.Reason))
	}
	return strings.Join(lines, "\n")
}
