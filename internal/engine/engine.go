// Package engine sequences a parsed operation batch through validation,
// destructive confirmation, backup, and per-operation apply against the
// workspace store. One batch is active at a time; the confirmation gate is
// the only suspension point.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yubzen/fileops/internal/ops"
	"github.com/yubzen/fileops/internal/parser"
	"github.com/yubzen/fileops/internal/workspace"
)

var (
	ErrEngineNotReady = errors.New("engine is not initialized")
	ErrNothingToUndo  = errors.New("nothing to undo")

	// ErrUserCancelled marks a batch aborted by a negative or cancelled
	// confirmation answer.
	ErrUserCancelled = errors.New("user cancelled batch")
)

// Engine drives one batch at a time against a single workspace. The
// workspace is mutated only here, on the caller's goroutine; the backup
// slot holds at most the latest pre-batch snapshot.
type Engine struct {
	Workspace *workspace.Workspace
	Parser    *parser.Parser
	Confirm   ConfirmationProvider
	Notifier  Notifier
	Editor    EditorSync
	Emit      func(Event)

	backup *workspace.Snapshot
	last   *Result
}

func (e *Engine) emit(t EventType, detail, path string) {
	if e.Emit == nil {
		return
	}
	e.Emit(Event{Type: t, Detail: detail, Path: path, At: time.Now()})
}

func (e *Engine) validateReady() error {
	if e == nil || e.Workspace == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) notify(level Level, message string, actions ...Action) {
	if e.Notifier == nil {
		return
	}
	e.Notifier.Notify(level, message, actions...)
}

// Run parses responseText and executes the recovered batch. A response
// with no recoverable file intent returns (nil, nil): no error, no
// notification, no mutation. A structurally invalid batch or a denied
// confirmation returns a Result carrying the terminal status; only
// validation failures also return an error.
func (e *Engine) Run(ctx context.Context, responseText string) (*Result, error) {
	if err := e.validateReady(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p := e.Parser
	if p == nil {
		p = &parser.Parser{}
	}
	batch := p.Parse(responseText)
	if len(batch) == 0 {
		return nil, nil
	}
	e.emit(EventParsed, fmt.Sprintf("recovered %d operation(s)", len(batch)), "")

	result := &Result{Status: StatusParsed}
	e.last = result

	if err := ops.Validate(batch); err != nil {
		result.Status = StatusFailed
		result.Err = err.Error()
		e.emit(EventFailed, result.Err, "")
		e.notify(LevelError, "file operations rejected: "+result.Err)
		return result, fmt.Errorf("batch validation: %w", err)
	}
	result.Status = StatusValidated
	e.emit(EventValidated, "batch passed validation", "")

	destructive := e.destructiveSubset(batch)
	if len(destructive) > 0 {
		result.Status = StatusConfirmationPending
		e.emit(EventAwaitingConfirmation, fmt.Sprintf("%d destructive operation(s) need approval", len(destructive)), "")
		approved, err := e.requestApproval(ctx, destructive)
		if err != nil || !approved {
			result.Status = StatusCancelled
			e.emit(EventCancelled, "destructive operations declined", "")
			e.notify(LevelWarning, "batch cancelled, no files were changed")
			return result, nil
		}
	}
	result.Status = StatusApproved

	e.backup = e.Workspace.Snapshot()
	result.Status = StatusBackedUp
	e.emit(EventBackedUp, fmt.Sprintf("snapshot of %d file(s) taken", len(e.backup.Files)), "")

	result.Status = StatusExecuting
	for _, op := range batch {
		e.apply(op, result)
	}
	result.Status = StatusCompleted

	e.syncEditor(result)
	e.emit(EventCompleted, result.Summary(), "")
	e.report(result)
	return result, nil
}

// destructiveSubset selects operations needing explicit approval: every
// delete, plus edits that would overwrite an existing file.
func (e *Engine) destructiveSubset(batch []ops.FileOperation) []ops.FileOperation {
	var out []ops.FileOperation
	for _, op := range batch {
		switch op.Kind {
		case ops.KindDelete:
			out = append(out, op)
		case ops.KindEdit:
			if e.Workspace.Exists(op.Path) {
				out = append(out, op)
			}
		}
	}
	return out
}

func (e *Engine) requestApproval(ctx context.Context, destructive []ops.FileOperation) (bool, error) {
	if e.Confirm == nil {
		return false, errors.New("no confirmation provider configured")
	}
	req := ConfirmRequest{
		Title:       "Confirm destructive file operations",
		Message:     confirmMessage(destructive),
		Destructive: destructive,
		Diffs:       make(map[string]string),
	}
	for _, op := range destructive {
		if op.Kind != ops.KindEdit {
			continue
		}
		if existing, ok := e.Workspace.Get(op.Path); ok {
			req.Diffs[op.Path] = renderDiff(existing.Content, op.ContentString())
		}
	}
	approved, err := e.Confirm.Confirm(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false, ErrUserCancelled
		}
		return false, err
	}
	return approved, nil
}

func confirmMessage(destructive []ops.FileOperation) string {
	deletes := 0
	overwrites := 0
	for _, op := range destructive {
		if op.Kind == ops.KindDelete {
			deletes++
		} else {
			overwrites++
		}
	}
	parts := make([]string, 0, 2)
	if deletes > 0 {
		parts = append(parts, fmt.Sprintf("%d file(s) will be deleted", deletes))
	}
	if overwrites > 0 {
		parts = append(parts, fmt.Sprintf("%d file(s) will be overwritten", overwrites))
	}
	return strings.Join(parts, ", ")
}

// apply executes one operation against the live workspace, resolving
// conflicts in place. A failure is recorded and never aborts siblings.
func (e *Engine) apply(op ops.FileOperation, result *Result) {
	res := OpResult{Op: op, Kind: op.Kind, Path: op.Path, Outcome: OutcomeApplied}

	switch op.Kind {
	case ops.KindCreate:
		target := op.Path
		if e.Workspace.Exists(target) {
			target = collisionPath(e.Workspace, target)
			res.Outcome = OutcomeRenamed
			res.FinalPath = target
			e.emit(EventApplying, "create collision, renamed to "+target, op.Path)
		}
		if err := e.Workspace.Create(target, op.ContentString()); err != nil {
			e.fail(res, err, result)
			return
		}
	case ops.KindEdit:
		if !e.Workspace.Exists(op.Path) {
			res.Outcome = OutcomeDegraded
			e.emit(EventApplying, "edit target missing, creating instead", op.Path)
			if err := e.Workspace.Create(op.Path, op.ContentString()); err != nil {
				e.fail(res, err, result)
				return
			}
		} else if err := e.Workspace.Update(op.Path, op.ContentString()); err != nil {
			e.fail(res, err, result)
			return
		}
	case ops.KindDelete:
		if !e.Workspace.Exists(op.Path) {
			e.fail(res, errors.New("not found"), result)
			return
		}
		if err := e.Workspace.Delete(op.Path); err != nil {
			e.fail(res, err, result)
			return
		}
	}

	if res.FinalPath == "" {
		res.FinalPath = op.Path
	}
	e.emit(EventApplying, string(res.Outcome), res.FinalPath)
	result.Executed = append(result.Executed, res)
}

func (e *Engine) fail(res OpResult, err error, result *Result) {
	res.Outcome = OutcomeFailed
	res.Reason = err.Error()
	e.emit(EventApplying, "failed: "+res.Reason, res.Path)
	result.Failed = append(result.Failed, res)
}

// syncEditor reconciles open editor views with the batch outcome.
func (e *Engine) syncEditor(result *Result) {
	if e.Editor == nil {
		return
	}
	for _, res := range result.Executed {
		switch res.Kind {
		case ops.KindDelete:
			if e.Editor.IsOpen(res.Path) {
				e.Editor.Close(res.Path)
			}
		default:
			if e.Editor.IsOpen(res.FinalPath) {
				e.Editor.Reload(res.FinalPath)
			}
		}
	}
}

func (e *Engine) report(result *Result) {
	if len(result.Failed) > 0 {
		msg := result.Summary()
		if details := result.FailureDetails(); details != "" {
			msg += "\n" + details
		}
		e.notify(LevelWarning, msg)
		if len(result.Executed) == 0 {
			return
		}
	}
	if len(result.Executed) > 0 {
		e.notify(LevelSuccess, result.Summary(), Action{Label: "Undo", Run: e.Undo})
	}
}

// LastResult returns the most recent batch result, or nil.
func (e *Engine) LastResult() *Result {
	if e == nil {
		return nil
	}
	return e.last
}
