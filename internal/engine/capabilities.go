package engine

import (
	"context"

	"github.com/yubzen/fileops/internal/ops"
)

// ConfirmRequest describes a pending destructive batch. Diffs carries a
// rendered preview per edit path that would be overwritten.
type ConfirmRequest struct {
	Title       string
	Message     string
	Destructive []ops.FileOperation
	Diffs       map[string]string
}

// ConfirmationProvider is the user-in-the-loop approval capability. The
// call suspends until the user answers; cancelling the context counts as
// a negative answer. There is no timeout.
type ConfirmationProvider interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
}

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Action is an optional follow-up a notification can offer, e.g. undo.
type Action struct {
	Label string
	Run   func() error
}

// Notifier is the outward notification capability.
type Notifier interface {
	Notify(level Level, message string, actions ...Action)
}

// EditorSync lets the engine reconcile open editor views after a batch:
// reload content on edit, close the view on delete.
type EditorSync interface {
	IsOpen(path string) bool
	Reload(path string)
	Close(path string)
}

// NoopEditor satisfies EditorSync for front-ends without an editor.
type NoopEditor struct{}

func (NoopEditor) IsOpen(string) bool { return false }
func (NoopEditor) Reload(string)      {}
func (NoopEditor) Close(string)       {}

// AutoApprove satisfies ConfirmationProvider by approving everything.
// Used by non-interactive front-ends that pass an explicit yes flag.
type AutoApprove struct{}

func (AutoApprove) Confirm(context.Context, ConfirmRequest) (bool, error) { return true, nil }
