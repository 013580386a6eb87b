package engine

import "fmt"

// Undo restores the workspace to the snapshot taken before the last
// executed batch. The snapshot is single-use: a second call fails until a
// new batch executes. A failed restore leaves live state untouched.
func (e *Engine) Undo() error {
	if err := e.validateReady(); err != nil {
		return err
	}
	if e.backup == nil {
		return ErrNothingToUndo
	}
	if err := e.Workspace.Restore(e.backup); err != nil {
		e.notify(LevelError, "undo failed: "+err.Error())
		return fmt.Errorf("undo: %w", err)
	}
	e.backup = nil
	e.notify(LevelSuccess, "workspace restored to pre-batch state")
	return nil
}

// CanUndo reports whether an unconsumed backup snapshot exists.
func (e *Engine) CanUndo() bool {
	return e != nil && e.backup != nil
}
