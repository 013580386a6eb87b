package ops

import "fmt"

// ValidationError rejects an entire batch. It names the first operation
// that failed a structural check; nothing from the batch executes.
type ValidationError struct {
	Index  int
	Op     FileOperation
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("operation %d (%s %q): %s", e.Index, e.Op.Kind, e.Op.Path, e.Reason)
}

// Validate applies structural and safety checks to every operation in the
// batch. A single violation rejects the whole batch.
func Validate(batch []FileOperation) error {
	for i, op := range batch {
		if !op.Kind.Valid() {
			return &ValidationError{Index: i, Op: op, Reason: fmt.Sprintf("unrecognized kind %q", op.Kind)}
		}
		if op.Path == "" {
			return &ValidationError{Index: i, Op: op, Reason: "path is empty"}
		}
		if !ValidPath(op.Path) {
			return &ValidationError{Index: i, Op: op, Reason: "path must be relative with forward slashes and no parent traversal"}
		}
		if op.Path != NormalizePath(op.Path) {
			return &ValidationError{Index: i, Op: op, Reason: "path is not in canonical form"}
		}
		if op.Kind != KindDelete && op.Content == nil {
			return &ValidationError{Index: i, Op: op, Reason: "content is required"}
		}
	}
	return nil
}
