package workspace

import (
	"errors"
	"time"
)

// Snapshot is a deep copy of the workspace at a point in time. Mutating
// the live workspace never affects a snapshot and vice versa.
type Snapshot struct {
	Files   []File
	TakenAt time.Time
}

func (w *Workspace) Snapshot() *Snapshot {
	return &Snapshot{
		Files:   w.Files(),
		TakenAt: time.Now(),
	}
}

// Restore replaces the live workspace content with the snapshot. The swap
// is all-or-nothing: the new list and index are built fully before either
// replaces live state, so a bad snapshot leaves the workspace untouched.
func (w *Workspace) Restore(s *Snapshot) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	files := make([]*File, 0, len(s.Files))
	byPath := make(map[string]*File, len(s.Files))
	for i := range s.Files {
		f := s.Files[i]
		if f.Path == "" {
			return errors.New("snapshot contains a file without a path")
		}
		if _, dup := byPath[f.Path]; dup {
			return errors.New("snapshot contains duplicate path " + f.Path)
		}
		files = append(files, &f)
		byPath[f.Path] = &f
	}
	w.files = files
	w.byPath = byPath
	w.tree = nil
	return nil
}
