package workspace

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/yubzen/fileops/internal/ops"
)

var (
	ErrNotFound      = errors.New("file not found in workspace")
	ErrAlreadyExists = errors.New("file already exists in workspace")
)

// File is one entry in the workspace. Path is the unique key; Name is
// always the final path segment.
type File struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	IsDir         bool   `json:"isDir"`
	Size          int    `json:"size"`
	Content       string `json:"content,omitempty"`
	Selected      bool   `json:"selected,omitempty"`
	TokenEstimate int    `json:"tokenEstimate,omitempty"`
}

// Workspace owns every File record. The ordered list and the path index
// stay in sync at all times; the derived tree is rebuilt lazily after any
// mutation. Mutation happens only through the methods below.
type Workspace struct {
	files  []*File
	byPath map[string]*File
	tree   *TreeNode
}

func New() *Workspace {
	return &Workspace{byPath: make(map[string]*File)}
}

// Normalize canonicalizes p to the workspace path rule: forward slashes,
// no leading slash, no parent traversal, no "." segments.
func Normalize(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = ops.NormalizePath(p)
	if p == "" {
		return "", errors.New("path is empty")
	}
	if !ops.ValidPath(p) {
		return "", fmt.Errorf("path %q violates workspace path rule", p)
	}
	return p, nil
}

func estimateTokens(content string) int {
	return len(content) / 4
}

func (w *Workspace) Len() int {
	return len(w.files)
}

func (w *Workspace) Exists(p string) bool {
	_, ok := w.byPath[p]
	return ok
}

// Get returns a copy of the file at p. Callers never receive a pointer
// into the store.
func (w *Workspace) Get(p string) (File, bool) {
	f, ok := w.byPath[p]
	if !ok {
		return File{}, false
	}
	return *f, true
}

// Files returns copies of all entries in insertion order.
func (w *Workspace) Files() []File {
	out := make([]File, 0, len(w.files))
	for _, f := range w.files {
		out = append(out, *f)
	}
	return out
}

// Add inserts an imported file record, normalizing its path. Used by the
// importer; operation-created files go through Create.
func (w *Workspace) Add(f File) error {
	p, err := Normalize(f.Path)
	if err != nil {
		return err
	}
	if w.Exists(p) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, p)
	}
	f.Path = p
	f.Name = path.Base(p)
	if !f.IsDir {
		f.Size = len(f.Content)
		f.TokenEstimate = estimateTokens(f.Content)
	}
	w.insert(&f)
	return nil
}

func (w *Workspace) Create(p, content string) error {
	p, err := Normalize(p)
	if err != nil {
		return err
	}
	if w.Exists(p) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, p)
	}
	w.insert(&File{
		Path:          p,
		Name:          path.Base(p),
		Size:          len(content),
		Content:       content,
		TokenEstimate: estimateTokens(content),
	})
	return nil
}

func (w *Workspace) Update(p, content string) error {
	f, ok := w.byPath[p]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	f.Content = content
	f.Size = len(content)
	f.TokenEstimate = estimateTokens(content)
	w.tree = nil
	return nil
}

func (w *Workspace) Delete(p string) error {
	if _, ok := w.byPath[p]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	delete(w.byPath, p)
	for i, f := range w.files {
		if f.Path == p {
			w.files = append(w.files[:i], w.files[i+1:]...)
			break
		}
	}
	w.tree = nil
	return nil
}

func (w *Workspace) insert(f *File) {
	w.files = append(w.files, f)
	w.byPath[f.Path] = f
	w.tree = nil
}
