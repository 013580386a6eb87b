// Package mirror moves files between a directory on disk and the
// in-memory workspace store: an initial import, a write-back of executed
// operations, and an optional fsnotify watcher that keeps the workspace
// in step with outside edits.
package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yubzen/fileops/internal/engine"
	"github.com/yubzen/fileops/internal/ops"
	"github.com/yubzen/fileops/internal/workspace"
)

const maxImportSize = 1 << 20 // 1 MiB per file

type Mirror struct {
	Root string

	// Done is non-nil once Watch has started and closes when the
	// watcher goroutine exits.
	Done chan struct{}

	mu    sync.Mutex
	dirty map[string]bool
}

func New(root string) *Mirror {
	return &Mirror{
		Root:  root,
		dirty: make(map[string]bool),
	}
}

func isIgnored(path string, info fs.FileInfo) bool {
	name := info.Name()
	if info.IsDir() {
		return name == ".git" || name == "node_modules" || name == "vendor"
	}
	switch filepath.Ext(path) {
	case ".exe", ".dll", ".so", ".dylib", ".bin", ".db":
		return true
	}
	return false
}

func looksBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// Load walks the root and imports every readable text file into the
// workspace. Paths are stored relative to the root with forward slashes.
func (m *Mirror) Load(ws *workspace.Workspace) error {
	if strings.TrimSpace(m.Root) == "" {
		return errors.New("mirror root is empty")
	}
	rootAbs, err := filepath.Abs(m.Root)
	if err != nil {
		return err
	}
	return filepath.Walk(rootAbs, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path == rootAbs {
			return nil
		}
		if isIgnored(path, info) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(rootAbs, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			return ws.Add(workspace.File{Path: rel, IsDir: true})
		}
		if info.Size() > maxImportSize {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil || looksBinary(data) {
			return nil
		}
		return ws.Add(workspace.File{Path: rel, Content: string(data)})
	})
}

// Flush writes a batch's executed operations back to disk.
func (m *Mirror) Flush(result *engine.Result) error {
	for _, res := range result.Executed {
		target := filepath.Join(m.Root, filepath.FromSlash(res.FinalPath))
		switch res.Kind {
		case ops.KindDelete:
			if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("flush delete %s: %w", res.FinalPath, err)
			}
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(target, []byte(res.Op.ContentString()), 0o644); err != nil {
				return fmt.Errorf("flush write %s: %w", res.FinalPath, err)
			}
		}
	}
	return nil
}

// Revert undoes a flushed batch on disk using the restored workspace as
// the source of truth: files the batch wrote are removed or rewritten,
// files it deleted are put back.
func (m *Mirror) Revert(ws *workspace.Workspace, result *engine.Result) error {
	for _, res := range result.Executed {
		target := filepath.Join(m.Root, filepath.FromSlash(res.FinalPath))
		restored, exists := ws.Get(res.FinalPath)
		if res.Kind == ops.KindDelete {
			restored, exists = ws.Get(res.Path)
			target = filepath.Join(m.Root, filepath.FromSlash(res.Path))
		}
		if !exists {
			if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(restored.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Watch keeps the workspace in step with outside edits under the root.
// Changes are debounced, then applied through sync on the caller's
// goroutine discipline: sync is invoked from the watcher goroutine, so
// callers who also mutate the workspace elsewhere must serialize.
func (m *Mirror) Watch(ctx context.Context, ws *workspace.Workspace, onSync func(paths []string)) error {
	rootAbs, err := filepath.Abs(m.Root)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.Walk(rootAbs, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if isIgnored(path, info) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	m.Done = make(chan struct{})
	go func() {
		defer watcher.Close()
		defer close(m.Done)

		debounce := time.NewTimer(time.Second)
		defer debounce.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				m.noteEvent(watcher, rootAbs, event)
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(time.Second)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-debounce.C:
				m.mu.Lock()
				pending := m.dirty
				m.dirty = make(map[string]bool)
				m.mu.Unlock()
				if len(pending) == 0 {
					continue
				}
				synced := m.syncPending(ws, rootAbs, pending)
				if onSync != nil && len(synced) > 0 {
					onSync(synced)
				}
			}
		}
	}()
	return nil
}

func (m *Mirror) noteEvent(watcher *fsnotify.Watcher, rootAbs string, event fsnotify.Event) {
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil {
			if info.IsDir() {
				_ = watcher.Add(event.Name)
				return
			}
			if isIgnored(event.Name, info) {
				return
			}
		}
	}
	m.mu.Lock()
	m.dirty[event.Name] = true
	m.mu.Unlock()
}

// syncPending reconciles dirty paths into the workspace and returns the
// relative paths that changed.
func (m *Mirror) syncPending(ws *workspace.Workspace, rootAbs string, pending map[string]bool) []string {
	var synced []string
	for abs := range pending {
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, "..") {
			continue
		}
		data, err := os.ReadFile(abs)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if ws.Exists(rel) {
				_ = ws.Delete(rel)
				synced = append(synced, rel)
			}
		case err == nil && !looksBinary(data):
			if ws.Exists(rel) {
				_ = ws.Update(rel, string(data))
			} else if err := ws.Add(workspace.File{Path: rel, Content: string(data)}); err != nil {
				continue
			}
			synced = append(synced, rel)
		}
	}
	return synced
}
