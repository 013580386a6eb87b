package ops

import (
	"path"
	"strings"
)

// NormalizePath collapses "." segments and duplicate separators so that
// equivalent spellings such as "./a.txt" and "a//b.txt" share one key.
// It does not validate; run ValidPath on the result. Backslash paths are
// returned untouched so the rejection rule still sees them.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || strings.Contains(p, "\\") {
		return p
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// ValidPath reports whether p satisfies the workspace path rule: forward
// slash separators only, relative, and no parent traversal. The same rule
// holds for imported files and for operation targets.
func ValidPath(p string) bool {
	if p == "" {
		return false
	}
	if strings.HasPrefix(p, "/") {
		return false
	}
	if strings.Contains(p, "\\") {
		return false
	}
	return !HasParentSegment(p)
}

// HasParentSegment reports whether any segment of p is "..".
func HasParentSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
