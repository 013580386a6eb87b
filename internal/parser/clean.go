package parser

import (
	"regexp"
	"strings"

	"github.com/yubzen/fileops/internal/ops"
)

var (
	// filenameTokenRe matches a path-like token ending in a dot extension.
	// Leading separators and parent segments are captured on purpose so the
	// rejection rule can see them.
	filenameTokenRe = regexp.MustCompile(`[^\s"'` + "`" + `]+\.[A-Za-z0-9]+`)

	quotedTokenRe = regexp.MustCompile(`["'` + "`" + `]([^"'` + "`" + `\n]+)["'` + "`" + `]`)

	commentLineRe = regexp.MustCompile(`^\s*(//|#|--|;|<!--|/\*)\s*`)
)

// cleanPath strips surrounding whitespace, quote characters, and trailing
// sentence punctuation from an extracted path candidate, then collapses
// the result to canonical form so the engine and the workspace store
// agree on the key.
func cleanPath(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.Trim(p, "\"'`")
	p = strings.TrimRight(p, ".,;:!?)")
	return ops.NormalizePath(strings.TrimSpace(p))
}

// acceptPath applies the parse-time rejection rule: candidates with a
// parent segment, a leading separator, a backslash, no dot extension, or
// nothing left after cleanup are dropped silently.
func acceptPath(p string) bool {
	if p == "" {
		return false
	}
	if !ops.ValidPath(p) {
		return false
	}
	return hasExtension(p)
}

func hasExtension(p string) bool {
	base := p
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	dot := strings.LastIndex(base, ".")
	return dot > 0 && dot < len(base)-1
}

// cleanContent strips a leading filename-comment line and surrounding
// blank lines from extracted block content.
func cleanContent(body string) string {
	lines := strings.Split(body, "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	lines = lines[start:end]

	if len(lines) > 0 && isFilenameComment(lines[0]) {
		lines = lines[1:]
		for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
			lines = lines[1:]
		}
	}
	return strings.Join(lines, "\n")
}

// isFilenameComment reports whether a line is a comment whose only payload
// is a filename-like token, e.g. "// src/app.go" or "# config.yaml".
func isFilenameComment(line string) bool {
	loc := commentLineRe.FindStringIndex(line)
	if loc == nil {
		return false
	}
	rest := strings.TrimSpace(line[loc[1]:])
	rest = strings.TrimSuffix(rest, "-->")
	rest = strings.TrimSuffix(rest, "*/")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return false
	}
	fields := strings.Fields(rest)
	if len(fields) != 1 {
		return false
	}
	return hasExtension(fields[0])
}

// pathTokenFromLine extracts the path candidate from a line. A quoted
// token that looks like a filename is the candidate; otherwise the first
// bare filename-like token is. A rejected candidate is dropped, never
// replaced by a later token on the same line.
func pathTokenFromLine(line string) string {
	if m := quotedTokenRe.FindStringSubmatch(line); m != nil {
		p := cleanPath(m[1])
		if hasExtension(p) || strings.Contains(p, "/") || strings.Contains(p, "\\") {
			if acceptPath(p) {
				return p
			}
			return ""
		}
	}
	if tok := filenameTokenRe.FindString(line); tok != "" {
		p := cleanPath(tok)
		if acceptPath(p) {
			return p
		}
	}
	return ""
}
