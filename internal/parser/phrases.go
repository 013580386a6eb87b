package parser

import (
	"regexp"

	"github.com/yubzen/fileops/internal/ops"
)

var (
	createVerbRe = regexp.MustCompile(`(?i)\b(create|add|new|build|generate)\b`)
	editVerbRe   = regexp.MustCompile(`(?i)\b(edit|update|modify)\b`)
	deleteVerbRe = regexp.MustCompile(`(?i)\b(delete|remove)\b`)

	headingRe = regexp.MustCompile(`^\s*#{1,6}\s+(.+?)\s*$`)

	inlineCodeRe = regexp.MustCompile("`([^`\n]+)`")

	saveAsRe = regexp.MustCompile(`(?i)\b(?:save|write)\b[^\n]*?\b(?:as|to)\b\s+(\S+)`)
)

// parseDirectivePhrases scans for natural-language directives. Creation
// and edit phrasing needs a fenced block to supply content; deletion
// phrasing needs only a path.
func (p *Parser) parseDirectivePhrases(text string) []ops.FileOperation {
	lines := splitLines(text)
	fences := scanFences(lines)
	consumed := make(map[int]bool)

	var out []ops.FileOperation

	collect := func(verbRe *regexp.Regexp, kind ops.Kind) {
		for i, line := range lines {
			if insideFence(fences, i) {
				continue
			}
			if !verbRe.MatchString(line) {
				continue
			}
			path := pathTokenFromLine(line)
			if path == "" {
				continue
			}
			if kind == ops.KindDelete {
				out = append(out, ops.Delete(path))
				continue
			}
			f, ok := fenceAfter(fences, consumed, i, 4)
			if !ok {
				continue
			}
			content := cleanContent(f.body)
			if kind == ops.KindCreate {
				out = append(out, ops.Create(path, content))
			} else {
				out = append(out, ops.Edit(path, content))
			}
		}
	}

	collect(createVerbRe, ops.KindCreate)
	collect(editVerbRe, ops.KindEdit)
	collect(deleteVerbRe, ops.KindDelete)

	return dedupe(out)
}

// parseHeadings treats a markdown heading whose text ends in a file
// extension, immediately followed by a fenced block, as an implicit Create.
func (p *Parser) parseHeadings(text string) []ops.FileOperation {
	lines := splitLines(text)
	fences := scanFences(lines)
	consumed := make(map[int]bool)

	var out []ops.FileOperation
	for i, line := range lines {
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		path := cleanPath(m[1])
		if !acceptPath(path) {
			continue
		}
		f, ok := fenceAfter(fences, consumed, i, 2)
		if !ok {
			continue
		}
		out = append(out, ops.Create(path, cleanContent(f.body)))
	}
	return dedupe(out)
}

// parseInlineCode treats an inline code span holding a filename, followed
// shortly by a fenced block, as an implicit Create.
func (p *Parser) parseInlineCode(text string) []ops.FileOperation {
	lines := splitLines(text)
	fences := scanFences(lines)
	consumed := make(map[int]bool)

	var out []ops.FileOperation
	for i, line := range lines {
		if insideFence(fences, i) {
			continue
		}
		for _, m := range inlineCodeRe.FindAllStringSubmatch(line, -1) {
			path := cleanPath(m[1])
			if !acceptPath(path) {
				continue
			}
			f, ok := fenceAfter(fences, consumed, i, 4)
			if !ok {
				continue
			}
			out = append(out, ops.Create(path, cleanContent(f.body)))
			break
		}
	}
	return dedupe(out)
}

// parseSavePhrases recovers "save ... as <path>" / "write ... to <path>"
// phrasing followed by a fenced block, as a Create.
func (p *Parser) parseSavePhrases(text string) []ops.FileOperation {
	lines := splitLines(text)
	fences := scanFences(lines)
	consumed := make(map[int]bool)

	var out []ops.FileOperation
	for i, line := range lines {
		if insideFence(fences, i) {
			continue
		}
		m := saveAsRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		path := cleanPath(m[1])
		if !acceptPath(path) {
			continue
		}
		f, ok := fenceAfter(fences, consumed, i, 4)
		if !ok {
			continue
		}
		out = append(out, ops.Create(path, cleanContent(f.body)))
	}
	return dedupe(out)
}

// parseLooseFallback associates any line holding a creation verb and a
// filename-like token with the nearest following fenced block. It runs
// only when every prior strategy yields nothing, and only when enabled:
// its matching is deliberately eager and tunable.
func (p *Parser) parseLooseFallback(text string) []ops.FileOperation {
	lines := splitLines(text)
	fences := scanFences(lines)
	consumed := make(map[int]bool)

	var out []ops.FileOperation
	for i, line := range lines {
		if insideFence(fences, i) {
			continue
		}
		if !createVerbRe.MatchString(line) {
			continue
		}
		path := pathTokenFromLine(line)
		if path == "" {
			continue
		}
		f, ok := fenceAfter(fences, consumed, i, 10)
		if !ok {
			continue
		}
		out = append(out, ops.Create(path, cleanContent(f.body)))
	}
	return dedupe(out)
}

// insideFence reports whether line index i falls within any fenced block,
// delimiters included. Prose strategies skip such lines so code bodies are
// never mined for directives.
func insideFence(fences []fence, i int) bool {
	for _, f := range fences {
		if i >= f.start && i <= f.end {
			return true
		}
		if f.start > i {
			break
		}
	}
	return false
}
