package parser

import (
	"regexp"
	"strings"

	"github.com/yubzen/fileops/internal/ops"
)

// fence is one fenced code block: delimiter line indexes plus the raw body.
type fence struct {
	start int // index of the opening ``` line
	end   int // index of the closing ``` line, or len(lines) when unclosed
	lang  string
	body  string
}

var fenceOpenRe = regexp.MustCompile("^\\s*```(\\S*)\\s*$")

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// scanFences collects every fenced block in order. An unclosed trailing
// fence still yields a block running to the end of the text.
func scanFences(lines []string) []fence {
	var fences []fence
	for i := 0; i < len(lines); i++ {
		m := fenceOpenRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		f := fence{start: i, end: len(lines), lang: strings.ToLower(m[1])}
		bodyEnd := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				f.end = j
				bodyEnd = j
				break
			}
		}
		f.body = strings.Join(lines[f.start+1:bodyEnd], "\n")
		fences = append(fences, f)
		i = f.end
	}
	return fences
}

// fenceAfter returns the first unconsumed fence opening within maxGap
// lines after the given line index.
func fenceAfter(fences []fence, consumed map[int]bool, line, maxGap int) (fence, bool) {
	for idx, f := range fences {
		if consumed[idx] {
			continue
		}
		if f.start > line && f.start <= line+maxGap {
			consumed[idx] = true
			return f, true
		}
		if f.start > line+maxGap {
			break
		}
	}
	return fence{}, false
}

var (
	opLabelRe  = regexp.MustCompile(`(?i)\*\*\s*FILE OPERATION:\s*(CREATE|EDIT|DELETE)\s*\*\*`)
	pathLineRe = regexp.MustCompile(`(?i)^\s*\**\s*Path\s*\**\s*:\s*(.+)$`)
)

// parseCanonicalBlocks recovers explicit operation blocks of the form:
//
//	**FILE OPERATION: CREATE**
//	Path: relative/path.ext
//	```lang
//	content
//	```
//
// DELETE blocks omit the fenced body.
func (p *Parser) parseCanonicalBlocks(text string) []ops.FileOperation {
	lines := splitLines(text)
	fences := scanFences(lines)
	consumed := make(map[int]bool)

	var out []ops.FileOperation
	for i, line := range lines {
		m := opLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind := kindFromLabel(m[1])

		// the Path line follows the label, allowing blank lines between
		pathValue := ""
		pathLine := -1
		for j := i + 1; j < len(lines) && j <= i+3; j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			if pm := pathLineRe.FindStringSubmatch(lines[j]); pm != nil {
				pathValue = cleanPath(pm[1])
				pathLine = j
			}
			break
		}
		if pathLine < 0 || !acceptPath(pathValue) {
			continue
		}

		switch kind {
		case ops.KindDelete:
			out = append(out, ops.Delete(pathValue))
		default:
			content := ""
			if f, ok := fenceAfter(fences, consumed, pathLine, 3); ok {
				content = cleanContent(f.body)
			}
			if kind == ops.KindCreate {
				out = append(out, ops.Create(pathValue, content))
			} else {
				out = append(out, ops.Edit(pathValue, content))
			}
		}
	}
	return dedupe(out)
}

func kindFromLabel(label string) ops.Kind {
	switch strings.ToUpper(label) {
	case "CREATE":
		return ops.KindCreate
	case "EDIT":
		return ops.KindEdit
	default:
		return ops.KindDelete
	}
}

// dedupe drops repeated (kind, path) pairs within one strategy's result,
// keeping the first occurrence.
func dedupe(batch []ops.FileOperation) []ops.FileOperation {
	if len(batch) < 2 {
		return batch
	}
	seen := make(map[string]bool, len(batch))
	out := batch[:0]
	for _, op := range batch {
		key := string(op.Kind) + "\x00" + op.Path
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, op)
	}
	return out
}
