package engine

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const maxPreviewLines = 200

// renderDiff builds a compact line diff for confirmation previews of
// edits that would overwrite existing content.
func renderDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []string
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, line := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				out = append(out, "- "+line)
			case diffmatchpatch.DiffInsert:
				out = append(out, "+ "+line)
			default:
				out = append(out, "  "+line)
			}
			if len(out) >= maxPreviewLines {
				return strings.Join(out, "\n") + "\n... (preview truncated)"
			}
		}
	}
	return strings.Join(out, "\n")
}
