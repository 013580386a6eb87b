// Package parser recovers typed file operations from free-form model
// responses. Extraction runs as an ordered list of independent pure
// strategies; the first strategy producing at least one operation wins and
// nothing is merged across strategies.
package parser

import (
	"strings"

	"github.com/yubzen/fileops/internal/ops"
)

// Parser holds extraction tuning. The zero value is ready to use.
type Parser struct {
	// DisableLooseFallback turns off the last-resort eager strategy.
	// Everything before it is precise enough to stay always-on.
	DisableLooseFallback bool
}

// Parse extracts candidate operations from a raw response. It never fails:
// a response with no recoverable file intent yields an empty batch. The
// result is a pure function of the input text.
func (p *Parser) Parse(text string) []ops.FileOperation {
	strategies := []func(string) []ops.FileOperation{
		p.parseSchema,
		p.parseCanonicalBlocks,
		p.parseDirectivePhrases,
		p.parseHeadings,
		p.parseInlineCode,
		p.parseSavePhrases,
	}
	if !p.DisableLooseFallback {
		strategies = append(strategies, p.parseLooseFallback)
	}
	for _, strategy := range strategies {
		if batch := strategy(text); len(batch) > 0 {
			return batch
		}
	}
	return nil
}

// Parse runs a zero-value Parser.
func Parse(text string) []ops.FileOperation {
	var p Parser
	return p.Parse(text)
}

// parseSchema decodes the structured operation-list payload. It only
// applies when the trimmed response starts with an opening brace; a
// payload that fails to decode falls through to the text strategies.
func (p *Parser) parseSchema(text string) []ops.FileOperation {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	batch, err := ops.DecodeEnvelope(trimmed)
	if err != nil {
		return nil
	}
	out := make([]ops.FileOperation, 0, len(batch))
	for _, op := range batch {
		op.Path = cleanPath(op.Path)
		if !acceptPath(op.Path) {
			continue
		}
		out = append(out, op)
	}
	return out
}
