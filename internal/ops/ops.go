package ops

import (
	"encoding/json"
	"strings"
)

// Kind identifies what an operation does to its target path.
type Kind string

const (
	KindCreate Kind = "create"
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
)

// Wire names used by the structured payload encoding.
const (
	wireCreate = "create_file"
	wireEdit   = "edit_file"
	wireDelete = "delete_file"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCreate, KindEdit, KindDelete:
		return true
	default:
		return false
	}
}

func (k Kind) Wire() string {
	switch k {
	case KindCreate:
		return wireCreate
	case KindEdit:
		return wireEdit
	case KindDelete:
		return wireDelete
	default:
		return string(k)
	}
}

// KindFromWire maps a structured payload operation name to a Kind.
func KindFromWire(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case wireCreate:
		return KindCreate, true
	case wireEdit:
		return KindEdit, true
	case wireDelete:
		return KindDelete, true
	default:
		return "", false
	}
}

// FileOperation is one recovered request against the workspace. Content is
// required for create and edit (empty string is a valid content) and absent
// for delete.
type FileOperation struct {
	Kind    Kind
	Path    string
	Content *string
}

func Create(path, content string) FileOperation {
	return FileOperation{Kind: KindCreate, Path: path, Content: &content}
}

func Edit(path, content string) FileOperation {
	return FileOperation{Kind: KindEdit, Path: path, Content: &content}
}

func Delete(path string) FileOperation {
	return FileOperation{Kind: KindDelete, Path: path}
}

func (op FileOperation) HasContent() bool {
	return op.Content != nil
}

func (op FileOperation) ContentString() string {
	if op.Content == nil {
		return ""
	}
	return *op.Content
}

// Envelope is the structured payload encoding of an operation batch.
type Envelope struct {
	Operations []EnvelopeEntry `json:"operations"`
}

type EnvelopeEntry struct {
	Operation string  `json:"operation"`
	Path      string  `json:"path"`
	Content   *string `json:"content,omitempty"`
}

// DecodeEnvelope parses a structured payload. Entries whose operation name
// is not recognized are dropped rather than failing the whole payload.
func DecodeEnvelope(raw string) ([]FileOperation, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	out := make([]FileOperation, 0, len(env.Operations))
	for _, entry := range env.Operations {
		kind, ok := KindFromWire(entry.Operation)
		if !ok {
			continue
		}
		op := FileOperation{Kind: kind, Path: strings.TrimSpace(entry.Path)}
		if kind != KindDelete {
			op.Content = entry.Content
		}
		out = append(out, op)
	}
	return out, nil
}

// EncodeEnvelope renders a batch back into the structured payload form.
func EncodeEnvelope(batch []FileOperation) ([]byte, error) {
	env := Envelope{Operations: make([]EnvelopeEntry, 0, len(batch))}
	for _, op := range batch {
		entry := EnvelopeEntry{Operation: op.Kind.Wire(), Path: op.Path}
		if op.Kind != KindDelete {
			entry.Content = op.Content
		}
		env.Operations = append(env.Operations, entry)
	}
	return json.MarshalIndent(env, "", "  ")
}
