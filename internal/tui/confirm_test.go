package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yubzen/fileops/internal/engine"
	"github.com/yubzen/fileops/internal/ops"
)

func destructiveRequest() engine.ConfirmRequest {
	return engine.ConfirmRequest{
		Title:   "Confirm Destructive Operations",
		Message: "2 operations need approval.",
		Destructive: []ops.FileOperation{
			ops.Delete("old/config.yaml"),
			ops.Edit("main.go", "package main\n"),
		},
		Diffs: map[string]string{
			"main.go": "- package old\n+ package main",
		},
	}
}

func TestConfirmModelApprove(t *testing.T) {
	t.Parallel()

	modal := NewConfirmModel(destructiveRequest())
	modal.SetSize(120, 40)

	_, _ = modal.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	approved, decided := modal.Decision()
	if !decided || !approved {
		t.Fatalf("expected approve decision, got approved=%v decided=%v", approved, decided)
	}
}

func TestConfirmModelDeny(t *testing.T) {
	t.Parallel()

	modal := NewConfirmModel(destructiveRequest())
	modal.SetSize(120, 40)

	_, _ = modal.Update(tea.KeyMsg{Type: tea.KeyEsc})
	approved, decided := modal.Decision()
	if !decided || approved {
		t.Fatalf("expected deny decision, got approved=%v decided=%v", approved, decided)
	}
}

func TestConfirmModelViewListsOperationsAndDiffs(t *testing.T) {
	t.Parallel()

	modal := NewConfirmModel(destructiveRequest())
	modal.SetSize(120, 40)

	view := modal.View()
	for _, want := range []string{"old/config.yaml", "main.go", "+ package main"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestConfirmModelScrollDoesNotDecide(t *testing.T) {
	t.Parallel()

	modal := NewConfirmModel(destructiveRequest())
	modal.SetSize(120, 40)

	_, _ = modal.Update(tea.KeyMsg{Type: tea.KeyDown})
	if _, decided := modal.Decision(); decided {
		t.Fatal("scrolling must not resolve the prompt")
	}
}
