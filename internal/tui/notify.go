package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yubzen/fileops/internal/engine"
)

var (
	notifySuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	notifyWarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	notifyErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	notifyTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	notifyActionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
)

// PrintNotifier writes styled one-line notifications to Out and keeps
// the actions offered by the most recent notification so the front-end
// can run one later, e.g. an undo offered after a successful batch.
type PrintNotifier struct {
	Out io.Writer

	mu      sync.Mutex
	actions []engine.Action
}

func NewPrintNotifier(out io.Writer) *PrintNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &PrintNotifier{Out: out}
}

func (n *PrintNotifier) Notify(level engine.Level, message string, actions ...engine.Action) {
	prefix := notifyTag(level)

	var hint string
	if len(actions) > 0 {
		labels := make([]string, 0, len(actions))
		for _, action := range actions {
			labels = append(labels, action.Label)
		}
		hint = "  " + notifyActionStyle.Render("("+strings.Join(labels, ", ")+" available)")
	}
	fmt.Fprintf(n.Out, "%s %s%s\n", prefix, notifyTextStyle.Render(message), hint)

	n.mu.Lock()
	n.actions = append([]engine.Action(nil), actions...)
	n.mu.Unlock()
}

// RunAction runs the pending action with the given label, if any, and
// reports whether one was found. Actions are consumed on use.
func (n *PrintNotifier) RunAction(label string) (bool, error) {
	n.mu.Lock()
	var found *engine.Action
	for i := range n.actions {
		if strings.EqualFold(n.actions[i].Label, label) {
			found = &n.actions[i]
			break
		}
	}
	if found == nil {
		n.mu.Unlock()
		return false, nil
	}
	run := found.Run
	n.actions = nil
	n.mu.Unlock()

	if run == nil {
		return true, nil
	}
	return true, run()
}

func notifyTag(level engine.Level) string {
	switch level {
	case engine.LevelSuccess:
		return notifySuccessStyle.Render("ok")
	case engine.LevelWarning:
		return notifyWarningStyle.Render("warn")
	case engine.LevelError:
		return notifyErrorStyle.Render("error")
	}
	return notifyTextStyle.Render(string(level))
}
