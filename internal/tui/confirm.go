package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yubzen/fileops/internal/engine"
	"github.com/yubzen/fileops/internal/ops"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Background(lipgloss.Color("235")).
			Padding(1, 2)
	confirmTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	confirmHintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	confirmBodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	confirmDeleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	confirmEditStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// ConfirmModel is the approval modal for a destructive batch. It lists
// the deletions and overwrites, shows the rendered previews in a
// scrollable body, and resolves to a single yes/no decision.
type ConfirmModel struct {
	Title    string
	Message  string
	body     string
	decided  bool
	approved bool
	width    int
	height   int
	viewport viewport.Model
}

func NewConfirmModel(req engine.ConfirmRequest) *ConfirmModel {
	m := &ConfirmModel{
		Title:    strings.TrimSpace(req.Title),
		Message:  strings.TrimSpace(req.Message),
		body:     renderRequestBody(req),
		viewport: viewport.New(70, 14),
	}
	if m.Title == "" {
		m.Title = "Confirm Destructive Operations"
	}
	m.refreshBody()
	return m
}

func (m *ConfirmModel) SetSize(width, height int) {
	if m == nil || width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height

	bodyWidth := width - 12
	if bodyWidth < 36 {
		bodyWidth = 36
	}
	bodyHeight := height - 12
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	m.viewport.Width = bodyWidth
	m.viewport.Height = bodyHeight
	m.refreshBody()
}

// Decision reports the answer once the user has made one.
func (m *ConfirmModel) Decision() (approved, decided bool) {
	if m == nil {
		return false, false
	}
	return m.approved, m.decided
}

func (m *ConfirmModel) Init() tea.Cmd { return nil }

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "enter":
			m.decided = true
			m.approved = true
			return m, tea.Quit
		case "n", "esc", "q", "ctrl+c":
			m.decided = true
			m.approved = false
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ConfirmModel) View() string {
	title := confirmTitleStyle.Render(m.Title)
	body := confirmBodyStyle.Render(m.viewport.View())
	hint := confirmHintStyle.Render("y/enter: apply  n/esc: cancel  up/down: scroll")
	boxStyle := confirmBoxStyle
	if m.width > 0 {
		boxStyle = boxStyle.MaxWidth(m.width)
	}
	return boxStyle.Render(fmt.Sprintf("%s\n\n%s\n\n%s", title, body, hint))
}

func (m *ConfirmModel) refreshBody() {
	width := m.viewport.Width
	if width <= 0 {
		width = 70
	}
	m.viewport.SetContent(lipgloss.NewStyle().Width(width).Render(m.body))
}

func renderRequestBody(req engine.ConfirmRequest) string {
	var b strings.Builder
	if msg := strings.TrimSpace(req.Message); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n\n")
	}
	for _, op := range req.Destructive {
		switch op.Kind {
		case ops.KindDelete:
			b.WriteString(confirmDeleteStyle.Render("delete") + "     " + op.Path + "\n")
		default:
			b.WriteString(confirmEditStyle.Render("overwrite") + "  " + op.Path + "\n")
		}
	}

	paths := make([]string, 0, len(req.Diffs))
	for path := range req.Diffs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		b.WriteString("\n--- " + path + " ---\n")
		b.WriteString(strings.TrimRight(req.Diffs[path], "\n"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Confirmer satisfies engine.ConfirmationProvider by running the modal
// as a full-screen program. Cancelling the context aborts the prompt
// and surfaces the context error so the caller records a cancellation.
type Confirmer struct{}

func (Confirmer) Confirm(ctx context.Context, req engine.ConfirmRequest) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(req), tea.WithAltScreen(), tea.WithContext(ctx))
	out, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
	final, ok := out.(*ConfirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected confirm model type %T", out)
	}
	approved, decided := final.Decision()
	return approved && decided, nil
}
