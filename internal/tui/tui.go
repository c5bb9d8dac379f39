package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthpage/internal/core"
	"healthpage/internal/pipeline"
)

// Runner produces a page for a demographic request.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

type field int

const (
	fieldAge field = iota
	fieldGender
)

const maxAgeDigits = 3

// resultMsg carries the outcome of a pipeline run back into Update.
type resultMsg struct {
	result *pipeline.Result
	err    error
}

// model is the state of the demographic form.
type model struct {
	ctx      context.Context
	runner   Runner
	focus    field
	age      string
	gender   core.Gender
	running  bool
	result   *pipeline.Result
	err      error
	width    int
	quitting bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4a90e2"))
	labelStyle   = lipgloss.NewStyle().Width(8)
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e26aa5")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	resultBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// InitialModel returns the form with default values.
func InitialModel(ctx context.Context, runner Runner) model {
	return model{
		ctx:    ctx,
		runner: runner,
		age:    "30",
		gender: core.GenderMale,
	}
}

// Init is the first command that will be run. We don't need any for now.
func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case resultMsg:
		m.running = false
		m.result, m.err = msg.result, msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "q":
			if m.focus != fieldAge {
				m.quitting = true
				return m, tea.Quit
			}
		case "tab", "shift+tab", "up", "down":
			m.focus = (m.focus + 1) % 2
		case "enter":
			return m.submit()
		default:
			m = m.edit(msg)
		}
	}

	return m, nil
}

func (m model) edit(msg tea.KeyMsg) model {
	if m.running {
		return m
	}
	switch m.focus {
	case fieldAge:
		switch msg.Type {
		case tea.KeyBackspace:
			if len(m.age) > 0 {
				m.age = m.age[:len(m.age)-1]
			}
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				if r >= '0' && r <= '9' && len(m.age) < maxAgeDigits {
					m.age += string(r)
				}
			}
		}
	case fieldGender:
		switch msg.String() {
		case "left", "right", " ", "h", "l":
			if m.gender == core.GenderMale {
				m.gender = core.GenderFemale
			} else {
				m.gender = core.GenderMale
			}
		case "m":
			m.gender = core.GenderMale
		case "f":
			m.gender = core.GenderFemale
		}
	}
	return m
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	age, err := strconv.Atoi(m.age)
	if err != nil {
		m.err = fmt.Errorf("age must be a whole number")
		m.result = nil
		return m, nil
	}

	m.running = true
	m.err, m.result = nil, nil
	req := pipeline.Request{Age: age, Gender: string(m.gender)}
	ctx, runner := m.ctx, m.runner
	return m, func() tea.Msg {
		res, err := runner.Run(ctx, req)
		return resultMsg{result: res, err: err}
	}
}

// View renders the TUI.
func (m model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Personalized Health Tips"))
	b.WriteString("\n\n")

	ageValue := m.age
	if m.focus == fieldAge {
		ageValue = focusStyle.Render(ageValue + "_")
	}
	b.WriteString(labelStyle.Render("Age") + ageValue + "\n")

	genderValue := fmt.Sprintf("< %s >", m.gender)
	if m.focus == fieldGender {
		genderValue = focusStyle.Render(genderValue)
	}
	b.WriteString(labelStyle.Render("Gender") + genderValue + "\n\n")

	switch {
	case m.running:
		b.WriteString(warnStyle.Render("Generating page..."))
	case m.err != nil:
		b.WriteString(errStyle.Render("Error: " + m.err.Error()))
	case m.result != nil:
		b.WriteString(resultBorder.Render(m.resultView()))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("[tab] Switch field | [←/→] Gender | [enter] Generate | [esc] Quit"))

	return docStyle.Render(b.String())
}

func (m model) resultView() string {
	res := m.result
	var lines []string
	if res.Status == pipeline.StatusSuccess {
		lines = append(lines, okStyle.Render(res.Message))
	} else {
		lines = append(lines, warnStyle.Render(res.Message))
	}
	for _, p := range res.Pairings {
		lines = append(lines, fmt.Sprintf("• %s → %s", p.Title, p.ImagePath))
	}
	if res.OutputPath != "" {
		lines = append(lines, "Saved to "+res.OutputPath)
	}
	for _, w := range res.Warnings {
		lines = append(lines, warnStyle.Render("! "+w))
	}
	return strings.Join(lines, "\n")
}

// Start runs the form until the user quits.
func Start(ctx context.Context, runner Runner) error {
	p := tea.NewProgram(InitialModel(ctx, runner), tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
