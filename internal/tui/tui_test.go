package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"healthpage/internal/core"
	"healthpage/internal/pipeline"
)

type stubRunner struct {
	got []pipeline.Request
}

func (s *stubRunner) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	s.got = append(s.got, req)
	return &pipeline.Result{
		Status:     pipeline.StatusSuccess,
		Message:    pipeline.MessageSuccess,
		OutputPath: "prototype-final.html",
		Pairings:   []core.Pairing{{Title: "Stretch", ImagePath: "img1.jpg"}},
	}, nil
}

func press(m model, keys ...tea.KeyMsg) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditAge(t *testing.T) {
	m := InitialModel(context.Background(), &stubRunner{})
	m, _ = press(m,
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyBackspace},
		runes("6x5"),
		runes("12"),
	)
	if m.age != "651" {
		t.Errorf("Expected digits only, capped at three, got %q", m.age)
	}
}

func TestToggleGender(t *testing.T) {
	m := InitialModel(context.Background(), &stubRunner{})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyRight})
	if m.gender != core.GenderFemale {
		t.Errorf("Expected female after toggle, got %s", m.gender)
	}
	m, _ = press(m, runes("m"))
	if m.gender != core.GenderMale {
		t.Errorf("Expected male, got %s", m.gender)
	}
}

func TestSubmitRunsPipeline(t *testing.T) {
	runner := &stubRunner{}
	m := InitialModel(context.Background(), runner)
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.running || cmd == nil {
		t.Fatal("Expected a running state and a command")
	}
	if !strings.Contains(m.View(), "Generating") {
		t.Error("Expected progress in view")
	}

	next, _ := m.Update(cmd())
	m = next.(model)
	if m.running {
		t.Error("Expected run to finish")
	}
	if len(runner.got) != 1 || runner.got[0].Age != 30 || runner.got[0].Gender != "male" {
		t.Errorf("Unexpected request %+v", runner.got)
	}
	view := m.View()
	for _, want := range []string{"Page generated successfully.", "Stretch", "prototype-final.html"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestSubmitEmptyAge(t *testing.T) {
	runner := &stubRunner{}
	m := InitialModel(context.Background(), runner)
	m, cmd := press(m,
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if cmd != nil || m.err == nil {
		t.Error("Expected validation error without a run")
	}
	if len(runner.got) != 0 {
		t.Error("Expected runner not to be called")
	}
}

func TestQuit(t *testing.T) {
	m := InitialModel(context.Background(), &stubRunner{})
	m, cmd := press(m, runes("q"))
	if m.quitting || cmd != nil {
		t.Error("Expected q to be ignored while editing age")
	}
	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.quitting || cmd == nil {
		t.Error("Expected esc to quit")
	}
}
