package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imagedrop/service/internal/intake"
)

type batchMsg intake.BatchEvent

type submitDoneMsg struct {
	err error
}

// Model is the terminal dropzone. It forwards terminal events to an
// intake.Controller and draws the zone in the controller's visual state.
type Model struct {
	ctx  context.Context
	ctrl *intake.Controller
	bus  *intake.PointerBus

	prompt     textinput.Model
	prompting  bool
	spinner    spinner.Model
	submitting bool
	focused    bool

	width  int
	status string
	err    error
}

// New returns a Model driving ctrl. Pointer presses are published on bus.
func New(ctx context.Context, ctrl *intake.Controller, bus *intake.PointerBus) *Model {
	prompt := textinput.New()
	prompt.Placeholder = "paths separated by spaces"
	prompt.Prompt = "files> "
	prompt.Width = 60

	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		bus:     bus,
		prompt:  prompt,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		status:  "drop or paste files here",
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.remount()
	return m.waitBatch()
}

func (m *Model) waitBatch() tea.Cmd {
	return func() tea.Msg {
		ev, err := m.ctrl.WaitBatch(m.ctx)
		if err != nil {
			return nil
		}
		return batchMsg(ev)
	}
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: m.ctrl.Submit(m.ctx)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.remount()
		return m, nil

	case tea.FocusMsg:
		m.ctrl.OnFocusGained()
		return m, nil

	case tea.BlurMsg:
		m.ctrl.OnFocusLost()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case batchMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.status = "selection discarded"
		} else {
			m.err = nil
			m.status = fmt.Sprintf("%d file(s) ready, press s to upload", len(msg.Files))
		}
		m.remount()
		return m, m.waitBatch()

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "upload failed"
		} else {
			m.err = nil
			m.status = "upload finished"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.prompting {
			return m.handlePromptKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Bracketed paste carries dropped paths.
	if msg.Paste {
		m.ctrl.OnDrop(intake.LocalFiles(splitPaths(string(msg.Runes))))
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.quit):
		m.ctrl.Unmount()
		return m, tea.Quit

	case key.Matches(msg, keys.tab):
		m.focused = !m.focused
		if m.focused {
			m.ctrl.OnFocusGained()
		} else {
			m.ctrl.OnFocusLost()
		}
		return m, nil

	case key.Matches(msg, keys.enter):
		return m, m.openPrompt()

	case key.Matches(msg, keys.submit):
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.err = nil
		m.status = "uploading"
		return m, tea.Batch(m.submit(), m.spinner.Tick)
	}

	return m, nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, keys.enter):
		paths := splitPaths(m.prompt.Value())
		m.closePrompt()
		m.ctrl.OnPick(intake.LocalFiles(paths))
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	m.bus.Publish(intake.PointerEvent{X: msg.X, Y: msg.Y})

	// A press inside the zone opens the picker.
	if m.zoneRegion().Contains(msg.X, msg.Y) && !m.prompting {
		return m, m.openPrompt()
	}
	return m, nil
}

func (m *Model) openPrompt() tea.Cmd {
	m.prompting = true
	m.prompt.SetValue("")
	return m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.prompt.Blur()
}

// remount re-subscribes the controller with the zone's current bounds.
func (m *Model) remount() {
	m.ctrl.Mount(m.bus, m.zoneRegion())
}

func (m *Model) zoneRegion() intake.Region {
	box := m.zoneView()
	return intake.Region{
		X:      appPadLeft,
		Y:      appPadTop + titleLines,
		Width:  lipgloss.Width(box),
		Height: lipgloss.Height(box),
	}
}

func (m *Model) zoneView() string {
	files := m.ctrl.Files()

	var b strings.Builder
	if len(files) == 0 {
		b.WriteString(slotStyle.Render("no files selected"))
	}
	for i, f := range files {
		if i > 0 {
			b.WriteByte('\n')
		}
		if f.Thumbnail != "" {
			b.WriteString("[img] " + f.Name)
		} else {
			b.WriteString(slotStyle.Render("[   ] " + f.Name))
		}
	}

	style := zoneStyle.BorderForeground(borderColor(m.ctrl.State()))
	if w := m.width - 2*appPadLeft - 2; w > 20 {
		style = style.Width(w)
	}
	return style.Render(b.String())
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("imagedrop"))
	b.WriteString("\n\n")
	b.WriteString(m.zoneView())
	b.WriteString("\n")

	if m.prompting {
		b.WriteString(promptStyle.Render(m.prompt.View()))
		b.WriteString("\n")
	}

	status := m.status
	if m.submitting {
		status = m.spinner.View() + " " + status
	}
	b.WriteString("\n" + status + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("paste paths to drop • enter pick • tab focus • s upload • q quit"))
	return appStyle.Render(b.String())
}
