package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"r2-dashboard/internal/domain/search"
	"r2-dashboard/internal/uploader"
)

// uploadQueue is the part of uploader.Manager the progress view drives.
type uploadQueue interface {
	Run(ctx context.Context) error
	Cancel(id string) bool
	RetryFailed() int
	InFlight() bool
	Snapshot() []uploader.Item
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Padding(0, 1)
)

// Messages
type itemUpdatedMsg uploader.Item
type runFinishedMsg struct{ err error }

// progressModel renders one progress bar per queued file.
type progressModel struct {
	ctx        context.Context
	cancel     context.CancelFunc
	queue      uploadQueue
	target     string
	items      []uploader.Item
	bar        progress.Model
	cursor     int
	running    bool
	confirming bool
	aborted    bool
	width      int
}

func newProgressModel(ctx context.Context, queue uploadQueue, target string) progressModel {
	ctx, cancel := context.WithCancel(ctx)
	return progressModel{
		ctx:     ctx,
		cancel:  cancel,
		queue:   queue,
		target:  target,
		items:   queue.Snapshot(),
		running: true,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.runQueue()
}

func (m progressModel) runQueue() tea.Cmd {
	queue, ctx := m.queue, m.ctx
	return func() tea.Msg {
		return runFinishedMsg{err: queue.Run(ctx)}
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(40, msg.Width-50))
		return m, nil

	case itemUpdatedMsg:
		for i := range m.items {
			if m.items[i].ID == msg.ID {
				m.items[i] = uploader.Item(msg)
				break
			}
		}
		return m, nil

	case runFinishedMsg:
		m.running = false
		m.items = m.queue.Snapshot()
		if m.aborted || m.failed() == 0 {
			m.cancel()
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m progressModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		switch msg.String() {
		case "y", "Y":
			m.aborted = true
			m.cancel()
			return m, tea.Quit
		case "n", "N", "esc":
			m.confirming = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		if m.queue.InFlight() {
			m.confirming = true
			return m, nil
		}
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "x":
		if m.cursor < len(m.items) {
			m.queue.Cancel(m.items[m.cursor].ID)
		}
	case "r":
		if !m.running && m.queue.RetryFailed() > 0 {
			m.items = m.queue.Snapshot()
			m.running = true
			return m, m.runQueue()
		}
	}
	return m, nil
}

func (m progressModel) failed() int {
	n := 0
	for _, item := range m.items {
		if item.Status == uploader.StatusError {
			n++
		}
	}
	return n
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Uploading %d file(s) to %s", len(m.items), m.target)))
	b.WriteString("\n\n")

	for i, item := range m.items {
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		b.WriteString(pointer)
		b.WriteString(fmt.Sprintf("%-28s ", truncate(item.Name, 28)))
		b.WriteString(m.bar.ViewAs(item.Progress()))
		b.WriteString(" ")
		b.WriteString(statusLabel(item))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.confirming:
		b.WriteString(confirmStyle.Render("Uploads are still running. Quit and cancel them? (y/n)"))
	case m.running:
		b.WriteString(helpStyle.Render("↑/↓ select • x cancel • q quit"))
	default:
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d failed • r retry failed • q quit", m.failed())))
	}
	b.WriteString("\n")
	return b.String()
}

func statusLabel(item uploader.Item) string {
	switch item.Status {
	case uploader.StatusDone:
		return doneStyle.Render("done " + search.FormatFileSize(float64(item.Size)))
	case uploader.StatusError:
		return errorStyle.Render(item.Error)
	case uploader.StatusUploading:
		return fmt.Sprintf("%s / %s", search.FormatFileSize(float64(item.Sent)), search.FormatFileSize(float64(item.Size)))
	default:
		return "queued"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
