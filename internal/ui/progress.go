// Package ui renders interactive terminal views for long-running commands.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"noticekit/internal/compare"
)

type progressModel struct {
	title   string
	events  <-chan compare.Event
	spinner spinner.Model
	prog    progress.Model
	items   []datasetItem
	index   map[string]int
	failed  int
	width   int
	done    bool
}

type datasetItem struct {
	id     string
	status compare.Status
}

type eventMsg compare.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders acceptance progress
// for the given datasets. The model quits once events is closed.
func NewProgressModel(title string, datasets []string, events <-chan compare.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   make([]datasetItem, 0, len(datasets)),
		index:   make(map[string]int, len(datasets)),
		width:   80,
	}
	for _, id := range datasets {
		m.track(id)
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(compare.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.failed > 0 {
		header = fmt.Sprintf("%s (%d corrupted)", header, m.failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 8
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.id, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) track(id string) int {
	if idx, ok := m.index[id]; ok {
		return idx
	}
	m.items = append(m.items, datasetItem{id: id, status: compare.StatusQueued})
	m.index[id] = len(m.items) - 1
	return len(m.items) - 1
}

func (m *progressModel) applyEvent(ev compare.Event) tea.Cmd {
	if ev.Dataset == "" || ev.Status == "" {
		return nil
	}
	idx := m.track(ev.Dataset)
	if m.items[idx].status != compare.StatusError && ev.Status == compare.StatusError {
		m.failed++
	}
	m.items[idx].status = ev.Status
	return m.prog.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		total += progressFromStatus(item.status)
	}
	return total / float64(len(m.items))
}

func progressFromStatus(status compare.Status) float64 {
	switch status {
	case compare.StatusDone, compare.StatusError:
		return 1.0
	case compare.StatusWorking:
		return 0.5
	default:
		return 0.0
	}
}

func styleStatus(status compare.Status) lipgloss.Style {
	switch status {
	case compare.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case compare.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case compare.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
