// Package browse is an interactive terminal browser for the classes of a dex
// file: a filterable class list and a scrollable smali listing per class.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
	"github.com/dhamidi/dexdis/format"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("dexdis.browse")

type classItem struct {
	class *dalvik.Class
}

func (i classItem) FilterValue() string { return i.class.Name() }
func (i classItem) Title() string       { return i.class.Name() }

func (i classItem) Description() string {
	var parts []string
	if flags := i.class.AccessFlagNames(); len(flags) > 0 {
		parts = append(parts, strings.Join(flags, " "))
	}
	if super := i.class.SuperType(); super != "" {
		parts = append(parts, "extends "+dex.SimpleName(super))
	}
	if n := len(i.class.Interfaces()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d interfaces", n))
	}
	return strings.Join(parts, " · ")
}

type Model struct {
	title   string
	classes []*dalvik.Class
	list    list.Model
	help    help.Model
	theme   format.Theme

	width  int
	height int

	selected  *dalvik.Class
	listing   string
	scrollPos int
	err       error
}

// New returns a browser over classes. title names the source in the header.
func New(title string, classes []*dalvik.Class) *Model {
	items := make([]list.Item, len(classes))
	for i, c := range classes {
		items[i] = classItem{class: c}
	}

	classList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	classList.Title = title
	classList.SetShowStatusBar(false)
	classList.SetFilteringEnabled(true)
	classList.SetShowHelp(false)

	return &Model{
		title:   title,
		classes: classes,
		list:    classList,
		help:    help.New(),
		theme:   format.ColorTheme(lipgloss.DefaultRenderer()),
	}
}

func Run(title string, classes []*dalvik.Class) error {
	program := tea.NewProgram(New(title, classes), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(max(msg.Height-2, 0))
		return m, nil

	case tea.KeyMsg:
		if m.selected == nil {
			return m.updateList(msg)
		}
		return m.updateListing(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the filter is being typed every key belongs to the list.
	if m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Enter):
			if item, ok := m.list.SelectedItem().(classItem); ok {
				m.open(item.class)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateListing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.selected = nil
		m.listing = ""
		m.err = nil
	case key.Matches(msg, keys.Up):
		m.scrollUp(1)
	case key.Matches(msg, keys.Down):
		m.scrollDown(1)
	case key.Matches(msg, keys.PageUp):
		m.scrollUp(m.viewportHeight())
	case key.Matches(msg, keys.PageDown):
		m.scrollDown(m.viewportHeight())
	case key.Matches(msg, keys.Top):
		m.scrollPos = 0
	}
	return m, nil
}

func (m *Model) open(c *dalvik.Class) {
	m.selected = c
	m.scrollPos = 0
	m.err = nil

	var sb strings.Builder
	enc := format.NewSmaliEncoder(&sb)
	enc.Theme = m.theme
	if err := enc.Encode(c); err != nil {
		log.Errorf("render %s: %v", c.ClassType(), err)
		m.err = err
		m.listing = ""
		return
	}
	m.listing = strings.TrimSuffix(sb.String(), "\n")
	log.Debugf("opened %s (%d lines)", c.ClassType(), strings.Count(m.listing, "\n")+1)
}

func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.selected == nil {
		status := StatusBarStyle.Width(m.width).Render(fmt.Sprintf("%s: %d classes", m.title, len(m.classes)))
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), status)
	}

	header := HeaderStyle.Width(m.width).Render(m.selected.Name())
	helpView := m.help.View(keys)

	var content string
	if m.err != nil {
		content = ErrorStyle.Render(fmt.Sprintf("Cannot render %s: %v", m.selected.ClassType(), m.err))
	} else {
		content = m.applyScrolling(m.listing, m.viewportHeight())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, helpView)
}

func (m *Model) viewportHeight() int {
	return max(m.height-3, 1)
}
