package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// CategoryPickerModel - Interactive category selection
// =============================================================================

// CategoryPickerModel is the bubbletea model for choosing the categories
// of a chart. Nothing checked means every category.
type CategoryPickerModel struct {
	Categories []string
	Checked    []bool
	Cursor     int
	Height     int
	Offset     int

	// Confirmed is set when the user accepts the selection with enter.
	Confirmed bool
}

// NewCategoryPickerModel creates a picker with the given categories
// preselected.
func NewCategoryPickerModel(categories, preselected []string) CategoryPickerModel {
	m := CategoryPickerModel{
		Categories: categories,
		Checked:    make([]bool, len(categories)),
		Height:     15,
	}
	pre := make(map[string]bool, len(preselected))
	for _, c := range preselected {
		pre[c] = true
	}
	for i, c := range categories {
		m.Checked[i] = pre[c]
	}
	return m
}

func (m CategoryPickerModel) Init() tea.Cmd {
	return nil
}

func (m CategoryPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Categories)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Checked) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := !m.allChecked()
			for i := range m.Checked {
				m.Checked[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CategoryPickerModel) allChecked() bool {
	for _, c := range m.Checked {
		if !c {
			return false
		}
	}
	return true
}

// Selected returns the checked categories in document order.
func (m CategoryPickerModel) Selected() []string {
	var out []string
	for i, c := range m.Categories {
		if m.Checked[i] {
			out = append(out, c)
		}
	}
	return out
}

func (m CategoryPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Categories"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Categories) {
		end = len(m.Categories)
	}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = listCheckedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, m.Categories[i])

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	n := len(m.Selected())
	status := fmt.Sprintf("%d of %d selected", n, len(m.Categories))
	if n == 0 {
		status = "none selected: all categories are plotted"
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("  " + status))

	return b.String()
}
