package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/ui/theme"
)

// MenuItem is one selectable entry.
type MenuItem struct {
	Label    string
	Hint     string // shown dimmed after the label
	Shortcut string // single key that activates the item directly
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list; selection wraps and skips disabled items.
type Menu struct {
	Items    []MenuItem
	Selected int
}

var menuKeys = struct {
	Up, Down, Choose key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k", "shift+tab")),
	Down:   key.NewBinding(key.WithKeys("down", "j", "tab")),
	Choose: key.NewBinding(key.WithKeys("enter", "space")),
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move advances the selection by dir (+1 or -1) to the next enabled item.
func (m *Menu) move(dir int) {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((m.Selected+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

// Update handles navigation, enter and item shortcuts.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, menuKeys.Up):
		m.move(-1)
	case key.Matches(kmsg, menuKeys.Down):
		m.move(1)
	case key.Matches(kmsg, menuKeys.Choose):
		return m, m.activate(m.Selected)
	default:
		for i, item := range m.Items {
			if item.Shortcut != "" && strings.EqualFold(kmsg.String(), item.Shortcut) && !item.Disabled {
				m.Selected = i
				return m, m.activate(i)
			}
		}
	}
	return m, nil
}

// View renders one line per item.
func (m Menu) View() string {
	lines := make([]string, len(m.Items))
	for i, item := range m.Items {
		label := item.Label
		if item.Shortcut != "" {
			label = "[" + strings.ToUpper(item.Shortcut) + "] " + label
		}
		switch {
		case item.Disabled:
			lines[i] = lipgloss.NewStyle().Foreground(theme.Border).Render("    " + label)
		case i == m.Selected:
			lines[i] = theme.Selected.Render("  ▸ " + label)
		default:
			lines[i] = theme.Unselected.Render("    " + label)
		}
		if item.Hint != "" {
			lines[i] += "  " + theme.Hint.Render(item.Hint)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
