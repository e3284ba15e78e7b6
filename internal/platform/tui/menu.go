package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// MenuItem represents a selectable chapter in the menu.
type MenuItem struct {
	Chapter Chapter
	Curated bool // Comes from the built-in level library
}

// MenuModel is the Bubble Tea model for the chapter picker menu.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	user           string
	balance        int // -1 when unknown
	keyMapper      *KeyMapper
	quitting       bool
	selected       *MenuItem // Set when user selects a chapter
	openScoreboard bool      // True if user pressed Tab for scoreboard
}

// NewMenuModel creates a new menu model. Study chapters are listed before
// the curated levels.
func NewMenuModel(chapters, curated []Chapter, user string, balance, width, height int) MenuModel {
	items := make([]MenuItem, 0, len(chapters)+len(curated))
	for _, ch := range chapters {
		items = append(items, MenuItem{Chapter: ch})
	}
	for _, ch := range curated {
		items = append(items, MenuItem{Chapter: ch, Curated: true})
	}

	return MenuModel{
		items:     items,
		width:     width,
		height:    height,
		user:      user,
		balance:   balance,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}

	case MenuActionScoreboard:
		m.openScoreboard = true
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("C H A P T E R   C O N Q U E S T", m.width)))
	b.WriteString("\n\n")

	status := fmt.Sprintf("Player: %s", m.user)
	if m.balance >= 0 {
		status += fmt.Sprintf("   Tokens: %d", m.balance)
	}
	b.WriteString(subtleStyle.Render(centerText(status, m.width)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText("No chapters found. Add .txt or .md files to your chapters directory.", m.width))
		b.WriteString("\n")
	}

	section := ""
	for i, item := range m.items {
		heading := "Your chapters"
		if item.Curated {
			heading = "Level library"
		}
		if heading != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = heading
			b.WriteString(centerText("-- "+heading+" --", m.width))
			b.WriteString("\n")
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+item.Chapter.Name, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Tab: Scores  |  Q: Quit"
	b.WriteString(subtleStyle.Render(centerText(controls, m.width)))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}
