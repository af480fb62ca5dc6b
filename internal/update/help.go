package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/contribd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.contextBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Context:  m.helpContext(),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) helpContext() string {
	if m.CurrentView == ViewManager && m.dialog != nil {
		return fmt.Sprintf("%s / %s", m.dialog.Title, m.Focus)
	}
	return string(m.CurrentView)
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: "ctrl+c", Action: "quit app"},
	}
}

func (m Model) contextBindings() []KeyBinding {
	if m.CurrentView != ViewManager || m.dialog == nil {
		return []KeyBinding{
			{Key: m.Keys.Libraries, Action: "manage libraries"},
			{Key: m.Keys.Tools, Action: "manage tools"},
			{Key: m.Keys.Modes, Action: "manage modes"},
			{Key: m.Keys.Updates, Action: "show updates"},
			{Key: m.Keys.Rescan, Action: "rescan sketchbook"},
			{Key: m.Keys.Quit, Action: "quit app"},
		}
	}
	switch m.Focus {
	case FocusFilter:
		return []KeyBinding{
			{Key: "type", Action: "filter by words, is:installed or has:update"},
			{Key: "tab", Action: "next field"},
			{Key: "esc", Action: "close manager"},
		}
	case FocusCategory:
		return []KeyBinding{
			{Key: "h/l", Action: "previous/next category"},
			{Key: "type", Action: "jump to category"},
			{Key: "enter", Action: "back to list"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter", Action: "install or update"},
			{Key: "x", Action: "remove"},
			{Key: "left/right", Action: "previous/next category"},
			{Key: "tab", Action: "next field"},
			{Key: "esc", Action: "close manager"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	global, local := m.globalBindings(), m.contextBindings()
	out := make([]key.Binding, 0, len(global)+len(local))
	for _, kb := range append(local, global...) {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
