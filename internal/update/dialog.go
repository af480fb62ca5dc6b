package update

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/sandeepkv93/contribd/internal/listing"
	"github.com/sandeepkv93/contribd/internal/model"
	"github.com/sandeepkv93/contribd/internal/views"
)

func (m Model) openManager(f model.Filter) (Model, tea.Cmd) {
	if m.dialog != nil && m.dialog.Filter.Key() != f.Key() {
		m.closeManager()
	}
	m.dialog = m.coord.Show(m.ctx, f)
	m.CurrentView = ViewManager
	m.setFocus(FocusList)
	m.jumpQuery = ""
	m.contribList.ResetSelected()
	m.syncDialog()
	m.logger.Debug("manager opened", "dialog", f.Key(), "state", m.coord.State().String())
	if m.busy() {
		return m, m.busySpinner.Tick
	}
	return m, nil
}

func (m *Model) closeManager() {
	if m.dialog == nil {
		m.CurrentView = ViewHome
		return
	}
	m.coord.Close(m.dialog)
	m.dialog = nil
	m.CurrentView = ViewHome
	m.Focus = FocusList
	m.jumpQuery = ""
	m.filterInput.SetValue("")
	m.filterInput.Blur()
	m.contribList.SetItems(nil)
	m.detailsSource = ""
	m.detailsView.SetContent("")
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	d := m.dialog
	keyStr := msg.String()
	switch keyStr {
	case "esc", "ctrl+w":
		m.closeManager()
		m.Status = StatusBar{Text: "manager closed"}
		return m, nil
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	}

	switch m.Focus {
	case FocusFilter:
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		if m.filterInput.Value() != d.Search.RawText {
			m.coord.EditFilter(d, m.filterInput.Value())
			m.syncDialog()
		}
		return m, cmd
	case FocusCategory:
		switch keyStr {
		case "left", "h":
			m.coord.CycleCategory(d, -1)
			m.jumpQuery = ""
		case "right", "l":
			m.coord.CycleCategory(d, 1)
			m.jumpQuery = ""
		case "backspace":
			if m.jumpQuery != "" {
				_, size := utf8.DecodeLastRuneInString(m.jumpQuery)
				m.jumpQuery = m.jumpQuery[:len(m.jumpQuery)-size]
				m.jumpToCategory()
			}
		case "enter":
			m.jumpQuery = ""
			m.setFocus(FocusList)
		default:
			if msg.Type == tea.KeyRunes {
				m.jumpQuery += string(msg.Runes)
				m.jumpToCategory()
			}
		}
		m.syncDialog()
		return m, nil
	}

	switch keyStr {
	case "/":
		m.openPalette()
		return m, nil
	case m.Keys.Help:
		m.toggleHelp()
		return m, nil
	case "enter":
		return m.startPrimaryAction()
	case "x":
		return m.startRemove()
	case "left":
		m.coord.CycleCategory(d, -1)
		m.syncDialog()
		return m, nil
	case "right":
		m.coord.CycleCategory(d, 1)
		m.syncDialog()
		return m, nil
	}
	var cmd tea.Cmd
	m.contribList, cmd = m.contribList.Update(msg)
	m.syncDetails()
	return m, cmd
}

// cycleFocus moves between list, filter and category chooser. The chooser
// is skipped while it has nothing to choose.
func (m *Model) cycleFocus(delta int) {
	order := []DialogFocus{FocusList, FocusFilter}
	if m.dialog != nil && m.dialog.CategoriesEnabled {
		order = append(order, FocusCategory)
	}
	idx := 0
	for i, f := range order {
		if f == m.Focus {
			idx = i
			break
		}
	}
	n := len(order)
	m.setFocus(order[((idx+delta)%n+n)%n])
}

func (m *Model) setFocus(f DialogFocus) {
	if m.Focus == FocusFilter && f != FocusFilter {
		m.filterInput.Blur()
		if m.dialog != nil {
			m.dialog.Search.Blur()
		}
	}
	if f == FocusFilter && m.Focus != FocusFilter {
		m.filterInput.Focus()
		if m.dialog != nil {
			m.dialog.Search.Focus()
		}
	}
	if f != FocusCategory {
		m.jumpQuery = ""
	}
	m.Focus = f
}

// jumpToCategory selects the best fuzzy match for the typed query.
func (m *Model) jumpToCategory() {
	d := m.dialog
	if d == nil || m.jumpQuery == "" {
		return
	}
	matches := fuzzy.Find(m.jumpQuery, d.Categories)
	if len(matches) == 0 {
		m.Status = StatusBar{Text: fmt.Sprintf("no category matches %q", m.jumpQuery)}
		return
	}
	if err := m.coord.SetCategory(d, matches[0].Str); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	}
}

// syncDialog copies the dialog state into the bubble components.
func (m *Model) syncDialog() {
	d := m.dialog
	if d == nil {
		return
	}
	selected := m.contribList.Index()
	items := make([]list.Item, 0, len(d.Entries))
	for _, entry := range d.Entries {
		items = append(items, contribItem{entry: entry})
	}
	m.contribList.SetItems(items)
	if len(items) > 0 {
		if selected >= len(items) {
			selected = len(items) - 1
		}
		if selected < 0 {
			selected = 0
		}
		m.contribList.Select(selected)
	}

	if text := d.Search.Text(); m.filterInput.Value() != text {
		m.filterInput.SetValue(text)
		m.filterInput.CursorEnd()
	}
	m.syncDetails()
}

func (m Model) selectedEntry() (listing.Entry, bool) {
	item, ok := m.contribList.SelectedItem().(contribItem)
	if !ok {
		return listing.Entry{}, false
	}
	return item.entry, true
}

func (m *Model) syncDetails() {
	entry, ok := m.selectedEntry()
	if !ok {
		m.detailsSource = ""
		m.detailsView.SetContent("")
		return
	}
	md := views.ContributionMarkdown(detailsData(entry))
	if md == m.detailsSource {
		return
	}
	m.detailsSource = md
	m.detailsView.SetContent(views.RenderMarkdown(md, m.detailsView.Width))
	m.detailsView.GotoTop()
}

func detailsData(entry listing.Entry) views.ContributionDetailsData {
	c := entry.Contribution()
	data := views.ContributionDetailsData{
		Name:       c.Name,
		Type:       c.Type.Title(),
		Authors:    c.Authors,
		Categories: c.Categories,
		Sentence:   c.Sentence,
		Paragraph:  strings.TrimSpace(c.Paragraph),
		URL:        c.URL,
		Update:     entry.HasUpdate(),
	}
	if entry.Advertised != nil {
		data.Version = entry.Advertised.DisplayVersion()
	}
	if entry.Installed != nil {
		data.Installed = entry.Installed.DisplayVersion()
	}
	return data
}
