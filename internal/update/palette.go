package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/contribd/internal/commands"
	"github.com/sandeepkv93/contribd/internal/install"
	"github.com/sandeepkv93/contribd/internal/manager"
	"github.com/sandeepkv93/contribd/internal/scheduler"
)

var errNoDialog = &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "open the manager first"}

func (m *Model) openPalette() {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette opened"}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	parsed, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var cmd tea.Cmd
	res, err := commands.Execute(parsed, commands.Handlers{
		Install: func(a commands.TargetArgs) (commands.Result, error) {
			entry, err := m.listing.Find(a.Name)
			if err != nil {
				return commands.Result{}, err
			}
			if entry.IsInstalled() {
				return commands.Result{}, fmt.Errorf("%w: %s", install.ErrAlreadyInstalled, entry.Contribution().Name)
			}
			m, cmd = m.runAction(ActionInstall, entry)
			return actionResult(m.Status)
		},
		Remove: func(a commands.TargetArgs) (commands.Result, error) {
			entry, err := m.listing.Find(a.Name)
			if err != nil {
				return commands.Result{}, err
			}
			if !entry.IsInstalled() {
				return commands.Result{}, fmt.Errorf("%w: %s", install.ErrNotInstalled, entry.Contribution().Name)
			}
			m, cmd = m.runAction(ActionRemove, entry)
			return actionResult(m.Status)
		},
		Update: func(a commands.TargetArgs) (commands.Result, error) {
			if a.All {
				var err error
				m, cmd, err = m.runUpdateAll()
				if err != nil {
					return commands.Result{}, err
				}
				return commands.Result{Message: "updating all contributions..."}, nil
			}
			entry, err := m.listing.Find(a.Name)
			if err != nil {
				return commands.Result{}, err
			}
			if !entry.HasUpdate() {
				return commands.Result{}, fmt.Errorf("%s has no update", entry.Contribution().Name)
			}
			m, cmd = m.runAction(ActionUpdate, entry)
			return actionResult(m.Status)
		},
		Category: func(a commands.CategoryArgs) (commands.Result, error) {
			if m.dialog == nil {
				return commands.Result{}, errNoDialog
			}
			name := a.Category
			if a.All {
				name = manager.AllCategories
			}
			if err := m.coord.SetCategory(m.dialog, name); err != nil {
				return commands.Result{}, err
			}
			m.syncDialog()
			return commands.Result{Message: fmt.Sprintf("category: %s", m.dialog.Category)}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			if m.dialog == nil {
				return commands.Result{}, errNoDialog
			}
			m.coord.SetFilterText(m.dialog, a.Text)
			m.syncDialog()
			if a.Text == "" {
				return commands.Result{Message: "filter cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("filter: %s", a.Text)}, nil
		},
		Refresh: func() (commands.Result, error) {
			if m.coord.State() == manager.StateDownloading {
				return commands.Result{}, errors.New("a download is already running")
			}
			if m.scheduler != nil {
				manual := scheduler.CheckEvent{ID: "manual", Reason: scheduler.ReasonManual}
				if err := m.scheduler.After(manual, 0); err == nil {
					return commands.Result{Message: "update check queued"}, nil
				}
			}
			if !m.coord.Refresh(m.ctx) {
				return commands.Result{}, errors.New("a download is already running")
			}
			m.syncDialog()
			cmd = m.busySpinner.Tick
			return commands.Result{Message: manager.DownloadingMessage}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, cmd
}

func actionResult(status StatusBar) (commands.Result, error) {
	if status.IsError {
		return commands.Result{}, errors.New(status.Text)
	}
	return commands.Result{Message: status.Text}, nil
}
