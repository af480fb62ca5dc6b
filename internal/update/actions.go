package update

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/contribd/internal/install"
	"github.com/sandeepkv93/contribd/internal/listing"
)

const updateAllKey = "*all*"

func pendingKey(entry listing.Entry) string {
	return entry.Contribution().Key()
}

// startPrimaryAction installs or updates the selected contribution.
func (m Model) startPrimaryAction() (Model, tea.Cmd) {
	entry, ok := m.selectedEntry()
	if !ok {
		return m, nil
	}
	name := entry.Contribution().Name
	switch {
	case entry.HasUpdate():
		return m.runAction(ActionUpdate, entry)
	case entry.IsInstalled():
		m.Status = StatusBar{Text: fmt.Sprintf("%s is up to date", name)}
		return m, nil
	case entry.Advertised != nil:
		return m.runAction(ActionInstall, entry)
	}
	return m, nil
}

func (m Model) startRemove() (Model, tea.Cmd) {
	entry, ok := m.selectedEntry()
	if !ok {
		return m, nil
	}
	if !entry.IsInstalled() {
		m.Status = StatusBar{Text: fmt.Sprintf("%s is not installed", entry.Contribution().Name), IsError: true}
		return m, nil
	}
	return m.runAction(ActionRemove, entry)
}

func (m Model) runAction(kind ActionKind, entry listing.Entry) (Model, tea.Cmd) {
	name := entry.Contribution().Name
	if m.installer == nil {
		m.Status = StatusBar{Text: "installing is not available", IsError: true}
		return m, nil
	}
	key := pendingKey(entry)
	if _, busy := m.Pending[key]; busy {
		m.Status = StatusBar{Text: fmt.Sprintf("%s is already being processed", name)}
		return m, nil
	}
	m.Pending[key] = string(kind)
	m.Status = StatusBar{Text: fmt.Sprintf("%s %s...", progressVerb(kind), name)}
	m.logger.Info("action started", "action", kind, "name", name)
	return m, tea.Batch(actionCmd(m.ctx, m.installer, kind, entry), m.busySpinner.Tick)
}

func (m Model) runUpdateAll() (Model, tea.Cmd, error) {
	if m.installer == nil {
		return m, nil, errors.New("installing is not available")
	}
	if _, busy := m.Pending[updateAllKey]; busy {
		return m, nil, errors.New("an update of all contributions is already running")
	}
	entries := make([]listing.Entry, 0)
	for _, entry := range m.listing.All() {
		if entry.HasUpdate() {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return m, nil, errors.New("everything is up to date")
	}
	m.Pending[updateAllKey] = string(ActionUpdate)
	m.logger.Info("updating all", "count", len(entries))
	return m, tea.Batch(updateAllCmd(m.ctx, m.installer, entries), m.busySpinner.Tick), nil
}

func actionCmd(ctx context.Context, inst Installer, kind ActionKind, entry listing.Entry) tea.Cmd {
	name, key := entry.Contribution().Name, pendingKey(entry)
	return func() tea.Msg {
		res, err := runInstaller(ctx, inst, kind, entry)
		msg := ActionDoneMsg{Kind: kind, Key: key, Name: name, Err: err}
		if err == nil {
			msg.Results = []install.Result{res}
		}
		return msg
	}
}

func updateAllCmd(ctx context.Context, inst Installer, entries []listing.Entry) tea.Cmd {
	return func() tea.Msg {
		msg := ActionDoneMsg{Kind: ActionUpdate, Key: updateAllKey, Name: updateAllKey}
		var errs []error
		for _, entry := range entries {
			res, err := runInstaller(ctx, inst, ActionUpdate, entry)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			msg.Results = append(msg.Results, res)
		}
		msg.Err = errors.Join(errs...)
		return msg
	}
}

func runInstaller(ctx context.Context, inst Installer, kind ActionKind, entry listing.Entry) (install.Result, error) {
	switch kind {
	case ActionInstall:
		if entry.Advertised == nil {
			return install.Result{}, install.ErrNoSource
		}
		return inst.Install(ctx, *entry.Advertised)
	case ActionUpdate:
		if entry.Installed == nil || entry.Advertised == nil {
			return install.Result{}, install.ErrNotInstalled
		}
		return inst.Update(ctx, *entry.Installed, *entry.Advertised)
	case ActionRemove:
		if entry.Installed == nil {
			return install.Result{}, install.ErrNotInstalled
		}
		return inst.Remove(ctx, *entry.Installed)
	default:
		return install.Result{}, fmt.Errorf("unknown action %q", kind)
	}
}

func (m Model) onActionDone(msg ActionDoneMsg) Model {
	delete(m.Pending, msg.Key)
	m.coord.RefreshInstalled()
	m.syncDialog()

	restart := false
	for _, res := range msg.Results {
		restart = restart || res.RestartRequired
	}

	var text string
	switch {
	case msg.Name == updateAllKey:
		text = fmt.Sprintf("updated %d contribution(s)", len(msg.Results))
	default:
		text = fmt.Sprintf("%s %s", doneVerb(msg.Kind), msg.Name)
	}
	if restart {
		text += " (restart the editor to use it)"
	}

	if msg.Err != nil {
		m.LastError = msg.Err
		m.logger.Warn("action failed", "action", msg.Kind, "name", msg.Name, "err", msg.Err)
		if len(msg.Results) > 0 {
			text = fmt.Sprintf("%s; failed: %v", text, msg.Err)
		} else {
			text = fmt.Sprintf("%s %s failed: %v", msg.Kind, msg.Name, msg.Err)
		}
		m.Status = StatusBar{Text: text, IsError: true}
		m.notify("Failed", text, "error")
		return m
	}
	m.logger.Info("action finished", "action", msg.Kind, "name", msg.Name, "restart", restart)
	m.Status = StatusBar{Text: text}
	m.notify("Done", text, "info")
	return m
}

func progressVerb(kind ActionKind) string {
	switch kind {
	case ActionUpdate:
		return "updating"
	case ActionRemove:
		return "removing"
	default:
		return "installing"
	}
}

func doneVerb(kind ActionKind) string {
	switch kind {
	case ActionUpdate:
		return "updated"
	case ActionRemove:
		return "removed"
	default:
		return "installed"
	}
}
