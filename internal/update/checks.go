package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/contribd/internal/manager"
	"github.com/sandeepkv93/contribd/internal/scheduler"
)

const maxCheckLog = 20

func waitForCheckCmd(ch <-chan scheduler.CheckEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return CheckDueMsg{Event: ev}
	}
}

func waitForCompletionCmd(ch <-chan manager.Completion) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return ListingSettledMsg{Completion: c}
	}
}

// onCheckDue starts a background download and books the next periodic
// check. Manual checks do not reschedule.
func (m Model) onCheckDue(ev scheduler.CheckEvent) (Model, tea.Cmd) {
	m.CheckLog = append(m.CheckLog, ev)
	if len(m.CheckLog) > maxCheckLog {
		m.CheckLog = m.CheckLog[len(m.CheckLog)-maxCheckLog:]
	}

	cmds := make([]tea.Cmd, 0, 2)
	if m.coord.Refresh(m.ctx) {
		m.logger.Info("update check started", "id", ev.ID, "reason", ev.Reason)
		m.syncDialog()
		cmds = append(cmds, m.busySpinner.Tick)
	} else {
		m.logger.Debug("update check skipped, download running", "id", ev.ID)
	}

	if m.scheduler != nil {
		if ev.Reason != scheduler.ReasonManual {
			next := scheduler.CheckEvent{ID: "periodic", Reason: scheduler.ReasonPeriodic}
			if err := m.scheduler.After(next, m.cfg.CheckInterval); err != nil {
				m.logger.Warn("next update check not scheduled", "err", err)
			}
		}
		cmds = append(cmds, waitForCheckCmd(m.scheduler.C()))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) onListingSettled(c manager.Completion) Model {
	m.coord.Complete(c)
	m.syncDialog()

	if c.Err != nil {
		m.LastError = c.Err
		if m.dialog == nil {
			m.Status = StatusBar{Text: manager.DownloadErrorMessage, IsError: true}
		}
		m.notify("Listing", manager.DownloadErrorMessage, "error")
		return m
	}

	if n := m.listing.Skipped(); n > 0 {
		msg := fmt.Sprintf("%d invalid %s skipped", n, plural(n, "entry", "entries"))
		m.logger.Warn("listing entries skipped", "count", n)
		m.notify("Listing", msg, "warn")
		if m.dialog == nil {
			m.Status = StatusBar{Text: msg}
		}
	}

	if n := m.listing.UpdateCount(); n > 0 {
		m.notifyDesktop("contribd", fmt.Sprintf("%d %s available", n, plural(n, "update", "updates")), "info")
	} else if m.dialog == nil && m.listing.Skipped() == 0 {
		m.Status = StatusBar{Text: "contribution list updated"}
	}
	return m
}
