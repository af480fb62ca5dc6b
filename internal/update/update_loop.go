package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/contribd/internal/manager"
	"github.com/sandeepkv93/contribd/internal/model"
	"github.com/sandeepkv93/contribd/internal/scheduler"
	"github.com/sandeepkv93/contribd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForCompletionCmd(m.completions)}
	if m.scheduler != nil {
		startup := scheduler.CheckEvent{ID: "startup", Reason: scheduler.ReasonStartup}
		if err := m.scheduler.After(startup, m.cfg.InitialDelay); err != nil {
			m.logger.Warn("startup check not scheduled", "err", err)
		}
		cmds = append(cmds, waitForCheckCmd(m.scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(typed.Width, typed.Height)
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.CurrentView == ViewManager && m.dialog != nil {
			return m.handleDialogKey(typed)
		}
		return m.handleHomeKey(typed)
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.busySpinner, cmd = m.busySpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case OpenManagerMsg:
		return m.openManager(typed.Filter)
	case CloseManagerMsg:
		m.closeManager()
		return m, nil
	case ListingSettledMsg:
		m = m.onListingSettled(typed.Completion)
		return m, waitForCompletionCmd(m.completions)
	case CheckDueMsg:
		return m.onCheckDue(typed.Event)
	case ActionDoneMsg:
		return m.onActionDone(typed), nil
	case RescanMsg:
		m.coord.RefreshInstalled()
		m.syncDialog()
		m.Status = StatusBar{Text: "sketchbook rescanned"}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.openPalette()
		return m, nil
	case m.Keys.Libraries:
		return m.openManager(model.TypeFilter(model.TypeLibrary))
	case m.Keys.Tools:
		return m.openManager(model.TypeFilter(model.TypeTool))
	case m.Keys.Modes:
		return m.openManager(model.TypeFilter(model.TypeMode))
	case m.Keys.Updates:
		return m.openManager(model.UpdateFilter())
	case m.Keys.Rescan:
		m.coord.RefreshInstalled()
		m.Status = StatusBar{Text: "sketchbook rescanned"}
		return m, nil
	case m.Keys.Help:
		m.toggleHelp()
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) toggleHelp() {
	m.HelpVisible = !m.HelpVisible
	if m.HelpVisible {
		m.Status = StatusBar{Text: "help shown"}
	} else {
		m.Status = StatusBar{Text: "help hidden"}
	}
}

func (m Model) busy() bool {
	return m.coord.State() == manager.StateDownloading || len(m.Pending) > 0
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	listWidth := m.cfg.ListWidth
	if width > 0 && width-6 < listWidth {
		listWidth = width - 6
	}
	if listWidth < 20 {
		listWidth = 20
	}
	m.contribList.SetSize(listWidth, m.cfg.ListHeight)
	m.filterInput.Width = listWidth - 10
	m.detailsView.Width = listWidth
	m.detailsSource = ""
	m.syncDetails()
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	overlay := ""
	footer := fmt.Sprintf("keys: %s libraries | %s tools | %s modes | %s updates | %s rescan | / cmd | %s help | %s quit",
		m.Keys.Libraries, m.Keys.Tools, m.Keys.Modes, m.Keys.Updates, m.Keys.Rescan, m.Keys.Help, m.Keys.Quit)
	header := "contribd | home"
	if m.CurrentView == ViewManager && m.dialog != nil {
		overlay = m.renderDialogView()
		header = fmt.Sprintf("contribd | %s | focus: %s", m.dialog.Title, m.Focus)
		footer = "keys: tab focus | enter install/update | x remove | left/right category | / cmd | ? help | esc close"
	}

	notification := strings.TrimSpace(strings.Join([]string{
		strings.TrimSpace(m.renderCommandPalette()),
		strings.TrimSpace(m.renderHelpIfVisible()),
		strings.TrimSpace(m.renderNotificationsView()),
	}, "\n"))

	return views.RenderApp(views.AppData{
		Header:       header,
		Body:         m.renderHomeView(),
		Overlay:      overlay,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notification,
		Footer:       footer,
	})
}
