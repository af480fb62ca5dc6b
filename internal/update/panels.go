package update

import (
	"time"

	"github.com/sandeepkv93/contribd/internal/manager"
	"github.com/sandeepkv93/contribd/internal/model"
	"github.com/sandeepkv93/contribd/internal/views"
)

func (m Model) renderHomeView() string {
	data := views.HomePanelData{
		Sketchbook:  m.sketchbook,
		Mode:        m.mode,
		UpdateCount: m.listing.UpdateCount(),
		Checking:    m.coord.State() == manager.StateDownloading,
		SpinnerView: m.busySpinner.View(),
	}
	if at := m.listing.FetchedAt(); !at.IsZero() {
		data.LastChecked = at.Local().Format(time.DateTime)
	}
	for _, entry := range m.listing.All() {
		if entry.Installed == nil {
			continue
		}
		item := views.InstalledData{
			Name:    entry.Installed.Name,
			Version: entry.Installed.DisplayVersion(),
			Update:  entry.HasUpdate(),
		}
		switch entry.Installed.Type {
		case model.TypeLibrary:
			data.Libraries = append(data.Libraries, item)
		case model.TypeTool:
			data.Tools = append(data.Tools, item)
		case model.TypeMode:
			data.Modes = append(data.Modes, item)
		}
	}
	return views.RenderHomePanel(data)
}

func (m Model) renderDialogView() string {
	d := m.dialog
	if d == nil {
		return ""
	}
	return views.RenderManagerDialog(views.ManagerDialogData{
		Title: d.Title,
		Chooser: views.CategoryChooserData{
			Categories: d.Categories,
			Selected:   d.Category,
			Enabled:    d.CategoriesEnabled,
			Focused:    m.Focus == FocusCategory,
			JumpQuery:  m.jumpQuery,
		},
		ListView:    m.contribList.View(),
		Empty:       len(d.Entries) == 0,
		StatusLine:  d.Status,
		StatusError: d.StatusIsError,
		Downloading: d.Downloading,
		SpinnerView: m.busySpinner.View(),
		FilterView:  m.filterInput.View(),
		FilterFocus: m.Focus == FocusFilter,
		ListFocus:   m.Focus == FocusList,
		DetailsView: m.detailsView.View(),
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}
