// Package manager drives the contribution manager dialogs: it owns the
// dialog lifecycle and reconciles the UI with the listing when a background
// download completes.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sandeepkv93/contribd/internal/editor"
	"github.com/sandeepkv93/contribd/internal/filter"
	"github.com/sandeepkv93/contribd/internal/listing"
	"github.com/sandeepkv93/contribd/internal/logging"
	"github.com/sandeepkv93/contribd/internal/model"
)

// AllCategories is the chooser entry that disables category filtering.
const AllCategories = "All"

const (
	DownloadErrorMessage = "An error occurred when downloading the list of available contributions."
	DownloadingMessage   = "Downloading contribution list..."
)

var ErrUnknownCategory = errors.New("manager: unknown category")

type State int

const (
	StateIdle State = iota
	StateDownloading
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateDownloading:
		return "downloading"
	case StateSettled:
		return "settled"
	default:
		return "idle"
	}
}

// Listing is the part of the catalog the coordinator works against.
type Listing interface {
	Categories(f model.Filter) []string
	FilteredList(f model.Filter, category string, tokens []string) []listing.Entry
	UpdateInstalledList(installed []model.Contribution)
	DownloadAvailableList(ctx context.Context, done func(error)) bool
	HasDownloadedLatestList() bool
}

// Completion reports the end of a download started by the coordinator.
type Completion struct {
	Generation uint64
	Err        error
}

type Dialog struct {
	Filter            model.Filter
	Title             string
	Search            filter.State
	Category          string
	Categories        []string
	CategoriesEnabled bool
	Entries           []listing.Entry
	Status            string
	StatusIsError     bool
	Downloading       bool

	generation uint64
	disposed   bool
}

func (d *Dialog) Generation() uint64 { return d.generation }
func (d *Dialog) Disposed() bool     { return d.disposed }

// SelectedCategory is the category to filter on, empty for all.
func (d *Dialog) SelectedCategory() string {
	if d.Category == AllCategories {
		return ""
	}
	return d.Category
}

// Coordinator is not safe for concurrent use; call it from the UI loop only.
// notify is the one exception: it runs on the download goroutine and must
// hand the Completion back to the UI loop.
type Coordinator struct {
	listing Listing
	editor  editor.Editor
	notify  func(Completion)
	logger  *slog.Logger

	state      State
	generation uint64
	dialogs    map[string]*Dialog
	opened     map[string]bool
}

func New(l Listing, ed editor.Editor, notify func(Completion), logger *slog.Logger) *Coordinator {
	return &Coordinator{
		listing: l,
		editor:  ed,
		notify:  notify,
		logger:  logging.OrDiscard(logger),
		dialogs: make(map[string]*Dialog),
		opened:  make(map[string]bool),
	}
}

func (c *Coordinator) State() State { return c.state }

// Dialog returns the open dialog for f, or nil.
func (c *Coordinator) Dialog(f model.Filter) *Dialog {
	return c.dialogs[f.Key()]
}

func (c *Coordinator) HasAlreadyBeenOpened(f model.Filter) bool {
	return c.opened[f.Key()]
}

// Show opens the dialog for f, creating it on first use. The listing is
// downloaded once per session unless a download is already running.
func (c *Coordinator) Show(ctx context.Context, f model.Filter) *Dialog {
	key := f.Key()
	d := c.dialogs[key]
	if d == nil {
		c.generation++
		d = &Dialog{
			Filter:     f,
			Title:      f.Title(),
			Search:     filter.NewState(),
			Category:   AllCategories,
			generation: c.generation,
		}
		c.dialogs[key] = d
		c.opened[key] = true
		c.logger.Debug("dialog created", "dialog", key, "generation", d.generation)
	}

	if !c.listing.HasDownloadedLatestList() && c.state != StateDownloading {
		c.startDownload(ctx, d.generation)
	}

	c.refreshInstalled()
	c.rebuildCategories(d)
	if c.state == StateDownloading {
		c.markDownloading(d)
	} else {
		c.updateStatus(d)
	}
	c.Apply(d)
	return d
}

// Refresh downloads the listing again even when a download already
// succeeded. It reports false when one is in flight.
func (c *Coordinator) Refresh(ctx context.Context) bool {
	if c.state == StateDownloading {
		return false
	}
	if !c.startDownload(ctx, c.generation) {
		return false
	}
	for _, d := range c.dialogs {
		c.markDownloading(d)
	}
	return true
}

func (c *Coordinator) startDownload(ctx context.Context, generation uint64) bool {
	notify := c.notify
	started := c.listing.DownloadAvailableList(ctx, func(err error) {
		if notify != nil {
			notify(Completion{Generation: generation, Err: err})
		}
	})
	if started {
		c.state = StateDownloading
		c.logger.Info("listing download started", "generation", generation)
	}
	return started
}

// Complete handles a Completion on the UI loop. Every open dialog is
// settled; closed dialogs are left alone.
func (c *Coordinator) Complete(done Completion) {
	c.state = StateSettled
	if done.Err != nil {
		c.logger.Warn("listing download failed", "generation", done.Generation, "err", done.Err)
	}
	if len(c.dialogs) == 0 {
		c.refreshInstalled()
		return
	}
	keys := make([]string, 0, len(c.dialogs))
	for k := range c.dialogs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Settle(c.dialogs[k], done.Err)
	}
}

// Settle brings d in line with the listing after a download finished.
// A nil or closed dialog is ignored.
func (c *Coordinator) Settle(d *Dialog, err error) {
	if d == nil || d.disposed {
		return
	}
	c.refreshInstalled()
	c.rebuildCategories(d)
	d.Downloading = false
	if err != nil {
		d.Status = DownloadErrorMessage
		d.StatusIsError = true
	} else {
		c.updateStatus(d)
	}
	c.Apply(d)
}

// Apply re-runs the listing query with the dialog's category and tokens.
func (c *Coordinator) Apply(d *Dialog) {
	if d == nil || d.disposed {
		return
	}
	d.Entries = c.listing.FilteredList(d.Filter, d.SelectedCategory(), d.Search.Tokens)
}

// SetFilterText replaces the filter text programmatically.
func (c *Coordinator) SetFilterText(d *Dialog, text string) {
	if d == nil {
		return
	}
	d.Search.SetText(text)
	c.Apply(d)
}

// EditFilter records a keystroke in the filter field.
func (c *Coordinator) EditFilter(d *Dialog, text string) {
	if d == nil {
		return
	}
	d.Search.Edit(text)
	c.Apply(d)
}

// SetCategory selects a category by name, case-insensitively. "all" and
// the empty string select AllCategories.
func (c *Coordinator) SetCategory(d *Dialog, name string) error {
	if d == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, AllCategories) {
		d.Category = AllCategories
		c.Apply(d)
		return nil
	}
	for _, cat := range d.Categories {
		if strings.EqualFold(cat, name) {
			d.Category = cat
			c.Apply(d)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCategory, name)
}

// CycleCategory moves the chooser by delta, wrapping around.
func (c *Coordinator) CycleCategory(d *Dialog, delta int) {
	if d == nil || !d.CategoriesEnabled || len(d.Categories) == 0 {
		return
	}
	idx := 0
	for i, cat := range d.Categories {
		if cat == d.Category {
			idx = i
			break
		}
	}
	n := len(d.Categories)
	idx = ((idx+delta)%n + n) % n
	d.Category = d.Categories[idx]
	c.Apply(d)
}

// Close disposes d. A later Show creates a fresh dialog.
func (c *Coordinator) Close(d *Dialog) {
	if d == nil || d.disposed {
		return
	}
	d.disposed = true
	d.Search = filter.NewState()
	d.Entries = nil
	key := d.Filter.Key()
	if c.dialogs[key] == d {
		delete(c.dialogs, key)
	}
	c.logger.Debug("dialog closed", "dialog", key, "generation", d.generation)
}

// RefreshInstalled rescans the editor and re-applies every open dialog.
func (c *Coordinator) RefreshInstalled() {
	c.refreshInstalled()
	for _, d := range c.dialogs {
		c.rebuildCategories(d)
		c.Apply(d)
	}
}

func (c *Coordinator) refreshInstalled() {
	if c.editor == nil {
		return
	}
	c.listing.UpdateInstalledList(editor.Installed(c.editor))
}

// rebuildCategories fills the chooser with AllCategories followed by the
// sorted categories. A selection that disappeared falls back to all.
func (c *Coordinator) rebuildCategories(d *Dialog) {
	cats := c.listing.Categories(d.Filter)
	sorted := make([]string, 0, len(cats))
	for _, cat := range cats {
		if cat != "" && cat != AllCategories {
			sorted = append(sorted, cat)
		}
	}
	sort.Strings(sorted)
	d.Categories = append([]string{AllCategories}, sorted...)
	d.CategoriesEnabled = len(sorted) > 0

	found := false
	for _, cat := range d.Categories {
		if cat == d.Category {
			found = true
			break
		}
	}
	if !found {
		d.Category = AllCategories
	}
}

func (c *Coordinator) markDownloading(d *Dialog) {
	d.Downloading = true
	d.Status = DownloadingMessage
	d.StatusIsError = false
}

func (c *Coordinator) updateStatus(d *Dialog) {
	d.Downloading = false
	d.StatusIsError = false
	d.Status = ""
}
