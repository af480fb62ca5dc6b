package update

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/contribd/internal/editor"
	"github.com/sandeepkv93/contribd/internal/filter"
	"github.com/sandeepkv93/contribd/internal/install"
	"github.com/sandeepkv93/contribd/internal/listing"
	"github.com/sandeepkv93/contribd/internal/logging"
	"github.com/sandeepkv93/contribd/internal/manager"
	"github.com/sandeepkv93/contribd/internal/model"
	"github.com/sandeepkv93/contribd/internal/scheduler"
)

type View string

const (
	ViewHome    View = "Home"
	ViewManager View = "Manager"
)

// DialogFocus is the dialog component receiving keys.
type DialogFocus int

const (
	FocusList DialogFocus = iota
	FocusFilter
	FocusCategory
)

func (f DialogFocus) String() string {
	switch f {
	case FocusFilter:
		return "filter"
	case FocusCategory:
		return "category"
	default:
		return "list"
	}
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Libraries string
	Tools     string
	Modes     string
	Updates   string
	Rescan    string
	Help      string
	Quit      string
}

// Installer changes what is installed in the sketchbook.
type Installer interface {
	Install(ctx context.Context, c model.Contribution) (install.Result, error)
	Update(ctx context.Context, installed, advertised model.Contribution) (install.Result, error)
	Remove(ctx context.Context, c model.Contribution) (install.Result, error)
}

// Deps are the collaborators the model drives. Only Listing is required.
type Deps struct {
	Context    context.Context
	Listing    *listing.Listing
	Editor     editor.Editor
	Installer  Installer
	Scheduler  *scheduler.Engine
	Notifier   DesktopNotifier
	Logger     *slog.Logger
	Sketchbook string
	Mode       string
	Config     RuntimeConfig
}

type Model struct {
	CurrentView   View
	Focus         DialogFocus
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error
	Pending       map[string]string
	CheckLog      []scheduler.CheckEvent

	ctx         context.Context
	listing     *listing.Listing
	editor      editor.Editor
	installer   Installer
	scheduler   *scheduler.Engine
	notifier    DesktopNotifier
	coord       *manager.Coordinator
	completions chan manager.Completion
	logger      *slog.Logger
	cfg         RuntimeConfig
	sketchbook  string
	mode        string
	dialog      *manager.Dialog
	jumpQuery   string
	width       int
	height      int

	// Bubble components used for rich TUI controls
	contribList   list.Model
	filterInput   textinput.Model
	commandInput  textinput.Model
	busySpinner   spinner.Model
	helpModel     help.Model
	detailsView   viewport.Model
	detailsSource string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type contribItem struct {
	entry listing.Entry
}

func (i contribItem) FilterValue() string { return i.entry.Contribution().Name }

func (i contribItem) Title() string {
	c := i.entry.Contribution()
	switch {
	case i.entry.HasUpdate():
		return "^ " + c.Name
	case i.entry.IsInstalled():
		return "* " + c.Name
	default:
		return "  " + c.Name
	}
}

func (i contribItem) Description() string {
	c := i.entry.Contribution()
	if c.Sentence != "" {
		return c.Sentence
	}
	return c.Type.Title()
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// OpenManagerMsg opens the manager dialog for Filter.
type OpenManagerMsg struct {
	Filter model.Filter
}

type CloseManagerMsg struct{}

// ListingSettledMsg carries a finished listing download back to the loop.
type ListingSettledMsg struct {
	Completion manager.Completion
}

type CheckDueMsg struct {
	Event scheduler.CheckEvent
}

type ActionKind string

const (
	ActionInstall ActionKind = "install"
	ActionUpdate  ActionKind = "update"
	ActionRemove  ActionKind = "remove"
)

// ActionDoneMsg reports the end of an install, update or remove.
type ActionDoneMsg struct {
	Kind    ActionKind
	Key     string
	Name    string
	Results []install.Result
	Err     error
}

type RescanMsg struct{}

func NewModel(deps Deps) Model {
	cfg := deps.Config
	if cfg == (RuntimeConfig{}) {
		cfg = DefaultRuntimeConfig()
	}
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		CurrentView: ViewHome,
		Pending:     make(map[string]string),
		Keys: GlobalKeyMap{
			Libraries: "l",
			Tools:     "t",
			Modes:     "m",
			Updates:   "u",
			Rescan:    "r",
			Help:      "?",
			Quit:      "q",
		},
		ctx:         ctx,
		listing:     deps.Listing,
		editor:      deps.Editor,
		installer:   deps.Installer,
		scheduler:   deps.Scheduler,
		notifier:    deps.Notifier,
		completions: make(chan manager.Completion, 4),
		logger:      logging.OrDiscard(deps.Logger),
		cfg:         cfg,
		sketchbook:  deps.Sketchbook,
		mode:        deps.Mode,
	}
	completions := m.completions
	m.coord = manager.New(deps.Listing, deps.Editor, func(c manager.Completion) {
		completions <- c
	}, m.logger)
	m.coord.RefreshInstalled()
	m.initBubbleComponents()
	return m
}

// Coordinator exposes the dialog coordinator, mainly for tests.
func (m Model) Coordinator() *manager.Coordinator { return m.coord }

// Dialog is the open manager dialog, or nil on the home screen.
func (m Model) Dialog() *manager.Dialog { return m.dialog }

func (m *Model) initBubbleComponents() {
	m.contribList = list.New([]list.Item{}, list.NewDefaultDelegate(), m.cfg.ListWidth, m.cfg.ListHeight)
	m.contribList.SetShowTitle(false)
	m.contribList.SetShowHelp(false)
	m.contribList.SetShowStatusBar(false)
	m.contribList.SetFilteringEnabled(false)

	m.filterInput = textinput.New()
	m.filterInput.Placeholder = filter.Hint
	m.filterInput.Prompt = ""
	m.filterInput.CharLimit = 256
	m.filterInput.Width = m.cfg.ListWidth - 10

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.busySpinner = spinner.New()
	m.busySpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detailsView = viewport.New(m.cfg.ListWidth, m.cfg.DetailsHeight)
}
