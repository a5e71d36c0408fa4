// Package tui provides a terminal user interface.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/assetview/internal/model"
)

// Controller is the view coordinator the TUI drives.
type Controller interface {
	Start()
	Refresh()
	NextPage() bool
	PrevPage() bool
	SetQuery(q string)
	State() model.ViewState
	Subscribe() <-chan model.ViewState
}

// App is the main TUI application.
type App struct {
	ctrl Controller
}

// NewApp creates a new TUI application.
func NewApp(ctrl Controller) *App {
	return &App{ctrl: ctrl}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(newBrowser(a.ctrl), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEsc    = "esc"
	keyEnter  = "enter"
	keySlash  = "/"
	keyLeft   = "left"
	keyRight  = "right"
	keyPrev   = "p"
	keyNext   = "n"
	keyReload = "r"

	minTableHeight = 5
	chromeHeight   = 9
)

// browser is the bubbletea model for the asset view.
type browser struct {
	ctrl      Controller
	updates   <-chan model.ViewState
	state     model.ViewState
	table     table.Model
	search    textinput.Model
	spinner   spinner.Model
	searching bool
	width     int
	height    int
}

func newBrowser(ctrl Controller) browser {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = LoadingStyle.Copy().Padding(0)

	ti := textinput.New()
	ti.Placeholder = "Search by host"
	ti.Prompt = "Search: "
	ti.CharLimit = 128

	return browser{
		ctrl:    ctrl,
		updates: ctrl.Subscribe(),
		state:   ctrl.State(),
		table:   newAssetTable(minTableHeight),
		search:  ti,
		spinner: s,
	}
}

// Messages
type stateMsg model.ViewState

type updatesClosedMsg struct{}

func waitForUpdate(ch <-chan model.ViewState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return stateMsg(s)
	}
}

func startCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Start()
		return nil
	}
}

// Init initializes the model.
func (m browser) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		startCmd(m.ctrl),
		waitForUpdate(m.updates),
	)
}

// Update handles messages.
func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchInput(msg)
		}
		return m.handleKeypress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - chromeHeight
		if h < minTableHeight {
			h = minTableHeight
		}
		m.table.SetHeight(h)
		m.table.SetWidth(msg.Width)
		return m, nil

	case stateMsg:
		m.state = model.ViewState(msg)
		m.table.SetRows(assetRows(m.state.Records))
		return m, waitForUpdate(m.updates)

	case updatesClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m browser) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.searching = false
		m.search.Blur()
		m.table.Focus()
		m.ctrl.SetQuery(m.search.Value())
		return m, nil
	case keyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.state.Query)
		m.table.Focus()
		return m, nil
	case keyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m browser) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		return m, tea.Quit
	case keyRight, keyNext:
		m.ctrl.NextPage()
		return m, nil
	case keyLeft, keyPrev:
		m.ctrl.PrevPage()
		return m, nil
	case keyReload:
		m.ctrl.Refresh()
		return m, nil
	case keySlash:
		m.searching = true
		m.table.Blur()
		m.search.Focus()
		return m, textinput.Blink
	case keyEsc:
		if m.state.Query != "" {
			m.search.SetValue("")
			m.ctrl.SetQuery("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
