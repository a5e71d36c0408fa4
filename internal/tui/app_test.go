package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/assetview/internal/model"
)

type fakeController struct {
	calls   []string
	queries []string
	state   model.ViewState
	updates chan model.ViewState
}

func newFakeController() *fakeController {
	return &fakeController{
		state:   model.ViewState{CurrentPage: 1, TotalPages: 1, Phase: model.PhaseIdle},
		updates: make(chan model.ViewState, 1),
	}
}

func (f *fakeController) Start()   { f.calls = append(f.calls, "start") }
func (f *fakeController) Refresh() { f.calls = append(f.calls, "refresh") }
func (f *fakeController) NextPage() bool {
	f.calls = append(f.calls, "next")
	return true
}
func (f *fakeController) PrevPage() bool {
	f.calls = append(f.calls, "prev")
	return true
}
func (f *fakeController) SetQuery(q string) {
	f.calls = append(f.calls, "query")
	f.queries = append(f.queries, q)
}
func (f *fakeController) State() model.ViewState            { return f.state }
func (f *fakeController) Subscribe() <-chan model.ViewState { return f.updates }

func update(t *testing.T, m browser, msg tea.Msg) (browser, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	b, ok := updated.(browser)
	require.True(t, ok)
	return b, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyState() model.ViewState {
	return model.ViewState{
		CurrentPage: 2,
		TotalPages:  5,
		Phase:       model.PhaseReady,
		Records: []model.Asset{
			{ID: 1, Host: "alpha", Owner: "alice", IPs: []model.IP{{Address: "10.0.0.1"}}, Ports: []model.Port{{Port: 22}, {Port: 443}}},
			{ID: 2, Host: "beta", Owner: "bob"},
		},
	}
}

func TestBrowserInit(t *testing.T) {
	ctrl := newFakeController()
	m := newBrowser(ctrl)

	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), statusLoading)
}

func TestBrowserStateMsg(t *testing.T) {
	ctrl := newFakeController()
	m := newBrowser(ctrl)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})

	m, cmd := update(t, m, stateMsg(readyState()))
	assert.NotNil(t, cmd, "must keep listening for updates")
	assert.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "10.0.0.1", m.table.Rows()[0][4])
	assert.Equal(t, "22, 443", m.table.Rows()[0][5])

	view := m.View()
	assert.Contains(t, view, "Page 2 of 5")
	assert.Contains(t, view, "alpha")
}

func TestBrowserWaitForUpdate(t *testing.T) {
	ch := make(chan model.ViewState, 1)
	ch <- readyState()

	msg := waitForUpdate(ch)()
	s, ok := msg.(stateMsg)
	require.True(t, ok)
	assert.Equal(t, 5, s.TotalPages)

	close(ch)
	assert.IsType(t, updatesClosedMsg{}, waitForUpdate(ch)())
}

func TestBrowserPagingKeys(t *testing.T) {
	ctrl := newFakeController()
	m := newBrowser(ctrl)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, keyRunes("n"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, keyRunes("p"))
	_, _ = update(t, m, keyRunes("r"))

	assert.Equal(t, []string{"next", "next", "prev", "prev", "refresh"}, ctrl.calls)
}

func TestBrowserSearch(t *testing.T) {
	ctrl := newFakeController()
	m := newBrowser(ctrl)

	m, cmd := update(t, m, keyRunes("/"))
	assert.True(t, m.searching)
	assert.NotNil(t, cmd)

	// Keys go to the input while searching, not to paging.
	m, _ = update(t, m, keyRunes("n"))
	m, _ = update(t, m, keyRunes("s"))
	assert.Empty(t, ctrl.calls)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Equal(t, []string{"ns"}, ctrl.queries)

	// Esc outside the input clears an active query.
	m, _ = update(t, m, stateMsg(model.ViewState{CurrentPage: 1, TotalPages: 1, Query: "ns", Phase: model.PhaseReady}))
	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []string{"ns", ""}, ctrl.queries)
}

func TestBrowserSearchCancel(t *testing.T) {
	ctrl := newFakeController()
	m := newBrowser(ctrl)

	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes("x"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.searching)
	assert.Empty(t, m.search.Value())
	assert.Empty(t, ctrl.queries)
}

func TestBrowserQuit(t *testing.T) {
	m := newBrowser(newFakeController())

	_, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowserShowsError(t *testing.T) {
	m := newBrowser(newFakeController())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	s := readyState()
	s.Phase = model.PhaseError
	s.Err = errors.New("connection refused")

	m, _ = update(t, m, stateMsg(s))
	view := m.View()
	assert.Contains(t, view, "connection refused")
	assert.Contains(t, view, "alpha", "last good page stays visible")
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name  string
		state model.ViewState
		want  string
	}{
		{name: "idle", state: model.ViewState{Phase: model.PhaseIdle}, want: statusLoading},
		{name: "loading", state: model.ViewState{Phase: model.PhaseLoading, Loading: true}, want: statusLoading},
		{name: "loading over records", state: model.ViewState{Phase: model.PhaseLoading, Loading: true, Records: readyState().Records}, want: statusLoading},
		{name: "sorting empty", state: model.ViewState{Phase: model.PhaseSorting, Sorting: true}, want: statusSorting},
		{name: "sorting with records", state: model.ViewState{Phase: model.PhaseSorting, Sorting: true, Records: readyState().Records}, want: ""},
		{name: "empty", state: model.ViewState{Phase: model.PhaseReady}, want: statusEmpty},
		{name: "ready", state: readyState(), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.state))
		})
	}
}

func TestPageLabel(t *testing.T) {
	assert.Equal(t, "Page 1 of 1", PageLabel(model.ViewState{CurrentPage: 1, TotalPages: 1}))
	assert.Equal(t, "Page 3 of 7", PageLabel(model.ViewState{CurrentPage: 3, TotalPages: 7}))
}
