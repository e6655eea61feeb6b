package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hkrewson/collectz/internal/catalog"
	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/repositories"
	"github.com/hkrewson/collectz/internal/services"
	"github.com/hkrewson/collectz/internal/tracker"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ShelfView ViewState = iota
	JobsView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	api     services.API
	trk     *tracker.Tracker
	repo    *repositories.ComicRepository
	width   int
	height  int
	shelf   list.Model
	jobList list.Model
	jobs    []models.ImportJob
	// ledgerChanged carries tracker notifications into the Elm loop. The
	// subscription callback must never block, so sends are best-effort into
	// a buffer of one; a dropped signal coalesces with the pending one.
	ledgerChanged chan struct{}
	completed     chan models.ImportJob
	err           error
	help          help.Model
	keys          keyMap
}

type comicsFetchedMsg struct {
	comics []models.Comic
	err    error
}

type ledgerChangedMsg struct{}

type jobCompletedMsg struct {
	job models.ImportJob
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, api services.API, trk *tracker.Tracker, repo *repositories.ComicRepository) *Model {
	m := &Model{
		ctx:           ctx,
		view:          ShelfView,
		api:           api,
		trk:           trk,
		repo:          repo,
		ledgerChanged: make(chan struct{}, 1),
		completed:     make(chan models.ImportJob, 8),
		help:          help.New(),
		keys:          newKeyMap(),
	}

	trk.Subscribe(func() {
		select {
		case m.ledgerChanged <- struct{}{}:
		default:
		}
	})

	trk.OnJobCompleted(func(job models.ImportJob) {
		select {
		case m.completed <- job:
		default:
		}
	})

	return m
}

// Init loads the shelf and begins listening for ledger changes. The shelf
// starts foregrounded; focus reporting takes over from there.
func (m *Model) Init() tea.Cmd {
	m.trk.SetForegrounded(true)
	m.jobs = m.trk.Jobs()
	return tea.Batch(m.fetchComics(), m.waitForLedger(), m.waitForCompletion())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.shelf.SetSize(msg.Width-4, msg.Height-10)
		m.jobList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.FocusMsg:
		m.trk.SetForegrounded(true)
		return m, nil

	case tea.BlurMsg:
		m.trk.SetForegrounded(false)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ShelfView:
			return m.handleShelfKeys(msg)
		case JobsView:
			return m.handleJobsKeys(msg)
		}

	case comicsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		catalog.SortComics(msg.comics)
		items := make([]list.Item, len(msg.comics))
		for i, comic := range msg.comics {
			items[i] = comicItem{comic: comic}
		}
		m.shelf = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.shelf.Title = "Shelf"
		m.shelf.SetSize(m.width-4, m.height-10)
		return m, nil

	case ledgerChangedMsg:
		m.jobs = m.trk.Jobs()
		m.rebuildJobList()
		return m, m.waitForLedger()

	case jobCompletedMsg:
		// A finished import means new comics server-side; refresh the shelf.
		return m, tea.Batch(m.fetchComics(), m.waitForCompletion())
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	}

	var body string
	switch m.view {
	case ShelfView:
		body = m.shelf.View()
	case JobsView:
		body = m.jobList.View()
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.refresh, m.keys.quit}
	if m.view == JobsView {
		helpKeys = []key.Binding{m.keys.toggle, m.keys.dismiss, m.keys.quit}
	}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", body, m.renderDock(), helpView)
}

func (m *Model) handleShelfKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.view = JobsView
		m.rebuildJobList()
		return m, nil
	case "r":
		m.err = nil
		return m, m.fetchComics()
	}

	var cmd tea.Cmd
	m.shelf, cmd = m.shelf.Update(msg)
	return m, cmd
}

func (m *Model) handleJobsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "esc":
		m.view = ShelfView
		return m, nil
	case "d":
		selected := m.jobList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(jobItem); ok && item.job.Status.Terminal() {
				m.trk.DismissJob(item.job.ID)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ShelfView:
		m.shelf, cmd = m.shelf.Update(msg)
	case JobsView:
		m.jobList, cmd = m.jobList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildJobList() {
	items := make([]list.Item, len(m.jobs))
	for i, job := range m.jobs {
		items[i] = jobItem{job: job}
	}
	m.jobList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.jobList.Title = "Import Jobs"
	m.jobList.SetSize(m.width-4, m.height-10)
}

// renderDock draws the one-line import status bar shown under every view.
func (m *Model) renderDock() string {
	active := 0
	var latest *models.ImportJob
	for i := range m.jobs {
		if m.jobs[i].Active() {
			active++
			if latest == nil {
				latest = &m.jobs[i]
			}
		}
	}

	if active == 0 {
		if len(m.jobs) == 0 {
			return styles.help.Render("no imports")
		}
		return styles.ok.Render(fmt.Sprintf("%d import(s), all settled", len(m.jobs)))
	}

	status := fmt.Sprintf("%d import(s) in flight", active)
	if latest != nil {
		status = fmt.Sprintf("%s • #%d %s %s", status, latest.ID, latest.Provider, describeJob(*latest))
	}
	if m.trk.Leader() {
		status += " • polling"
	}
	return styles.warn.Render(status)
}

func (m *Model) fetchComics() tea.Cmd {
	return func() tea.Msg {
		comics, err := m.api.ListComics(m.ctx)
		if err != nil {
			// Server unreachable: fall back to the local cache.
			cached, cacheErr := m.repo.List(map[string]any{})
			if cacheErr == nil && len(cached) > 0 {
				return comicsFetchedMsg{comics: cached}
			}
			return comicsFetchedMsg{err: err}
		}

		// Cache refresh failure is not fatal; the listing still renders.
		_ = m.repo.Sync(comics)
		return comicsFetchedMsg{comics: comics}
	}
}

func (m *Model) waitForLedger() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ledgerChanged:
			return ledgerChangedMsg{}
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}

func (m *Model) waitForCompletion() tea.Cmd {
	return func() tea.Msg {
		select {
		case job := <-m.completed:
			return jobCompletedMsg{job: job}
		case <-m.ctx.Done():
			return tea.Quit()
		}
	}
}
