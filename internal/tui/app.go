package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/machineconfig/internal/metrics"
	"github.com/jask/machineconfig/internal/session"
)

// ItemSource loads the configurable items for a machine keyword.
type ItemSource interface {
	FetchItems(ctx context.Context, keyword session.Keyword) ([]session.ConfigurableItem, error)
}

// App is the bubbletea model over one configuration session.
type App struct {
	ctx     context.Context
	session *session.Session
	source  ItemSource
	log     *zap.Logger

	keys       keyMap
	noticeKeys noticeKeyMap
	help       help.Model
	project    textinput.Model

	focus        focusArea
	itemCursor   int
	configCursor int
	notice       string
	status       string
	statusIsErr  bool
	width        int
}

type focusArea string

const (
	focusItems     focusArea = "items"
	focusProject   focusArea = "project"
	focusAccordion focusArea = "accordion"
)

// messages
type itemsLoadedMsg struct {
	id      session.RequestID
	keyword session.Keyword
	items   []session.ConfigurableItem
}

type fetchFailedMsg struct {
	id      session.RequestID
	keyword session.Keyword
	err     error
}

// New builds the App and subscribes it to session events. log may be nil.
func New(ctx context.Context, s *session.Session, source ItemSource, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = "Enter project number"
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.SetValue(s.ProjectNumber())

	keys := newKeyMap()
	a := &App{
		ctx:        ctx,
		session:    s,
		source:     source,
		log:        log,
		keys:       keys,
		noticeKeys: noticeKeyMap{keyMap: keys},
		help:       help.New(),
		project:    ti,
		focus:      focusItems,
	}
	s.Subscribe(a.onEvent)
	return a
}

// Init fetches the items for the initial machine.
func (a *App) Init() tea.Cmd {
	return a.selectMachine(a.session.ActiveKeyword())
}

// onEvent runs synchronously inside Update, after the session has changed.
func (a *App) onEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventMachineSelected:
		a.setStatus(fmt.Sprintf("loading %s items...", ev.Keyword), false)
	case session.EventItemsLoaded:
		a.itemCursor = 0
		a.setStatus(fmt.Sprintf("%d %s items loaded", len(a.session.ActiveItems()), ev.Keyword), false)
	case session.EventFetchFailed:
		a.setStatus(fmt.Sprintf("error: could not load %s items: %v", ev.Keyword, ev.Err), true)
	case session.EventConfigurationCompleted:
		if ev.Completed != nil {
			a.setStatus(fmt.Sprintf("completed %s", ev.Completed.Label()), false)
		}
	}
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusIsErr = isErr
}

func (a *App) selectMachine(k session.Keyword) tea.Cmd {
	id, err := a.session.SelectMachine(k)
	if err != nil {
		a.log.Error("select machine", zap.Error(err))
		a.setStatus("error: "+err.Error(), true)
		return nil
	}
	return a.fetchCmd(id, k)
}

func (a *App) fetchCmd(id session.RequestID, k session.Keyword) tea.Cmd {
	ctx, source := a.ctx, a.source
	return func() tea.Msg {
		items, err := source.FetchItems(ctx, k)
		if err != nil {
			return fetchFailedMsg{id: id, keyword: k, err: err}
		}
		return itemsLoadedMsg{id: id, keyword: k, items: items}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
		return a, nil
	case itemsLoadedMsg:
		if err := a.session.ApplyFetch(m.id, m.items); errors.Is(err, session.ErrStaleResponse) {
			metrics.RecordStale()
		}
		return a, nil
	case fetchFailedMsg:
		if err := a.session.FailFetch(m.id, m.err); errors.Is(err, session.ErrStaleResponse) {
			metrics.RecordStale()
		}
		return a, nil
	case tea.KeyMsg:
		if a.notice != "" {
			switch {
			case m.Type == tea.KeyCtrlC:
				return a, tea.Quit
			case key.Matches(m, a.keys.Dismiss):
				a.notice = ""
			}
			return a, nil
		}
		if a.focus == focusProject {
			return a.handleProjectKey(m)
		}
		return a.handleKey(m)
	}
	if a.focus == focusProject {
		var cmd tea.Cmd
		a.project, cmd = a.project.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleProjectKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEnter, tea.KeyEsc, tea.KeyTab:
		a.project.Blur()
		a.focus = focusItems
		return a, nil
	}
	var cmd tea.Cmd
	a.project, cmd = a.project.Update(m)
	a.session.SetProjectNumber(a.project.Value())
	return a, cmd
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k := m.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
		idx := int(k[0] - '1')
		if kws := a.session.Catalog().Keywords; idx < len(kws) {
			return a, a.selectMachine(kws[idx])
		}
		return a, nil
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(m, a.keys.PrevMachine):
		return a, a.selectMachine(a.neighbourMachine(-1))
	case key.Matches(m, a.keys.NextMachine):
		return a, a.selectMachine(a.neighbourMachine(1))
	case key.Matches(m, a.keys.Refresh):
		return a, a.selectMachine(a.session.ActiveKeyword())
	case key.Matches(m, a.keys.Project):
		a.focus = focusProject
		return a, a.project.Focus()
	case key.Matches(m, a.keys.Accordion):
		if a.focus == focusAccordion {
			a.focus = focusItems
		} else if len(a.session.CompletedConfigurations()) > 0 {
			a.focus = focusAccordion
		} else {
			a.setStatus("no completed configurations yet", false)
		}
	case key.Matches(m, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(m, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(m, a.keys.Complete):
		a.complete()
	case a.focus == focusAccordion && key.Matches(m, a.keys.Expand):
		a.contractErr(a.session.ToggleConfigurationExpanded(a.configCursor))
	case a.focus == focusItems && key.Matches(m, a.keys.Toggle):
		if len(a.session.ActiveItems()) == 0 {
			a.setStatus("no items loaded", false)
			return a, nil
		}
		a.contractErr(a.session.ToggleItemSelection(a.itemCursor))
	case a.focus == focusItems && key.Matches(m, a.keys.Size):
		a.cycleSize()
	}
	return a, nil
}

func (a *App) neighbourMachine(delta int) session.Keyword {
	kws := a.session.Catalog().Keywords
	current := a.session.ActiveKeyword()
	idx := 0
	for i, k := range kws {
		if k == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(kws)) % len(kws)
	return kws[idx]
}

func (a *App) moveCursor(delta int) {
	switch a.focus {
	case focusItems:
		a.itemCursor = clamp(a.itemCursor+delta, len(a.session.ActiveItems()))
	case focusAccordion:
		a.configCursor = clamp(a.configCursor+delta, len(a.session.CompletedConfigurations()))
	}
}

func (a *App) cycleSize() {
	items := a.session.ActiveItems()
	if a.itemCursor >= len(items) {
		return
	}
	it := items[a.itemCursor]
	if !it.HasSizeOption {
		a.setStatus(fmt.Sprintf("%q has no size option", it.Text), false)
		return
	}
	next := a.session.Catalog().NextSize(it.SelectedSize)
	if err := a.session.SetItemSize(a.itemCursor, next); err != nil {
		a.contractErr(err)
	}
}

func (a *App) complete() {
	cfg, err := a.session.CompleteConfiguration()
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		a.log.Info("completion refused", zap.String("reasons", verr.Detail()))
		a.notice = verr.Error()
	case err != nil:
		a.contractErr(err)
	default:
		a.configCursor = len(a.session.CompletedConfigurations()) - 1
		a.log.Debug("completed", zap.String("id", cfg.ID))
	}
}

// contractErr logs errors that a well-formed view never produces.
func (a *App) contractErr(err error) {
	if err == nil {
		return
	}
	a.log.Error("session contract violation", zap.Error(err))
	a.setStatus("error: "+err.Error(), true)
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
