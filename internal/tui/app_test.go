package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jask/machineconfig/internal/metrics"
	"github.com/jask/machineconfig/internal/session"
)

type fakeSource struct {
	items map[session.Keyword][]session.ConfigurableItem
	errs  map[session.Keyword]error
	calls []session.Keyword
}

func (f *fakeSource) FetchItems(_ context.Context, k session.Keyword) ([]session.ConfigurableItem, error) {
	f.calls = append(f.calls, k)
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	return f.items[k], nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		items: map[session.Keyword][]session.ConfigurableItem{
			"washer": {
				{Text: "Drum bearing"},
				{Text: "Pump", HasSizeOption: true},
				{Text: "Door seal"},
			},
			"dryer": {
				{Text: "Heater"},
				{Text: "Lint filter", HasSizeOption: true},
			},
			"conveyor": {
				{Text: "Belt", HasSizeOption: true},
			},
		},
		errs: map[session.Keyword]error{},
	}
}

func newTestApp(t *testing.T, src *fakeSource, log *zap.Logger) *App {
	t.Helper()
	cat, err := session.NewCatalog([]string{"washer", "dryer", "conveyor"}, []string{"S", "M", "L"}, "washer")
	require.NoError(t, err)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC))
	s := session.New(cat, session.WithClock(clock), session.WithLogger(log))
	a := New(context.Background(), s, src, log)
	send(a, tea.WindowSizeMsg{Width: 200, Height: 60})
	return a
}

// send delivers msg and returns the resulting command without running it.
func send(a *App, msg tea.Msg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

// settle runs a fetch command and feeds its result back into the app.
func settle(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	send(a, cmd())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func typeProject(a *App, value string) {
	send(a, runes("p"))
	send(a, runes(value))
	send(a, enter)
}

func itemTexts(items []session.ConfigurableItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestInitLoadsInitialMachine(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, nil)

	settle(t, a, a.Init())

	require.Equal(t, []session.Keyword{"washer"}, src.calls)
	require.Equal(t, []string{"Drum bearing", "Pump", "Door seal"}, itemTexts(a.session.ActiveItems()))
	require.Contains(t, a.status, "3 washer items loaded")
	require.Contains(t, a.View(), "(Count: 1/3 - 33.33%)")
}

func TestCompleteFlow(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())

	typeProject(a, "PRJ1")
	require.Equal(t, "PRJ1", a.session.ProjectNumber())
	require.Equal(t, focusItems, a.focus)

	send(a, space)
	send(a, runes("j"))
	send(a, space)
	send(a, runes("s"))
	send(a, runes("s"))

	selected := a.session.SelectedActiveItems()
	require.Len(t, selected, 2)
	require.Equal(t, session.Size("M"), selected[1].SelectedSize)
	require.Contains(t, a.View(), "Pump (M)")

	send(a, runes("c"))
	configs := a.session.CompletedConfigurations()
	require.Len(t, configs, 1)
	require.Equal(t, "PRJ1-washer-001", configs[0].Label())
	require.Empty(t, a.session.SelectedActiveItems())
	require.Contains(t, a.status, "completed PRJ1-washer-001")
	require.Contains(t, a.View(), "PRJ1-washer-001")
}

func TestCompleteWithoutProjectShowsNotice(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())
	send(a, space)

	send(a, runes("c"))
	require.Equal(t, session.ValidationMessage, a.notice)
	require.Contains(t, a.View(), session.ValidationMessage)
	require.Empty(t, a.session.CompletedConfigurations())

	// The notice swallows other keys until dismissed.
	send(a, space)
	require.Len(t, a.session.SelectedActiveItems(), 1)

	send(a, esc)
	require.Empty(t, a.notice)
	require.NotContains(t, a.View(), session.ValidationMessage)
}

func TestMachineSwitchDropsStaleResponse(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, nil)
	first := a.Init()
	second := send(a, runes("l"))
	require.Equal(t, session.Keyword("dryer"), a.session.ActiveKeyword())

	before := testutil.ToFloat64(metrics.StaleResponsesDropped)
	settle(t, a, second)
	settle(t, a, first)

	require.Equal(t, []string{"Heater", "Lint filter"}, itemTexts(a.session.ActiveItems()))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.StaleResponsesDropped))
}

func TestFetchFailureKeepsItems(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	src := newFakeSource()
	src.errs["dryer"] = errors.New("connection refused")
	a := newTestApp(t, src, zap.New(core))
	settle(t, a, a.Init())
	send(a, space)

	settle(t, a, send(a, runes("2")))

	require.Equal(t, session.Keyword("dryer"), a.session.ActiveKeyword())
	require.Equal(t, []string{"Drum bearing", "Pump", "Door seal"}, itemTexts(a.session.ActiveItems()))
	require.Empty(t, a.session.SelectedActiveItems())
	require.True(t, a.statusIsErr)
	require.Contains(t, a.status, "connection refused")
	require.Equal(t, 1, logs.FilterMessage("fetch configuration items failed").Len())

	// Washer items left on screen cannot be completed as a dryer configuration.
	typeProject(a, "PRJ1")
	send(a, space)
	send(a, runes("c"))
	require.Equal(t, session.ValidationMessage, a.notice)
	require.Empty(t, a.session.CompletedConfigurations())
}

func TestCompleteWhileLoadingShowsNotice(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())
	typeProject(a, "PRJ1")

	pending := send(a, runes("l"))
	send(a, space)
	send(a, runes("c"))
	require.Equal(t, session.ValidationMessage, a.notice)
	require.Empty(t, a.session.CompletedConfigurations())
	send(a, enter)

	settle(t, a, pending)
	send(a, space)
	send(a, runes("c"))
	configs := a.session.CompletedConfigurations()
	require.Len(t, configs, 1)
	require.Equal(t, "PRJ1-dryer-001", configs[0].Label())
	require.Equal(t, []string{"Heater"}, itemTexts(configs[0].Items))
}

func TestCtrlCQuitsFromNotice(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())
	send(a, runes("c"))
	require.NotEmpty(t, a.notice)

	require.Nil(t, send(a, runes("q")))
	cmd := send(a, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDigitSelectsMachine(t *testing.T) {
	src := newFakeSource()
	a := newTestApp(t, src, nil)
	settle(t, a, a.Init())

	settle(t, a, send(a, runes("3")))
	require.Equal(t, session.Keyword("conveyor"), a.session.ActiveKeyword())
	require.Equal(t, []string{"Belt"}, itemTexts(a.session.ActiveItems()))

	require.Nil(t, send(a, runes("9")))
	require.Equal(t, session.Keyword("conveyor"), a.session.ActiveKeyword())
}

func TestPrevMachineWraps(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())

	settle(t, a, send(a, runes("h")))
	require.Equal(t, session.Keyword("conveyor"), a.session.ActiveKeyword())
}

func TestProjectNumberSurvivesMachineSwitch(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())
	typeProject(a, "PRJ7")

	settle(t, a, send(a, runes("l")))
	require.Equal(t, "PRJ7", a.session.ProjectNumber())
	require.Contains(t, a.View(), "PRJ7")
}

func TestSizeOnItemWithoutOption(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())

	send(a, runes("s"))
	require.Contains(t, a.status, "has no size option")
	require.Equal(t, session.NoSize, a.session.ActiveItems()[0].SelectedSize)
}

func TestAccordionToggle(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	settle(t, a, a.Init())

	send(a, runes("a"))
	require.Equal(t, focusItems, a.focus)

	typeProject(a, "PRJ1")
	send(a, space)
	send(a, runes("c"))
	send(a, runes("j"))
	send(a, runes("j"))
	send(a, space)
	send(a, runes("c"))
	require.Len(t, a.session.CompletedConfigurations(), 2)

	send(a, runes("a"))
	require.Equal(t, focusAccordion, a.focus)
	send(a, runes("k"))
	send(a, enter)

	configs := a.session.CompletedConfigurations()
	require.True(t, configs[0].Expanded)
	require.False(t, configs[1].Expanded)
	require.Equal(t, "PRJ1-washer-002", configs[1].Label())

	view := a.View()
	require.Contains(t, view, "    Drum bearing")
	require.False(t, strings.Contains(view, "    Door seal"), "collapsed entry items should be hidden")
	require.Equal(t, []string{"Door seal"}, itemTexts(configs[1].Items))

	send(a, runes("a"))
	require.Equal(t, focusItems, a.focus)
}

func TestEmptyListToggleIsNoop(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	a := newTestApp(t, newFakeSource(), zap.New(core))

	send(a, space)
	require.Equal(t, "no items loaded", a.status)
	require.Zero(t, logs.Len())
}

func TestQuit(t *testing.T) {
	a := newTestApp(t, newFakeSource(), nil)
	cmd := send(a, runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
