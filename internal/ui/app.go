package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/pushpanel/internal/controller"
	"github.com/five82/pushpanel/internal/logtail"
	"github.com/five82/pushpanel/internal/prefs"
	"github.com/five82/pushpanel/internal/state"
)

// Dispatcher runs panel actions and reconciliations.
type Dispatcher interface {
	Reconcile(ctx context.Context) (controller.UIState, error)
	Dispatch(ctx context.Context, action controller.Action) error
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Dispatcher
	Store      *state.Store
	ServerURL  string
	PollTick   time.Duration
	ThemeName  string
	// PrefsPath is where a cycled theme is remembered. Empty disables saving.
	PrefsPath string
	// LogPath is the panel's own log, shown as recent activity. Empty hides it.
	LogPath string
	Logger  *zap.Logger
}

// inputField pairs a store input with its text editor.
type inputField struct {
	id       controller.InputID
	model    textinput.Model
	clearGen int
	invalid  bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	ctrl      Dispatcher
	store     *state.Store
	serverURL string
	prefsPath string
	logPath   string
	pollTick  time.Duration
	logger    *zap.Logger
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	focus    int

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	inputs      []inputField
	pending     int
	activity    []logtail.Entry
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 250 * time.Millisecond
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		store:     opts.Store,
		serverURL: opts.ServerURL,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		logger:    logger,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
		for _, in := range m.snapshot.Inputs {
			m.inputs = append(m.inputs, inputField{
				id:       in.ID,
				model:    newTextInput(in.ID),
				clearGen: in.ClearGen,
			})
		}
	}
	m.applyTheme()
	return m
}

func newTextInput(id controller.InputID) textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 32
	switch id {
	case controller.InputName:
		ti.Placeholder = "device name (required)"
	case controller.InputMessage:
		ti.Placeholder = "test message"
	}
	return ti
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.ctrl != nil {
		cmds = append(cmds, reconcileCmd(m.ctx, m.ctrl, m.store))
	}
	if m.logPath != "" {
		cmds = append(cmds, activityCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case actionDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		if msg.err != nil {
			m.logger.Debug("action finished with error", zap.Stringer("action", msg.action), zap.Error(msg.err))
		}
		return m, m.afterChange()

	case reconcileDoneMsg:
		if msg.err != nil {
			m.logger.Warn("reconcile failed", zap.Error(msg.err))
		} else {
			m.logger.Info("reconciled on request", zap.Stringer("state", msg.state))
		}
		return m, m.afterChange()

	case activityMsg:
		if msg.err != nil {
			m.logger.Debug("read activity", zap.Error(msg.err))
			return m, nil
		}
		m.activity = msg.entries
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. While an input has focus, plain
// characters go to it and only control keys are interpreted.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Reconcile):
		return m, reconcileCmd(m.ctx, m.ctrl, m.store)
	case key.Matches(msg, m.keys.Activate):
		return m.activateFocused()
	}

	if m.focusedInput() >= 0 {
		if key.Matches(msg, m.keys.Escape) {
			m.focusControl(controller.ControlRegister)
			return m, nil
		}
		return m.updateFocusedInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Register):
		return m.activateControl(controller.ControlRegister)
	case key.Matches(msg, m.keys.Subscribe):
		return m.activateControl(controller.ControlSubscribe)
	case key.Matches(msg, m.keys.TestPush):
		return m.activateControl(controller.ControlTestPush)
	}
	return m, nil
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyTheme()
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("save prefs", zap.Error(err))
	}
}

func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	for i := range m.inputs {
		m.inputs[i].model.TextStyle = styles.Text
		m.inputs[i].model.PlaceholderStyle = styles.FaintText
		m.inputs[i].model.PromptStyle = styles.AccentText
	}
}

// activateFocused runs the focused control, or the control an input belongs
// to when an input has focus.
func (m Model) activateFocused() (tea.Model, tea.Cmd) {
	items := m.focusItems()
	if len(items) == 0 {
		return m, nil
	}
	return m.activateControl(items[m.focus%len(items)].owner())
}

// activateControl dispatches the handler currently bound to id. Disabled
// controls do nothing.
func (m Model) activateControl(id controller.ControlID) (tea.Model, tea.Cmd) {
	cv, ok := m.snapshot.Control(id)
	if !ok || !cv.Enabled || cv.Action == controller.ActionNone || m.ctrl == nil {
		return m, nil
	}
	m.syncInputs()
	m.pending++
	return m, actionCmd(m.ctx, m.ctrl, m.store, cv.Action)
}

// syncInputs pushes typed text into the store before an action reads it.
func (m *Model) syncInputs() {
	if m.store == nil {
		return
	}
	for _, in := range m.inputs {
		m.store.SetInputValue(in.id, in.model.Value())
	}
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = time.Now()

	for i := range m.inputs {
		view, ok := snap.Input(m.inputs[i].id)
		if !ok {
			continue
		}
		if view.ClearGen != m.inputs[i].clearGen {
			m.inputs[i].clearGen = view.ClearGen
			m.inputs[i].model.SetValue("")
		}
		if view.Invalid && !m.inputs[i].invalid {
			m.focusInput(view.ID)
		}
		m.inputs[i].invalid = view.Invalid
	}
	m.fixFocus()
}

// afterChange refreshes what an action or reconcile may have changed.
func (m Model) afterChange() tea.Cmd {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logPath != "" {
		cmds = append(cmds, activityCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	idx := m.focusedInput()
	if idx < 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[idx].model, cmd = m.inputs[idx].model.Update(msg)
	return m, cmd
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionDoneMsg struct {
	action controller.Action
	err    error
}

type reconcileDoneMsg struct {
	state controller.UIState
	err   error
}

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func actionCmd(ctx context.Context, ctrl Dispatcher, store *state.Store, action controller.Action) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Dispatch(ctx, action)
		if store != nil {
			store.RecordResult(action, err)
		}
		return actionDoneMsg{action: action, err: err}
	}
}

func reconcileCmd(ctx context.Context, ctrl Dispatcher, store *state.Store) tea.Cmd {
	if ctrl == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := ctrl.Reconcile(ctx)
		if store != nil {
			store.RecordRefresh(err)
		}
		return reconcileDoneMsg{state: st, err: err}
	}
}

func activityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Recent(path, activityLines)
		return activityMsg{entries: entries, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
