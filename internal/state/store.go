package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/five82/pushpanel/internal/controller"
)

// ControlView is the rendered state of one panel control.
type ControlView struct {
	ID      controller.ControlID
	Enabled bool
	Label   string
	Action  controller.Action
}

// InputView is the rendered state of one text input.
type InputView struct {
	ID       controller.InputID
	Value    string
	Enabled  bool
	Required bool
	Invalid  bool
	// ClearGen increments on every Clear so the UI can reset its editor.
	ClearGen int
}

// Snapshot represents the latest panel data available to the UI.
type Snapshot struct {
	State       controller.UIState
	HasState    bool // false until the first reconcile
	Controls    []ControlView
	Inputs      []InputView
	LastAction  controller.Action
	LastError   error
	LastUpdated time.Time
	// ConsecutiveFailures counts failed actions since the last success.
	ConsecutiveFailures int
	// RefreshError is the error from the latest background reconcile.
	RefreshError error
	LastRefresh  time.Time
}

// IsDegraded returns true when several actions in a row have failed.
func (s Snapshot) IsDegraded() bool {
	return s.ConsecutiveFailures >= 2
}

// Control returns the view for id.
func (s Snapshot) Control(id controller.ControlID) (ControlView, bool) {
	for _, c := range s.Controls {
		if c.ID == id {
			return c, true
		}
	}
	return ControlView{}, false
}

// Input returns the view for id.
func (s Snapshot) Input(id controller.InputID) (InputView, bool) {
	for _, in := range s.Inputs {
		if in.ID == id {
			return in, true
		}
	}
	return InputView{}, false
}

// Store is the panel model the controller writes to and the UI reads from.
// It implements controller.Port and controller.StateObserver.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

var (
	_ controller.Port          = (*Store)(nil)
	_ controller.StateObserver = (*Store)(nil)
	_ controller.LayoutApplier = (*Store)(nil)
)

// NewStore returns a store with the given inputs and the Unregistered layout
// applied. The name input is required.
func NewStore(inputs ...controller.InputID) *Store {
	s := &Store{}
	for _, cs := range controller.Layout(controller.Unregistered) {
		s.snapshot.Controls = append(s.snapshot.Controls, ControlView{
			ID:      cs.ID,
			Enabled: cs.Enabled,
			Label:   cs.Label,
			Action:  cs.Handler,
		})
	}
	seen := map[controller.InputID]bool{}
	for _, id := range inputs {
		if seen[id] {
			continue
		}
		seen[id] = true
		s.snapshot.Inputs = append(s.snapshot.Inputs, InputView{
			ID:       id,
			Required: id == controller.InputName,
		})
	}
	return s
}

// Control implements controller.Port.
func (s *Store) Control(id controller.ControlID) controller.Control {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.controlIndex(id) < 0 {
		return nil
	}
	return &control{store: s, id: id}
}

// Input implements controller.Port.
func (s *Store) Input(id controller.InputID) (controller.Input, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inputIndex(id) < 0 {
		return nil, false
	}
	return &input{store: s, id: id}, true
}

// ObserveState records the state from the latest reconcile.
func (s *Store) ObserveState(state controller.UIState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.State = state
	s.snapshot.HasState = true
}

// ApplyLayout writes a whole layout and its state under one lock.
func (s *Store) ApplyLayout(state controller.UIState, controls []controller.ControlState, inputs []controller.InputState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cs := range controls {
		if i := s.controlIndex(cs.ID); i >= 0 {
			s.snapshot.Controls[i].Enabled = cs.Enabled
			s.snapshot.Controls[i].Label = cs.Label
			s.snapshot.Controls[i].Action = cs.Handler
		}
	}
	for _, is := range inputs {
		if i := s.inputIndex(is.ID); i >= 0 {
			s.snapshot.Inputs[i].Enabled = is.Enabled
		}
	}
	s.snapshot.State = state
	s.snapshot.HasState = true
}

// SetInputValue stores text typed into an input and clears its invalid flag.
// It reports false when the panel has no such input.
func (s *Store) SetInputValue(id controller.InputID, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.inputIndex(id)
	if i < 0 {
		return false
	}
	s.snapshot.Inputs[i].Value = value
	s.snapshot.Inputs[i].Invalid = false
	return true
}

// RecordResult stores the outcome of an action. When err is non-nil the
// panel keeps its data and the error is recorded for display.
func (s *Store) RecordResult(action controller.Action, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastAction = action
	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// RecordRefresh stores the outcome of a background reconcile. It does not
// touch the action result.
func (s *Store) RecordRefresh(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.RefreshError = err
	s.snapshot.LastRefresh = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Controls = append([]ControlView(nil), s.snapshot.Controls...)
	snap.Inputs = append([]InputView(nil), s.snapshot.Inputs...)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	if s.snapshot.RefreshError != nil {
		snap.RefreshError = fmt.Errorf("%w", s.snapshot.RefreshError)
	}
	return snap
}

func (s *Store) controlIndex(id controller.ControlID) int {
	for i, c := range s.snapshot.Controls {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) inputIndex(id controller.InputID) int {
	for i, in := range s.snapshot.Inputs {
		if in.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) updateControl(id controller.ControlID, fn func(*ControlView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.controlIndex(id); i >= 0 {
		fn(&s.snapshot.Controls[i])
	}
}

func (s *Store) updateInput(id controller.InputID, fn func(*InputView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.inputIndex(id); i >= 0 {
		fn(&s.snapshot.Inputs[i])
	}
}

type control struct {
	store *Store
	id    controller.ControlID
}

func (c *control) SetEnabled(enabled bool) {
	c.store.updateControl(c.id, func(v *ControlView) { v.Enabled = enabled })
}

func (c *control) SetLabel(label string) {
	c.store.updateControl(c.id, func(v *ControlView) { v.Label = label })
}

func (c *control) SetHandler(action controller.Action) {
	c.store.updateControl(c.id, func(v *ControlView) { v.Action = action })
}

type input struct {
	store *Store
	id    controller.InputID
}

func (i *input) Value() string {
	i.store.mu.RLock()
	defer i.store.mu.RUnlock()
	if idx := i.store.inputIndex(i.id); idx >= 0 {
		return i.store.snapshot.Inputs[idx].Value
	}
	return ""
}

func (i *input) Validate() bool {
	ok := true
	i.store.updateInput(i.id, func(v *InputView) {
		v.Invalid = v.Required && strings.TrimSpace(v.Value) == ""
		ok = !v.Invalid
	})
	return ok
}

func (i *input) Clear() {
	i.store.updateInput(i.id, func(v *InputView) {
		v.Value = ""
		v.Invalid = false
		v.ClearGen++
	})
}

func (i *input) SetEnabled(enabled bool) {
	i.store.updateInput(i.id, func(v *InputView) { v.Enabled = enabled })
}
