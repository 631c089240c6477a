package controller

import (
	"strings"
	"sync"
)

type fakeControl struct {
	enabled bool
	label   string
	handler Action
}

func (c *fakeControl) SetEnabled(enabled bool) { c.enabled = enabled }
func (c *fakeControl) SetLabel(label string)   { c.label = label }
func (c *fakeControl) SetHandler(action Action) {
	c.handler = action
}

type fakeInput struct {
	value    string
	required bool
	enabled  bool
	cleared  int
	invalid  bool
}

func (i *fakeInput) Value() string { return i.value }

func (i *fakeInput) Validate() bool {
	i.invalid = i.required && strings.TrimSpace(i.value) == ""
	return !i.invalid
}

func (i *fakeInput) Clear() {
	i.value = ""
	i.cleared++
}

func (i *fakeInput) SetEnabled(enabled bool) { i.enabled = enabled }

type fakePort struct {
	mu       sync.Mutex
	controls map[ControlID]*fakeControl
	inputs   map[InputID]*fakeInput
	states   []UIState
}

func newFakePort(inputs ...InputID) *fakePort {
	p := &fakePort{
		controls: map[ControlID]*fakeControl{},
		inputs:   map[InputID]*fakeInput{},
	}
	for _, id := range Controls {
		p.controls[id] = &fakeControl{}
	}
	for _, id := range inputs {
		p.inputs[id] = &fakeInput{required: id == InputName}
	}
	return p
}

func (p *fakePort) Control(id ControlID) Control {
	return p.controls[id]
}

func (p *fakePort) Input(id InputID) (Input, bool) {
	in, ok := p.inputs[id]
	if !ok {
		return nil, false
	}
	return in, true
}

func (p *fakePort) ObserveState(state UIState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

func (p *fakePort) enabledControls() []ControlID {
	var out []ControlID
	for _, id := range Controls {
		if p.controls[id].enabled {
			out = append(out, id)
		}
	}
	return out
}

func (p *fakePort) lastState() (UIState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.states) == 0 {
		return Unregistered, false
	}
	return p.states[len(p.states)-1], true
}
