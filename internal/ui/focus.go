package ui

import "github.com/five82/pushpanel/internal/controller"

// focusItem is one stop in the focus ring: a control or an input.
type focusItem struct {
	control controller.ControlID
	input   controller.InputID
}

func (f focusItem) isInput() bool { return f.input != "" }

// owner is the control an item activates on enter.
func (f focusItem) owner() controller.ControlID {
	switch f.input {
	case controller.InputName:
		return controller.ControlSubscribe
	case controller.InputMessage:
		return controller.ControlTestPush
	}
	return f.control
}

// focusItems lists the ring in display order, each input after the control
// it feeds.
func (m Model) focusItems() []focusItem {
	items := make([]focusItem, 0, len(controller.Controls)+len(m.inputs))
	for _, id := range controller.Controls {
		switch id {
		case controller.ControlSubscribe:
			if m.hasInput(controller.InputName) {
				items = append(items, focusItem{input: controller.InputName})
			}
		case controller.ControlTestPush:
			if m.hasInput(controller.InputMessage) {
				items = append(items, focusItem{input: controller.InputMessage})
			}
		}
		items = append(items, focusItem{control: id})
	}
	return items
}

func (m Model) hasInput(id controller.InputID) bool {
	return m.inputIndex(id) >= 0
}

func (m Model) inputIndex(id controller.InputID) int {
	for i, in := range m.inputs {
		if in.id == id {
			return i
		}
	}
	return -1
}

func (m Model) itemEnabled(item focusItem) bool {
	if item.isInput() {
		v, ok := m.snapshot.Input(item.input)
		return ok && v.Enabled
	}
	v, ok := m.snapshot.Control(item.control)
	return ok && v.Enabled
}

// focusedItem returns the current focus stop.
func (m Model) focusedItem() (focusItem, bool) {
	items := m.focusItems()
	if len(items) == 0 {
		return focusItem{}, false
	}
	return items[m.focus%len(items)], true
}

// focusedInput returns the index in m.inputs of the focused input, or -1.
func (m Model) focusedInput() int {
	item, ok := m.focusedItem()
	if !ok || !item.isInput() {
		return -1
	}
	return m.inputIndex(item.input)
}

// moveFocus steps through the ring, skipping disabled stops.
func (m *Model) moveFocus(delta int) {
	items := m.focusItems()
	n := len(items)
	if n == 0 {
		return
	}
	for step := 1; step <= n; step++ {
		idx := ((m.focus+delta*step)%n + n) % n
		if m.itemEnabled(items[idx]) {
			m.focus = idx
			break
		}
	}
	m.syncInputFocus()
}

// fixFocus moves focus forward when the focused stop became disabled.
func (m *Model) fixFocus() {
	items := m.focusItems()
	if len(items) == 0 {
		return
	}
	m.focus %= len(items)
	if !m.itemEnabled(items[m.focus]) {
		m.moveFocus(1)
		return
	}
	m.syncInputFocus()
}

func (m *Model) focusControl(id controller.ControlID) {
	m.focusWhere(func(f focusItem) bool { return !f.isInput() && f.control == id })
}

func (m *Model) focusInput(id controller.InputID) {
	m.focusWhere(func(f focusItem) bool { return f.input == id })
}

func (m *Model) focusWhere(match func(focusItem) bool) {
	for i, item := range m.focusItems() {
		if match(item) {
			m.focus = i
			break
		}
	}
	m.syncInputFocus()
}

// syncInputFocus gives the cursor to the focused input and blurs the rest.
func (m *Model) syncInputFocus() {
	focused := m.focusedInput()
	for i := range m.inputs {
		if i == focused {
			m.inputs[i].model.Focus()
		} else {
			m.inputs[i].model.Blur()
		}
	}
}
