package controller

// UIState is the panel state derived from the two browser probes and the
// server's test push status.
type UIState int

const (
	Unregistered UIState = iota
	RegisteredUnsubscribed
	RegisteredSubscribed
	RegisteredSubscribedTestable
)

func (s UIState) String() string {
	switch s {
	case RegisteredUnsubscribed:
		return "registered"
	case RegisteredSubscribed:
		return "subscribed"
	case RegisteredSubscribedTestable:
		return "testable"
	default:
		return "unregistered"
	}
}

// Derive maps the probe results onto a UIState. Later inputs only count
// when the earlier ones hold: a subscription without a registration is
// treated as no registration.
func Derive(registered, subscribed, testable bool) UIState {
	switch {
	case !registered:
		return Unregistered
	case !subscribed:
		return RegisteredUnsubscribed
	case !testable:
		return RegisteredSubscribed
	default:
		return RegisteredSubscribedTestable
	}
}

// ControlState is the desired configuration of one control.
type ControlState struct {
	ID      ControlID
	Enabled bool
	Label   string
	Handler Action
}

// InputState is the desired enabled flag of one input.
type InputState struct {
	ID      InputID
	Enabled bool
}

// Layout returns the control configuration for state, in display order.
func Layout(state UIState) []ControlState {
	register := ControlState{ID: ControlRegister, Enabled: true, Label: LabelUnregister, Handler: ActionUnregister}
	subscribe := ControlState{ID: ControlSubscribe, Enabled: true, Label: LabelUnsubscribe, Handler: ActionUnsubscribe}
	testPush := ControlState{ID: ControlTestPush, Label: LabelTestPush}

	switch state {
	case Unregistered:
		register.Label, register.Handler = LabelRegister, ActionRegister
		subscribe = ControlState{ID: ControlSubscribe, Label: LabelSubscribe}
	case RegisteredUnsubscribed:
		subscribe.Label, subscribe.Handler = LabelSubscribe, ActionSubscribe
	case RegisteredSubscribedTestable:
		testPush.Enabled, testPush.Handler = true, ActionTestPush
	}
	return []ControlState{register, subscribe, testPush}
}

// InputLayout returns the enabled flags of the inputs for state. The name
// input is only useful before subscribing, the message input only when a
// test push can be sent.
func InputLayout(state UIState) []InputState {
	return []InputState{
		{ID: InputName, Enabled: state == RegisteredUnsubscribed},
		{ID: InputMessage, Enabled: state == RegisteredSubscribedTestable},
	}
}

// Apply writes the layout for state to port.
func Apply(port Port, state UIState) {
	if la, ok := port.(LayoutApplier); ok {
		la.ApplyLayout(state, Layout(state), InputLayout(state))
		return
	}
	for _, cs := range Layout(state) {
		ctrl := port.Control(cs.ID)
		if ctrl == nil {
			continue
		}
		ctrl.SetHandler(cs.Handler)
		ctrl.SetLabel(cs.Label)
		ctrl.SetEnabled(cs.Enabled)
	}
	for _, is := range InputLayout(state) {
		if in, ok := port.Input(is.ID); ok {
			in.SetEnabled(is.Enabled)
		}
	}
	if obs, ok := port.(StateObserver); ok {
		obs.ObserveState(state)
	}
}
