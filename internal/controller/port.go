package controller

// ControlID names a clickable control on the panel.
type ControlID string

const (
	ControlRegister  ControlID = "register"
	ControlSubscribe ControlID = "subscribe"
	ControlTestPush  ControlID = "test-push"
)

// Controls lists the panel controls in display order.
var Controls = []ControlID{ControlRegister, ControlSubscribe, ControlTestPush}

// InputID names a text input on the panel.
type InputID string

const (
	InputName    InputID = "name"
	InputMessage InputID = "message"
)

// Action is the handler bound to a control.
type Action int

const (
	ActionNone Action = iota
	ActionRegister
	ActionUnregister
	ActionSubscribe
	ActionUnsubscribe
	ActionTestPush
)

func (a Action) String() string {
	switch a {
	case ActionRegister:
		return "register"
	case ActionUnregister:
		return "unregister"
	case ActionSubscribe:
		return "subscribe"
	case ActionUnsubscribe:
		return "unsubscribe"
	case ActionTestPush:
		return "test-push"
	default:
		return "none"
	}
}

// Control labels.
const (
	LabelRegister    = "Register worker"
	LabelUnregister  = "Unregister worker"
	LabelSubscribe   = "Subscribe to push"
	LabelUnsubscribe = "Unsubscribe from push"
	LabelTestPush    = "Send test push"
)

// Control is a single control as seen by the reconciler.
type Control interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
	SetHandler(action Action)
}

// Input is a text input as seen by the action handlers.
type Input interface {
	Value() string
	// Validate reports whether the current value passes the input's own
	// constraints. A failing input shows its own feedback.
	Validate() bool
	Clear()
	SetEnabled(enabled bool)
}

// Port is the presentation layer the controller drives.
type Port interface {
	Control(id ControlID) Control
	// Input returns the input with id, or false when the panel has none.
	Input(id InputID) (Input, bool)
}

// StateObserver is implemented by ports that want the derived state after
// every reconciliation.
type StateObserver interface {
	ObserveState(state UIState)
}

// LayoutApplier is implemented by ports that can take a whole layout in one
// step. Apply prefers it so readers never see controls from two states.
type LayoutApplier interface {
	ApplyLayout(state UIState, controls []ControlState, inputs []InputState)
}
