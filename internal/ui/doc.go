// Package ui provides the terminal panel for pushpanel.
//
// # Architecture Overview
//
// The panel is a Bubble Tea program. It never touches the browser or the
// notification server directly: actions go through a Dispatcher (the
// controller), which writes control and input state into a state.Store. The
// model polls the store on a short tick and renders whatever it finds.
//
// # Package Structure
//
//   - app.go: Model, Update loop, commands and the Run function
//   - focus.go: The focus ring over controls and inputs
//   - panel.go: Control and input rendering plus the action status line
//   - header.go: Status bar and command bar
//   - help.go: Help overlay
//   - keys.go: Key bindings
//   - theme.go: Color themes and lipgloss styles
//
// # Inputs
//
// Text is edited in bubbles textinput models and copied into the store just
// before an action runs. When the controller clears an input the store bumps
// its clear generation and the model resets the editor. An input that fails
// validation takes focus once, when it first turns invalid.
//
// # Key Bindings
//
//   - Tab/Shift+Tab, j/k: Move focus (disabled stops are skipped)
//   - Enter: Activate the focused control, or the control an input feeds
//   - r/s/x: Register, subscribe and test push shortcuts
//   - Ctrl+R: Re-read registration state
//   - T: Cycle theme (remembered in prefs)
//   - ?: Help
//   - Esc: Leave an input
//   - Ctrl+C: Exit
package ui
