// Package state holds the panel model shared by the controller and the UI.
//
// # Overview
//
// Store implements controller.Port. The controller writes control and input
// configuration through it while reconciling; the Bubble Tea model reads a
// Snapshot on every refresh and renders from that copy only.
//
//	Controller (tea.Cmd goroutine):     UI (Update/View):
//	┌──────────────────────┐           ┌──────────────────────┐
//	│ Reconcile / actions  │           │ SetInputValue(typed) │
//	│      ↓               │           │      ↓               │
//	│ Apply(store, state)  │──────────→│ store.Snapshot()     │
//	│ RecordResult(err)    │  (mutex)  │      ↓               │
//	│                      │           │ render panel         │
//	└──────────────────────┘           └──────────────────────┘
//
// # Inputs
//
// Only inputs passed to NewStore exist; Store.Input reports false for the
// rest, which is how the feature flags reach the controller. The name input
// is required: Validate fails on blank text and sets Invalid until the next
// SetInputValue. Clear empties the value and bumps ClearGen so the UI can
// reset its text editor.
//
// # Errors
//
// RecordResult keeps the panel as last reconciled and records the error for
// the status bar. Snapshot returns a wrapped copy of the error.
//
// # Concurrency
//
// All access goes through a sync.RWMutex. The lock is held only while
// copying, never across network or file I/O. ApplyLayout writes every
// control and input of a layout under one lock.
package state
