// Package app provides the orchestration layer for pushpanel.
//
// # Overview
//
// This package wires together configuration, logging, the browser profile,
// the notification server client, the panel store and the UI. It is the
// composition root where all dependencies are initialized and connected.
//
// # Architecture
//
//  1. Load .env, then the TOML config with PUSHPANEL_* overrides
//  2. Open the zap file logger
//  3. Open the browser profile and build the server client
//  4. Create the state.Store with the inputs enabled by feature flags
//  5. Build the controller over the profile, client and store
//  6. Reconcile once, then launch the background refresher
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         Read config + env
//	       ├─────> newPanel()            Profile, client, store, controller
//	       ├─────> refresh()             First reconcile
//	       ├─────> StartRefresher()      Launch background reconciles
//	       └─────> ui.Run()              Start TUI (blocks)
//
//	Background Refresher Loop:
//	┌─────────────────────────────────────────┐
//	│ StartRefresher() goroutine              │
//	│  ├─> controller.Reconcile()             │
//	│  │    └─> store (controls + inputs)     │
//	│  └─> store.RecordRefresh()              │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Refresh Behavior
//
// The refresher reconciles at a fixed interval (default: 5 seconds) so that
// registrations or subscriptions changed outside the panel show up. A failed
// reconcile leaves the panel as it was, is logged, and is shown in the
// header. There is no backoff.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Unreadable .env or config file, or invalid settings
//   - Log file that cannot be opened
//   - Browser profile or server client that cannot be built
//
// Everything after startup is recoverable: action failures are recorded in
// the store and shown in the status line.
package app
