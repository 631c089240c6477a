// Package controller keeps the panel controls in step with the browser
// subsystems and the notification server.
//
// # Overview
//
// Two browser-owned sources of truth (the worker registration and its push
// subscription) plus the server's test push status decide which of four
// states the panel is in:
//
//	State                          Register      Subscribe     Test push
//	Unregistered                   register      disabled      disabled
//	RegisteredUnsubscribed         unregister    subscribe     disabled
//	RegisteredSubscribed           unregister    unsubscribe   disabled
//	RegisteredSubscribedTestable   unregister    unsubscribe   test-push
//
// Derive and Layout are pure: probe results in, control configuration out.
// Reconcile runs the probes in order (registration, subscription, test push
// status), stopping at the first absence, then applies the layout to a Port.
// Nothing is cached between reconciliations.
//
// # Actions
//
// Register, Unregister, SubscribeToPush, UnsubscribeFromPush and
// SendTestPush each make one state-changing call, optionally notify the
// server, and reconcile. Dispatch maps a control's bound Action to its
// handler.
//
// # Errors
//
// Absence (no registration, no subscription, no test target) is a normal
// result and short-circuits without error. An invalid name input aborts
// subscribe silently. Browser and transport failures are returned wrapped
// and are not retried; the panel keeps its last reconciled state until the
// next reconciliation. The test push status fails closed.
//
// # Concurrency
//
// Handlers hold no locks. Two overlapping actions are serialized only by the
// browser subsystems themselves; the port implementation must be safe for
// concurrent use.
//
// Reconciles are ordered by the time they start probing. A reconcile that
// finishes after a newer one has been applied leaves the port alone. Ports
// implementing LayoutApplier receive each layout in a single call.
package controller
