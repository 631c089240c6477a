// Package browser models the two browser-provided subsystems the panel
// reconciles against: the background-worker registry and the push
// subscription service.
//
// # Ports
//
// Registry, Registration, PushManager and Subscription mirror the shape of
// navigator.serviceWorker, ServiceWorkerRegistration, PushManager and
// PushSubscription. Probes report absence as a nil value with a nil error;
// only subsystem failures are errors.
//
// # Local profile
//
// Local implements the ports on top of a TOML profile file so the panel can
// run outside a browser. It follows browser semantics where the panel can
// observe them:
//
//   - registering the active script again is a no-op
//   - unregistering drops the push subscription along with the worker
//   - subscriptions must be user visible and carry a valid P-256
//     application server key
//   - a subscription handle is invalidated once Unsubscribe runs, so callers
//     that need its data must read it first
//
// Profile layout:
//
//	[registration]
//	id = "..."
//	script_url = "http://127.0.0.1:3000/sw.js"
//	scope = "http://127.0.0.1:3000/"
//
//	[registration.subscription]
//	endpoint = "https://push.invalid/send/<uuid>"
//	p256dh = "..."
//	auth = "..."
package browser
