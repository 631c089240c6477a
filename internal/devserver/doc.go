// Package devserver is an in-memory notification server for local use and
// tests.
//
// # Routes
//
//	GET  /vapid/pubkey      {"vapid_public_key": "<base64url>"}
//	POST /subscribe         subscription record, stored by endpoint
//	POST /unsubscribe       serialized subscription, 404 when unknown
//	GET  /test-push/info    {"exists": bool}, optional ?endpoint=
//	POST /test-push         {"message": "..."} or an empty body
//
// Subscriptions are validated the way a real push backend would need them:
// an absolute endpoint URL, a P-256 p256dh key and a 16-byte auth secret.
//
// # Test Push
//
// With test push disabled, /test-push/info reports false and /test-push is
// accepted but does nothing. Enabled, info reports true when the queried
// endpoint is subscribed (or when no endpoint is given), and each test push
// is recorded with the endpoints it would reach. Nothing is delivered.
//
// # Logging
//
// Every request is logged at debug level; 4xx and 5xx responses are logged
// at error level with the status text as the message.
package devserver
