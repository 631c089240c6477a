// Package pusher provides an HTTP client for the pusher notification server.
//
// # Overview
//
// The panel keeps the server informed about the browser-side subscription
// and asks it whether a test push can be sent. The server owns the
// subscription database and the actual push delivery; this package only
// speaks its small JSON contract.
//
// # API Endpoints
//
//   - GET /vapid/pubkey: the application server (VAPID) public key
//   - POST /subscribe: store a serialized subscription, optionally named
//   - POST /unsubscribe: drop a subscription, matched by the posted endpoint
//   - GET /test-push/info: {"exists": bool}, whether a test target exists
//   - POST /test-push: deliver a test push, with {"message": ...} or no body
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Set Accept: application/json and User-Agent: pushpanel/0.1
//   - Have a 5-second client timeout
//   - Return wrapped errors with context about what failed
//
// POST helpers return the *Response even for 4xx/5xx statuses so callers can
// inspect it; the error reports the status.
//
// # Fail-closed status
//
// TestPushAvailable never returns an error. A transport failure, an error
// status, an undecodable body, or a body without "exists" all report false,
// so a broken status check cannot enable the test push control.
//
// # Usage
//
//	client, err := pusher.NewClient("127.0.0.1:3000", logger)
//	if err != nil {
//		return err
//	}
//	key, err := client.PublicKey(ctx)
package pusher
