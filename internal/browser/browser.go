package browser

import (
	"context"
	"errors"
)

// Registry is the background-worker registry for the panel's scope.
type Registry interface {
	// Registration returns the active registration, or nil when no worker is
	// registered. Absence is not an error.
	Registration(ctx context.Context) (Registration, error)
	// Register installs the worker script. Registering the script that is
	// already active succeeds without changes.
	Register(ctx context.Context, scriptURL string) error
}

// Registration is a registered background worker.
type Registration interface {
	ScriptURL() string
	Unregister(ctx context.Context) error
	PushManager() PushManager
}

// PushManager manages the push subscription of a registration.
type PushManager interface {
	// Subscription returns the current subscription, or nil when there is none.
	Subscription(ctx context.Context) (Subscription, error)
	Subscribe(ctx context.Context, opts SubscribeOptions) (Subscription, error)
}

// Subscription is a live push subscription handle. Once Unsubscribe returns,
// the handle is invalidated and its data reads as empty.
type Subscription interface {
	Endpoint() string
	JSON() SubscriptionJSON
	Unsubscribe(ctx context.Context) error
}

// SubscribeOptions mirrors PushSubscriptionOptionsInit.
type SubscribeOptions struct {
	UserVisibleOnly      bool
	ApplicationServerKey string
}

// SubscriptionJSON is the serialized form of a subscription.
type SubscriptionJSON struct {
	Endpoint       string `json:"endpoint"`
	ExpirationTime *int64 `json:"expirationTime"`
	Keys           Keys   `json:"keys"`
}

// Keys holds the client keys of a subscription, base64url encoded.
type Keys struct {
	P256DH string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// IsZero reports whether s carries no subscription data.
func (s SubscriptionJSON) IsZero() bool {
	return s.Endpoint == "" && s.Keys == (Keys{}) && s.ExpirationTime == nil
}

var (
	ErrNotRegistered       = errors.New("no worker registration")
	ErrNotSubscribed       = errors.New("no push subscription")
	ErrUserVisibleRequired = errors.New("push subscriptions must be user visible")
	ErrInvalidServerKey    = errors.New("invalid application server key")
	ErrKeyMismatch         = errors.New("subscription exists with a different application server key")
	ErrInvalidScript       = errors.New("invalid worker script url")
)
