package pusher

import "github.com/five82/pushpanel/internal/browser"

// PublicKeyResponse mirrors /vapid/pubkey.
type PublicKeyResponse struct {
	VapidPublicKey string `json:"vapid_public_key"`
}

// SubscriptionRecord is the body of POST /subscribe: the serialized browser
// subscription plus an optional display name.
type SubscriptionRecord struct {
	browser.SubscriptionJSON
	Name string `json:"name,omitempty"`
}

// TestPushInfo mirrors /test-push/info. Exists is nil when the server omitted
// the field.
type TestPushInfo struct {
	Exists *bool `json:"exists"`
}

// Available reports whether a test push target exists. Missing means no.
func (i TestPushInfo) Available() bool {
	return i.Exists != nil && *i.Exists
}

// TestPushRequest is the body of POST /test-push.
type TestPushRequest struct {
	Message string `json:"message"`
}

// Response is the outcome of a notification POST.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
