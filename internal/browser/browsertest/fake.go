// Package browsertest provides an in-memory browser profile for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/five82/pushpanel/internal/browser"
)

// Call names recorded by Profile.
const (
	CallRegister    = "register"
	CallUnregister  = "unregister"
	CallSubscribe   = "subscribe"
	CallUnsubscribe = "unsubscribe"
)

// Profile is a fake browser.Registry. Mutating calls are recorded in order;
// probes are not. Subscription handles are invalidated synchronously by
// Unsubscribe, as real browsers do.
type Profile struct {
	mu sync.Mutex

	registered bool
	script     string
	sub        *browser.SubscriptionJSON
	options    []browser.SubscribeOptions
	calls      []string
	seq        int

	// Injected failures; nil means succeed.
	RegisterErr     error
	UnregisterErr   error
	SubscribeErr    error
	UnsubscribeErr  error
	RegistrationErr error
	SubscriptionErr error

	// OnUnsubscribe runs after the handle is invalidated, before the call
	// returns.
	OnUnsubscribe func()
}

var _ browser.Registry = (*Profile)(nil)

// NewProfile returns an empty profile with no registration.
func NewProfile() *Profile {
	return &Profile{}
}

// SetRegistered seeds a registration without recording a call.
func (p *Profile) SetRegistered(script string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = true
	p.script = script
}

// SetSubscribed seeds a subscription without recording a call.
func (p *Profile) SetSubscribed(data browser.SubscriptionJSON) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := data
	p.sub = &cp
}

// Calls returns the mutating calls made so far.
func (p *Profile) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// SubscribeOptions returns the options passed to every Subscribe call.
func (p *Profile) SubscribeOptions() []browser.SubscribeOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]browser.SubscribeOptions, len(p.options))
	copy(out, p.options)
	return out
}

// Registered reports whether a worker is registered.
func (p *Profile) Registered() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registered
}

// Subscribed reports whether a subscription exists.
func (p *Profile) Subscribed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sub != nil
}

func (p *Profile) Registration(ctx context.Context) (browser.Registration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.RegistrationErr != nil {
		return nil, p.RegistrationErr
	}
	if !p.registered {
		return nil, nil
	}
	return &registration{profile: p, script: p.script}, nil
}

func (p *Profile) Register(ctx context.Context, scriptURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, CallRegister)
	if p.RegisterErr != nil {
		return p.RegisterErr
	}
	p.registered = true
	p.script = scriptURL
	return nil
}

type registration struct {
	profile *Profile
	script  string
}

func (r *registration) ScriptURL() string { return r.script }

func (r *registration) PushManager() browser.PushManager { return r }

func (r *registration) Unregister(ctx context.Context) error {
	p := r.profile
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, CallUnregister)
	if p.UnregisterErr != nil {
		return p.UnregisterErr
	}
	if !p.registered {
		return browser.ErrNotRegistered
	}
	p.registered = false
	p.script = ""
	p.sub = nil
	return nil
}

func (r *registration) Subscription(ctx context.Context) (browser.Subscription, error) {
	p := r.profile
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SubscriptionErr != nil {
		return nil, p.SubscriptionErr
	}
	if !p.registered || p.sub == nil {
		return nil, nil
	}
	return &Subscription{profile: p, data: *p.sub, valid: true}, nil
}

func (r *registration) Subscribe(ctx context.Context, opts browser.SubscribeOptions) (browser.Subscription, error) {
	p := r.profile
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, CallSubscribe)
	p.options = append(p.options, opts)
	if p.SubscribeErr != nil {
		return nil, p.SubscribeErr
	}
	if !p.registered {
		return nil, browser.ErrNotRegistered
	}
	if p.sub == nil {
		p.seq++
		p.sub = &browser.SubscriptionJSON{
			Endpoint: fmt.Sprintf("https://push.test/send/%d", p.seq),
			Keys:     browser.Keys{P256DH: fmt.Sprintf("p256dh-%d", p.seq), Auth: fmt.Sprintf("auth-%d", p.seq)},
		}
	}
	return &Subscription{profile: p, data: *p.sub, valid: true}, nil
}

// Subscription is the fake subscription handle. Its data reads as empty after
// Unsubscribe.
type Subscription struct {
	profile *Profile

	mu    sync.Mutex
	data  browser.SubscriptionJSON
	valid bool
}

func (s *Subscription) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Endpoint
}

func (s *Subscription) JSON() browser.SubscriptionJSON {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *Subscription) Unsubscribe(ctx context.Context) error {
	s.mu.Lock()
	s.data = browser.SubscriptionJSON{}
	valid := s.valid
	s.valid = false
	s.mu.Unlock()

	p := s.profile
	p.mu.Lock()
	p.calls = append(p.calls, CallUnsubscribe)
	err := p.UnsubscribeErr
	if err == nil {
		if !valid || p.sub == nil {
			err = browser.ErrNotSubscribed
		} else {
			p.sub = nil
		}
	}
	hook := p.OnUnsubscribe
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}
