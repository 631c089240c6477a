package browser

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const authSecretLen = 16

// Local is a Registry backed by a TOML profile file. It behaves like a
// browser profile for a single page: the registration and its push
// subscription survive restarts until they are explicitly torn down.
type Local struct {
	mu          sync.Mutex
	path        string
	page        *url.URL
	pushService string
	logger      *zap.Logger
	now         func() time.Time
}

var _ Registry = (*Local)(nil)

type profileFile struct {
	Registration *registrationRecord `toml:"registration,omitempty"`
}

type registrationRecord struct {
	ID           string              `toml:"id"`
	ScriptURL    string              `toml:"script_url"`
	Scope        string              `toml:"scope"`
	RegisteredAt time.Time           `toml:"registered_at"`
	Subscription *subscriptionRecord `toml:"subscription,omitempty"`
}

type subscriptionRecord struct {
	Endpoint   string    `toml:"endpoint"`
	P256DH     string    `toml:"p256dh"`
	Auth       string    `toml:"auth"`
	PrivateKey string    `toml:"private_key"`
	ServerKey  string    `toml:"application_server_key"`
	CreatedAt  time.Time `toml:"created_at"`
}

// NewLocal opens (lazily) the profile stored at path for the page served at
// pageURL. New subscriptions get endpoints under pushService.
func NewLocal(path, pageURL, pushService string, logger *zap.Logger) (*Local, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("profile path is empty")
	}
	page, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, fmt.Errorf("parse page url %q: %w", pageURL, err)
	}
	if page.Scheme == "" || page.Host == "" {
		return nil, fmt.Errorf("page url %q must be absolute", pageURL)
	}
	if !strings.HasSuffix(page.Path, "/") {
		page.Path += "/"
	}
	service := strings.TrimRight(strings.TrimSpace(pushService), "/")
	if service == "" {
		return nil, fmt.Errorf("push service url is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Local{
		path:        path,
		page:        page,
		pushService: service,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Registration implements Registry.
func (l *Local) Registration(ctx context.Context) (Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, err := l.load()
	if err != nil {
		return nil, err
	}
	if profile.Registration == nil {
		return nil, nil
	}
	return &localRegistration{profile: l, id: profile.Registration.ID, script: profile.Registration.ScriptURL}, nil
}

// Register implements Registry.
func (l *Local) Register(ctx context.Context, scriptURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resolved, err := l.resolveScript(scriptURL)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	profile, err := l.load()
	if err != nil {
		return err
	}
	switch {
	case profile.Registration == nil:
		profile.Registration = &registrationRecord{
			ID:           uuid.NewString(),
			ScriptURL:    resolved,
			Scope:        l.page.String(),
			RegisteredAt: l.now().UTC(),
		}
		l.logger.Info("worker registered", zap.String("script", resolved))
	case profile.Registration.ScriptURL == resolved:
		return nil
	default:
		l.logger.Info("worker script updated",
			zap.String("old", profile.Registration.ScriptURL),
			zap.String("new", resolved))
		profile.Registration.ScriptURL = resolved
	}
	return l.save(profile)
}

func (l *Local) resolveScript(scriptURL string) (string, error) {
	trimmed := strings.TrimSpace(scriptURL)
	if trimmed == "" {
		return "", ErrInvalidScript
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	resolved := l.page.ResolveReference(ref)
	if resolved.Scheme != l.page.Scheme || resolved.Host != l.page.Host {
		return "", fmt.Errorf("%w: %s is not same-origin with %s", ErrInvalidScript, resolved, l.page)
	}
	return resolved.String(), nil
}

func (l *Local) load() (profileFile, error) {
	var profile profileFile
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return profile, nil
		}
		return profile, fmt.Errorf("read profile: %w", err)
	}
	if err := toml.Unmarshal(data, &profile); err != nil {
		return profileFile{}, fmt.Errorf("parse profile: %w", err)
	}
	return profile, nil
}

func (l *Local) save(profile profileFile) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := toml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

// current returns the stored registration when it is still the one with id.
func (l *Local) current(id string) (profileFile, *registrationRecord, error) {
	profile, err := l.load()
	if err != nil {
		return profile, nil, err
	}
	if profile.Registration == nil || profile.Registration.ID != id {
		return profile, nil, nil
	}
	return profile, profile.Registration, nil
}

type localRegistration struct {
	profile *Local
	id      string
	script  string
}

func (r *localRegistration) ScriptURL() string { return r.script }

func (r *localRegistration) PushManager() PushManager {
	return &localPushManager{profile: r.profile, regID: r.id}
}

// Unregister removes the registration together with its subscription.
func (r *localRegistration) Unregister(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := r.profile
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, reg, err := l.current(r.id)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrNotRegistered
	}
	if reg.Subscription != nil {
		l.logger.Info("dropping subscription with registration", zap.String("endpoint", reg.Subscription.Endpoint))
	}
	profile.Registration = nil
	l.logger.Info("worker unregistered", zap.String("script", reg.ScriptURL))
	return l.save(profile)
}

type localPushManager struct {
	profile *Local
	regID   string
}

func (p *localPushManager) Subscription(ctx context.Context) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := p.profile
	l.mu.Lock()
	defer l.mu.Unlock()

	_, reg, err := l.current(p.regID)
	if err != nil {
		return nil, err
	}
	if reg == nil || reg.Subscription == nil {
		return nil, nil
	}
	return newLocalSubscription(l, p.regID, reg.Subscription), nil
}

func (p *localPushManager) Subscribe(ctx context.Context, opts SubscribeOptions) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.UserVisibleOnly {
		return nil, ErrUserVisibleRequired
	}
	serverKey, err := normalizeServerKey(opts.ApplicationServerKey)
	if err != nil {
		return nil, err
	}

	l := p.profile
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, reg, err := l.current(p.regID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrNotRegistered
	}
	if existing := reg.Subscription; existing != nil {
		if existing.ServerKey != serverKey {
			return nil, ErrKeyMismatch
		}
		return newLocalSubscription(l, p.regID, existing), nil
	}

	rec, err := l.newSubscription(serverKey)
	if err != nil {
		return nil, err
	}
	reg.Subscription = rec
	if err := l.save(profile); err != nil {
		return nil, err
	}
	l.logger.Info("push subscription created", zap.String("endpoint", rec.Endpoint))
	return newLocalSubscription(l, p.regID, rec), nil
}

func (l *Local) newSubscription(serverKey string) (*subscriptionRecord, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate subscription key: %w", err)
	}
	auth := make([]byte, authSecretLen)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("generate auth secret: %w", err)
	}
	return &subscriptionRecord{
		Endpoint:   l.pushService + "/" + uuid.NewString(),
		P256DH:     base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:       base64.RawURLEncoding.EncodeToString(auth),
		PrivateKey: base64.RawURLEncoding.EncodeToString(priv.Bytes()),
		ServerKey:  serverKey,
		CreatedAt:  l.now().UTC(),
	}, nil
}

// normalizeServerKey checks that key is a base64url encoded uncompressed
// P-256 point and returns it without padding.
func normalizeServerKey(key string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(key), "=")
	if trimmed == "" {
		return "", ErrInvalidServerKey
	}
	raw, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidServerKey, err)
	}
	if _, err := ecdh.P256().NewPublicKey(raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidServerKey, err)
	}
	return trimmed, nil
}

type localSubscription struct {
	profile *Local
	regID   string

	mu    sync.Mutex
	data  SubscriptionJSON
	valid bool
}

func newLocalSubscription(l *Local, regID string, rec *subscriptionRecord) *localSubscription {
	return &localSubscription{
		profile: l,
		regID:   regID,
		data: SubscriptionJSON{
			Endpoint: rec.Endpoint,
			Keys:     Keys{P256DH: rec.P256DH, Auth: rec.Auth},
		},
		valid: true,
	}
}

func (s *localSubscription) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Endpoint
}

func (s *localSubscription) JSON() SubscriptionJSON {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Unsubscribe deletes the stored subscription and invalidates the handle.
// The handle stays readable when the profile cannot be read or saved.
func (s *localSubscription) Unsubscribe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	endpoint, valid := s.data.Endpoint, s.valid
	s.mu.Unlock()
	if !valid {
		return ErrNotSubscribed
	}

	l := s.profile
	l.mu.Lock()
	defer l.mu.Unlock()

	profile, reg, err := l.current(s.regID)
	if err != nil {
		return err
	}
	if reg == nil || reg.Subscription == nil || reg.Subscription.Endpoint != endpoint {
		s.invalidate()
		return ErrNotSubscribed
	}
	reg.Subscription = nil
	if err := l.save(profile); err != nil {
		return err
	}
	s.invalidate()
	l.logger.Info("push subscription removed", zap.String("endpoint", endpoint))
	return nil
}

func (s *localSubscription) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = SubscriptionJSON{}
	s.valid = false
}
