package devserver

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/five82/pushpanel/internal/pusher"
)

const (
	maxRequestBody = 64 << 10
	authSecretLen  = 16
)

// Options configure a Server.
type Options struct {
	// PublicKey is the base64url VAPID public key. Empty generates one.
	PublicKey string
	// TestPush makes /test-push/info report a target for subscribed endpoints.
	TestPush bool
	Logger   *zap.Logger
}

// Message is a test push accepted by the server.
type Message struct {
	Text       string
	Recipients []string
	ReceivedAt time.Time
}

// Server is an in-memory notification server.
type Server struct {
	publicKey string
	logger    *zap.Logger

	mu       sync.RWMutex
	testPush bool
	subs     map[string]pusher.SubscriptionRecord
	messages []Message
}

// New builds a Server, validating or generating the VAPID public key.
func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	key, err := publicKey(opts.PublicKey)
	if err != nil {
		return nil, err
	}
	return &Server{
		publicKey: key,
		logger:    logger,
		testPush:  opts.TestPush,
		subs:      map[string]pusher.SubscriptionRecord{},
	}, nil
}

func publicKey(configured string) (string, error) {
	configured = strings.TrimRight(strings.TrimSpace(configured), "=")
	if configured == "" {
		priv, err := ecdh.P256().GenerateKey(rand.Reader)
		if err != nil {
			return "", fmt.Errorf("generate vapid key: %w", err)
		}
		return base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()), nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(configured)
	if err != nil {
		return "", fmt.Errorf("decode vapid key: %w", err)
	}
	pub, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return "", fmt.Errorf("parse vapid key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(pub.Bytes()), nil
}

// PublicKey returns the VAPID public key served at /vapid/pubkey.
func (s *Server) PublicKey() string { return s.publicKey }

// SetTestPush toggles whether a test push target exists.
func (s *Server) SetTestPush(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testPush = enabled
}

// Subscriptions returns the stored subscriptions ordered by endpoint.
func (s *Server) Subscriptions() []pusher.SubscriptionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pusher.SubscriptionRecord, 0, len(s.subs))
	for _, rec := range s.subs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// Messages returns the accepted test pushes in arrival order.
func (s *Server) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/vapid/pubkey", s.handlePublicKey)
	r.Post("/subscribe", s.handleSubscribe)
	r.Post("/unsubscribe", s.handleUnsubscribe)
	r.Get("/test-push/info", s.handleTestPushInfo)
	r.Post("/test-push", s.handleTestPush)
	return r
}

func (s *Server) handlePublicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pusher.PublicKeyResponse{VapidPublicKey: s.publicKey})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var rec pusher.SubscriptionRecord
	if err := decodeBody(r, &rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateSubscription(rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec.Name = strings.TrimSpace(rec.Name)

	s.mu.Lock()
	s.subs[rec.Endpoint] = rec
	s.mu.Unlock()

	s.logger.Info("subscribe", zap.String("endpoint", rec.Endpoint), zap.String("name", rec.Name))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var rec pusher.SubscriptionRecord
	if err := decodeBody(r, &rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(rec.Endpoint) == "" {
		http.Error(w, "endpoint is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, ok := s.subs[rec.Endpoint]
	delete(s.subs, rec.Endpoint)
	s.mu.Unlock()

	if !ok {
		http.Error(w, "unknown subscription", http.StatusNotFound)
		return
	}
	s.logger.Info("unsubscribe", zap.String("endpoint", rec.Endpoint))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTestPushInfo(w http.ResponseWriter, r *http.Request) {
	endpoint := strings.TrimSpace(r.URL.Query().Get("endpoint"))

	s.mu.RLock()
	exists := s.testPush
	if exists && endpoint != "" {
		_, exists = s.subs[endpoint]
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, struct {
		Exists bool `json:"exists"`
	}{Exists: exists})
}

func (s *Server) handleTestPush(w http.ResponseWriter, r *http.Request) {
	var req pusher.TestPushRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if !s.testPush {
		s.mu.Unlock()
		s.logger.Info("test push without a target")
		w.WriteHeader(http.StatusOK)
		return
	}
	msg := Message{Text: req.Message, ReceivedAt: time.Now()}
	for endpoint := range s.subs {
		msg.Recipients = append(msg.Recipients, endpoint)
	}
	sort.Strings(msg.Recipients)
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.logger.Info("test push", zap.String("message", msg.Text), zap.Int("recipients", len(msg.Recipients)))
	w.WriteHeader(http.StatusOK)
}

func validateSubscription(rec pusher.SubscriptionRecord) error {
	u, err := url.Parse(rec.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("endpoint must be an absolute url")
	}
	p256dh, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(rec.Keys.P256DH, "="))
	if err != nil {
		return fmt.Errorf("decode p256dh: %w", err)
	}
	if _, err := ecdh.P256().NewPublicKey(p256dh); err != nil {
		return fmt.Errorf("parse p256dh: %w", err)
	}
	auth, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(rec.Keys.Auth, "="))
	if err != nil {
		return fmt.Errorf("decode auth: %w", err)
	}
	if len(auth) != authSecretLen {
		return fmt.Errorf("auth secret must be %d bytes, got %d", authSecretLen, len(auth))
	}
	return nil
}

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestLogger logs every request at debug level and client or server
// errors at error level.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if status >= http.StatusBadRequest {
				logger.Error(http.StatusText(status), fields...)
				return
			}
			logger.Debug("request", fields...)
		})
	}
}
