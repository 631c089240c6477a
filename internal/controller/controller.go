package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/pushpanel/internal/browser"
	"github.com/five82/pushpanel/internal/pusher"
)

const defaultWorkerScript = "./sw.js"

// Options configure a Controller.
type Options struct {
	// WorkerScript is the worker script location, relative to the page.
	WorkerScript string
	Logger       *zap.Logger
}

// Controller reconciles the browser subsystems and the notification server
// onto a Port, and runs the actions bound to its controls.
type Controller struct {
	registry browser.Registry
	server   pusher.Syncer
	port     Port
	script   string
	logger   *zap.Logger

	// Reconciles may overlap (actions and the background refresher). Each
	// takes a generation before probing; a result older than the last one
	// applied is dropped.
	mu      sync.Mutex
	started uint64
	applied uint64
	current UIState
}

// New builds a Controller. It keeps no copy of browser or server state.
func New(registry browser.Registry, server pusher.Syncer, port Port, opts Options) (*Controller, error) {
	if registry == nil {
		return nil, fmt.Errorf("controller requires a worker registry")
	}
	if server == nil {
		return nil, fmt.Errorf("controller requires a server client")
	}
	if port == nil {
		return nil, fmt.Errorf("controller requires a ui port")
	}
	script := strings.TrimSpace(opts.WorkerScript)
	if script == "" {
		script = defaultWorkerScript
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		registry: registry,
		server:   server,
		port:     port,
		script:   script,
		logger:   logger,
	}, nil
}

// Reconcile re-derives the UI state from the probes and applies it to the
// port. The probes run in order and stop at the first absence. A probe
// failure is returned and leaves the port as it was.
//
// When a reconcile that started later has already been applied, the result
// is discarded and the newer state is returned.
func (c *Controller) Reconcile(ctx context.Context) (UIState, error) {
	gen := c.begin()

	reg, err := c.registry.Registration(ctx)
	if err != nil {
		return Unregistered, fmt.Errorf("query registration: %w", err)
	}
	if reg == nil {
		return c.apply(gen, Unregistered), nil
	}

	sub, err := reg.PushManager().Subscription(ctx)
	if err != nil {
		return Unregistered, fmt.Errorf("query subscription: %w", err)
	}
	if sub == nil {
		return c.apply(gen, RegisteredUnsubscribed), nil
	}

	testable := c.server.TestPushAvailable(ctx, sub.Endpoint())
	return c.apply(gen, Derive(true, true, testable)), nil
}

func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
	return c.started
}

func (c *Controller) apply(gen uint64, state UIState) UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.applied {
		c.logger.Debug("stale reconcile dropped",
			zap.Stringer("state", state),
			zap.Stringer("current", c.current))
		return c.current
	}
	Apply(c.port, state)
	c.applied = gen
	c.current = state
	c.logger.Debug("reconciled", zap.Stringer("state", state))
	return state
}

// Dispatch runs the handler for action. ActionNone is a no-op.
func (c *Controller) Dispatch(ctx context.Context, action Action) error {
	var err error
	switch action {
	case ActionNone:
		return nil
	case ActionRegister:
		err = c.Register(ctx)
	case ActionUnregister:
		err = c.Unregister(ctx)
	case ActionSubscribe:
		_, err = c.SubscribeToPush(ctx)
	case ActionUnsubscribe:
		_, err = c.UnsubscribeFromPush(ctx)
	case ActionTestPush:
		_, err = c.SendTestPush(ctx)
	default:
		return fmt.Errorf("unknown action %d", int(action))
	}
	if err != nil {
		c.logger.Error("action failed", zap.Stringer("action", action), zap.Error(err))
	}
	return err
}
