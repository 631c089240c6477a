package controller

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/pushpanel/internal/browser"
	"github.com/five82/pushpanel/internal/pusher"
)

// Register installs the worker script and reconciles. Registering while
// already registered is handled by the registry and still reconciles.
func (c *Controller) Register(ctx context.Context) error {
	if err := c.registry.Register(ctx, c.script); err != nil {
		return fmt.Errorf("register worker: %w", err)
	}
	c.logger.Info("worker registered", zap.String("script", c.script))
	return c.reconcile(ctx)
}

// Unregister removes the worker registration and reconciles. Without a
// registration it does nothing. Any subscription goes away with the
// registration.
func (c *Controller) Unregister(ctx context.Context) error {
	reg, err := c.registry.Registration(ctx)
	if err != nil {
		return fmt.Errorf("query registration: %w", err)
	}
	if reg == nil {
		return nil
	}
	if err := reg.Unregister(ctx); err != nil {
		return fmt.Errorf("unregister worker: %w", err)
	}
	c.logger.Info("worker unregistered", zap.String("script", reg.ScriptURL()))
	return c.reconcile(ctx)
}

// SubscribeToPush creates a push subscription and reports it to the server.
// It does nothing without a registration or when the name input rejects its
// value. The name input is cleared once the server has been notified, whatever
// the outcome, and the server response is returned.
//
// The panel is reconciled before the server is notified. If that reconcile
// fails the server is not told about the new subscription; the error is
// returned and the name input is still cleared.
func (c *Controller) SubscribeToPush(ctx context.Context) (*pusher.Response, error) {
	reg, err := c.registry.Registration(ctx)
	if err != nil {
		return nil, fmt.Errorf("query registration: %w", err)
	}
	if reg == nil {
		return nil, nil
	}

	nameInput, hasName := c.port.Input(InputName)
	if hasName && !nameInput.Validate() {
		c.logger.Debug("subscribe aborted: name input invalid")
		return nil, nil
	}

	key, err := c.server.PublicKey(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := reg.PushManager().Subscribe(ctx, browser.SubscribeOptions{
		UserVisibleOnly:      true,
		ApplicationServerKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to push: %w", err)
	}
	if err := c.reconcile(ctx); err != nil {
		if hasName {
			nameInput.Clear()
		}
		c.logger.Warn("server not notified of subscription", zap.String("endpoint", sub.Endpoint()), zap.Error(err))
		return nil, err
	}

	rec := pusher.SubscriptionRecord{SubscriptionJSON: sub.JSON()}
	if hasName {
		rec.Name = strings.TrimSpace(nameInput.Value())
	}
	resp, err := c.server.Subscribe(ctx, rec)
	if hasName {
		nameInput.Clear()
	}
	if err != nil {
		return resp, fmt.Errorf("notify subscribe: %w", err)
	}
	return resp, nil
}

// UnsubscribeFromPush tears down the push subscription and tells the server.
// It does nothing without a registration or subscription. The subscription
// data is captured before unsubscribing because the handle is invalidated by
// the teardown.
//
// A failed server notification leaves the server holding a subscription the
// browser no longer has; it is returned but not retried.
func (c *Controller) UnsubscribeFromPush(ctx context.Context) (*pusher.Response, error) {
	reg, err := c.registry.Registration(ctx)
	if err != nil {
		return nil, fmt.Errorf("query registration: %w", err)
	}
	if reg == nil {
		return nil, nil
	}
	sub, err := reg.PushManager().Subscription(ctx)
	if err != nil {
		return nil, fmt.Errorf("query subscription: %w", err)
	}
	if sub == nil {
		return nil, nil
	}

	data := sub.JSON()
	if err := sub.Unsubscribe(ctx); err != nil {
		return nil, fmt.Errorf("unsubscribe from push: %w", err)
	}
	if err := c.reconcile(ctx); err != nil {
		return nil, err
	}

	resp, err := c.server.Unsubscribe(ctx, data)
	if err != nil {
		c.logger.Warn("server still holds subscription", zap.String("endpoint", data.Endpoint), zap.Error(err))
		return resp, fmt.Errorf("notify unsubscribe: %w", err)
	}
	return resp, nil
}

// SendTestPush asks the server to deliver a test push. With a message input
// its value is sent and the input is cleared afterwards, whatever the
// outcome; without one the request has no body.
func (c *Controller) SendTestPush(ctx context.Context) (*pusher.Response, error) {
	msgInput, ok := c.port.Input(InputMessage)
	if !ok {
		resp, err := c.server.TriggerTestPush(ctx)
		if err != nil {
			return resp, fmt.Errorf("send test push: %w", err)
		}
		return resp, nil
	}

	resp, err := c.server.SendTestPush(ctx, msgInput.Value())
	msgInput.Clear()
	if err != nil {
		return resp, fmt.Errorf("send test push: %w", err)
	}
	return resp, nil
}

func (c *Controller) reconcile(ctx context.Context) error {
	_, err := c.Reconcile(ctx)
	return err
}
