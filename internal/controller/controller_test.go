package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/five82/pushpanel/internal/browser"
	"github.com/five82/pushpanel/internal/browser/browsertest"
	"github.com/five82/pushpanel/internal/pusher"
	"github.com/five82/pushpanel/internal/pusher/mocks"
)

const testKey = "BPublicKey"

// fakeServer records server calls in order.
type fakeServer struct {
	mu        sync.Mutex
	calls     []string
	testable  bool
	records   []pusher.SubscriptionRecord
	unsubs    []browser.SubscriptionJSON
	messages  []string
	postErr   error
	keyErr    error
	endpoints []string
}

var _ pusher.Syncer = (*fakeServer)(nil)

func (s *fakeServer) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeServer) PublicKey(ctx context.Context) (string, error) {
	s.record("pubkey")
	if s.keyErr != nil {
		return "", s.keyErr
	}
	return testKey, nil
}

func (s *fakeServer) Subscribe(ctx context.Context, rec pusher.SubscriptionRecord) (*pusher.Response, error) {
	s.record("subscribe")
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	if s.postErr != nil {
		return &pusher.Response{StatusCode: 500}, s.postErr
	}
	return &pusher.Response{StatusCode: 200}, nil
}

func (s *fakeServer) Unsubscribe(ctx context.Context, sub browser.SubscriptionJSON) (*pusher.Response, error) {
	s.record("unsubscribe")
	s.mu.Lock()
	s.unsubs = append(s.unsubs, sub)
	s.mu.Unlock()
	if s.postErr != nil {
		return nil, s.postErr
	}
	return &pusher.Response{StatusCode: 200}, nil
}

func (s *fakeServer) TestPushAvailable(ctx context.Context, endpoint string) bool {
	s.record("info")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints = append(s.endpoints, endpoint)
	return s.testable
}

func (s *fakeServer) SendTestPush(ctx context.Context, message string) (*pusher.Response, error) {
	s.record("test-push")
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()
	if s.postErr != nil {
		return nil, s.postErr
	}
	return &pusher.Response{StatusCode: 200}, nil
}

func (s *fakeServer) TriggerTestPush(ctx context.Context) (*pusher.Response, error) {
	s.record("trigger")
	return &pusher.Response{StatusCode: 200}, s.postErr
}

type harness struct {
	ctrl    *Controller
	profile *browsertest.Profile
	server  *fakeServer
	port    *fakePort
}

func newHarness(t *testing.T, inputs ...InputID) harness {
	t.Helper()
	h := harness{
		profile: browsertest.NewProfile(),
		server:  &fakeServer{},
		port:    newFakePort(inputs...),
	}
	c, err := New(h.profile, h.server, h.port, Options{WorkerScript: "./sw.js", Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	h.ctrl = c
	return h
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, &fakeServer{}, newFakePort(), Options{})
	assert.Error(t, err)
	_, err = New(browsertest.NewProfile(), nil, newFakePort(), Options{})
	assert.Error(t, err)
	_, err = New(browsertest.NewProfile(), &fakeServer{}, nil, Options{})
	assert.Error(t, err)

	c, err := New(browsertest.NewProfile(), &fakeServer{}, newFakePort(), Options{})
	require.NoError(t, err)
	assert.Equal(t, defaultWorkerScript, c.script)
}

func TestReconcile_Unregistered(t *testing.T) {
	h := newHarness(t, InputName, InputMessage)

	for i := 0; i < 3; i++ {
		state, err := h.ctrl.Reconcile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Unregistered, state)
		assert.Equal(t, []ControlID{ControlRegister}, h.port.enabledControls())
		assert.Equal(t, ActionRegister, h.port.controls[ControlRegister].handler)
		assert.Equal(t, LabelRegister, h.port.controls[ControlRegister].label)
	}
	assert.False(t, h.port.inputs[InputName].enabled)
	assert.False(t, h.port.inputs[InputMessage].enabled)
	assert.Empty(t, h.server.Calls(), "no subscription means no server status query")
}

func TestReconcile_RegisteredUnsubscribed(t *testing.T) {
	h := newHarness(t, InputName)
	h.profile.SetRegistered("./sw.js")

	state, err := h.ctrl.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RegisteredUnsubscribed, state)

	assert.Equal(t, []ControlID{ControlRegister, ControlSubscribe}, h.port.enabledControls())
	assert.Equal(t, ActionUnregister, h.port.controls[ControlRegister].handler)
	assert.Equal(t, ActionSubscribe, h.port.controls[ControlSubscribe].handler)
	assert.False(t, h.port.controls[ControlTestPush].enabled)
	assert.True(t, h.port.inputs[InputName].enabled)
	assert.Empty(t, h.server.Calls())
}

func TestReconcile_SubscribedNotTestable(t *testing.T) {
	h := newHarness(t)
	h.profile.SetRegistered("./sw.js")
	h.profile.SetSubscribed(browser.SubscriptionJSON{Endpoint: "https://push.test/send/a"})
	h.port.controls[ControlTestPush].enabled = true

	state, err := h.ctrl.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RegisteredSubscribed, state)
	assert.False(t, h.port.controls[ControlTestPush].enabled)
	assert.Equal(t, ActionNone, h.port.controls[ControlTestPush].handler)
	assert.Equal(t, LabelUnsubscribe, h.port.controls[ControlSubscribe].label)
	assert.Equal(t, []string{"https://push.test/send/a"}, h.server.endpoints)
}

func TestReconcile_Testable(t *testing.T) {
	h := newHarness(t, InputMessage)
	h.profile.SetRegistered("./sw.js")
	h.profile.SetSubscribed(browser.SubscriptionJSON{Endpoint: "https://push.test/send/a"})
	h.server.testable = true

	state, err := h.ctrl.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RegisteredSubscribedTestable, state)
	assert.True(t, h.port.controls[ControlTestPush].enabled)
	assert.Equal(t, ActionTestPush, h.port.controls[ControlTestPush].handler)
	assert.True(t, h.port.inputs[InputMessage].enabled)
}

func TestReconcile_ProbeFailureLeavesPortStale(t *testing.T) {
	h := newHarness(t)
	h.profile.SetRegistered("./sw.js")
	_, err := h.ctrl.Reconcile(context.Background())
	require.NoError(t, err)

	h.profile.SubscriptionErr = errors.New("push service down")
	_, err = h.ctrl.Reconcile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query subscription")
	assert.Equal(t, []ControlID{ControlRegister, ControlSubscribe}, h.port.enabledControls())

	h.profile.RegistrationErr = errors.New("registry broken")
	_, err = h.ctrl.Reconcile(context.Background())
	assert.ErrorContains(t, err, "query registration")
}

func TestRegister_ThenReconcileYieldsRegisteredUnsubscribed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	state, err := h.ctrl.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, Unregistered, state)

	require.NoError(t, h.ctrl.Register(ctx))
	assert.Equal(t, []string{browsertest.CallRegister}, h.profile.Calls())

	got, ok := h.port.lastState()
	require.True(t, ok)
	assert.Equal(t, RegisteredUnsubscribed, got)

	state, err = h.ctrl.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, RegisteredUnsubscribed, state)
}

// gatedRegistry holds the first armed Registration call until released.
type gatedRegistry struct {
	*browsertest.Profile
	armed   atomic.Bool
	held    chan struct{}
	release chan struct{}
}

func (g *gatedRegistry) Registration(ctx context.Context) (browser.Registration, error) {
	reg, err := g.Profile.Registration(ctx)
	if g.armed.CompareAndSwap(true, false) {
		close(g.held)
		<-g.release
	}
	return reg, err
}

func TestReconcile_StaleResultDoesNotOverwriteNewer(t *testing.T) {
	ctx := context.Background()
	reg := &gatedRegistry{
		Profile: browsertest.NewProfile(),
		held:    make(chan struct{}),
		release: make(chan struct{}),
	}
	port := newFakePort()
	c, err := New(reg, &fakeServer{}, port, Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	reg.armed.Store(true)
	type result struct {
		state UIState
		err   error
	}
	background := make(chan result, 1)
	go func() {
		state, err := c.Reconcile(ctx)
		background <- result{state, err}
	}()

	// the background reconcile has seen no registration and is held
	<-reg.held
	require.NoError(t, c.Register(ctx))
	got, _ := port.lastState()
	require.Equal(t, RegisteredUnsubscribed, got)

	close(reg.release)
	res := <-background
	require.NoError(t, res.err)
	assert.Equal(t, RegisteredUnsubscribed, res.state, "stale reconcile reports the newer state")

	got, _ = port.lastState()
	assert.Equal(t, RegisteredUnsubscribed, got)
	assert.Equal(t, ActionUnregister, port.controls[ControlRegister].handler)
	assert.Equal(t, ActionSubscribe, port.controls[ControlSubscribe].handler)
	assert.Equal(t, []UIState{RegisteredUnsubscribed}, port.states)
}

func TestRegister_FailureDoesNotReconcile(t *testing.T) {
	h := newHarness(t)
	h.profile.RegisterErr = errors.New("script fetch failed")

	err := h.ctrl.Register(context.Background())
	assert.ErrorContains(t, err, "register worker")
	_, ok := h.port.lastState()
	assert.False(t, ok)
}

func TestUnregister_NoRegistrationIsNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.ctrl.Reconcile(ctx)
	require.NoError(t, err)
	observed := len(h.port.states)

	require.NoError(t, h.ctrl.Unregister(ctx))
	assert.Empty(t, h.profile.Calls(), "no subsystem call")
	assert.Len(t, h.port.states, observed, "no reconciliation")

	state, err := h.ctrl.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unregistered, state)
}

func TestUnregister_DropsSubscriptionWithoutUnsubscribing(t *testing.T) {
	h := newHarness(t)
	h.profile.SetRegistered("./sw.js")
	h.profile.SetSubscribed(browser.SubscriptionJSON{Endpoint: "https://push.test/send/a"})

	require.NoError(t, h.ctrl.Unregister(context.Background()))
	assert.Equal(t, []string{browsertest.CallUnregister}, h.profile.Calls())
	assert.False(t, h.profile.Subscribed())
	state, _ := h.port.lastState()
	assert.Equal(t, Unregistered, state)
	assert.Empty(t, h.server.Calls(), "server is not told about unregister")
}

func TestSubscribeToPush_FullFlow(t *testing.T) {
	h := newHarness(t, InputName)
	h.profile.SetRegistered("./sw.js")
	h.port.inputs[InputName].value = "  laptop  "

	resp, err := h.ctrl.SubscribeToPush(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.OK())

	opts := h.profile.SubscribeOptions()
	require.Len(t, opts, 1)
	assert.True(t, opts[0].UserVisibleOnly)
	assert.Equal(t, testKey, opts[0].ApplicationServerKey)

	assert.Equal(t, []string{"pubkey", "info", "subscribe"}, h.server.Calls(), "reconcile happens before the server post")
	require.Len(t, h.server.records, 1)
	assert.Equal(t, "laptop", h.server.records[0].Name)
	assert.Equal(t, "https://push.test/send/1", h.server.records[0].Endpoint)

	assert.Equal(t, 1, h.port.inputs[InputName].cleared)
	assert.Empty(t, h.port.inputs[InputName].value)
	state, _ := h.port.lastState()
	assert.Equal(t, RegisteredSubscribed, state)
}

func TestSubscribeToPush_WithoutNameInputSendsNoName(t *testing.T) {
	h := newHarness(t)
	h.profile.SetRegistered("./sw.js")

	_, err := h.ctrl.SubscribeToPush(context.Background())
	require.NoError(t, err)
	require.Len(t, h.server.records, 1)
	assert.Empty(t, h.server.records[0].Name)
}

func TestSubscribeToPush_ClearsNameEvenWhenPostFails(t *testing.T) {
	h := newHarness(t, InputName)
	h.profile.SetRegistered("./sw.js")
	h.port.inputs[InputName].value = "phone"
	h.server.postErr = errors.New("server down")

	resp, err := h.ctrl.SubscribeToPush(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "notify subscribe")
	require.NotNil(t, resp, "response is returned for inspection")
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, 1, h.port.inputs[InputName].cleared)
	assert.True(t, h.profile.Subscribed(), "browser subscription stays")
}

func TestSubscribeToPush_ReconcileFailureSkipsServerAndClearsName(t *testing.T) {
	h := newHarness(t, InputName)
	h.profile.SetRegistered("./sw.js")
	h.profile.SubscriptionErr = errors.New("push service down")
	h.port.inputs[InputName].value = "laptop"

	resp, err := h.ctrl.SubscribeToPush(context.Background())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorContains(t, err, "query subscription")

	assert.True(t, h.profile.Subscribed(), "browser keeps the subscription")
	assert.Equal(t, []string{"pubkey"}, h.server.Calls(), "server is not notified")
	assert.Equal(t, "", h.port.inputs[InputName].value)
	assert.Equal(t, 1, h.port.inputs[InputName].cleared)
}

func TestSubscribeToPush_NoRegistrationIsNoop(t *testing.T) {
	h := newHarness(t, InputName)
	h.port.inputs[InputName].value = "phone"

	resp, err := h.ctrl.SubscribeToPush(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, h.profile.Calls())
	assert.Empty(t, h.server.Calls())
	assert.Zero(t, h.port.inputs[InputName].cleared)
}

func TestSubscribeToPush_EmptyNameMakesNoNetworkCalls(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	server := mocks.NewMockSyncer(mockCtrl) // no expectations: any call fails the test

	profile := browsertest.NewProfile()
	profile.SetRegistered("./sw.js")
	port := newFakePort(InputName)
	port.inputs[InputName].value = "   "

	c, err := New(profile, server, port, Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	resp, err := c.SubscribeToPush(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.True(t, port.inputs[InputName].invalid, "input shows its own validation feedback")
	assert.Empty(t, profile.Calls())
	_, observed := port.lastState()
	assert.False(t, observed, "state unchanged")
}

func TestSubscribeToPush_KeyFetchFailure(t *testing.T) {
	h := newHarness(t)
	h.profile.SetRegistered("./sw.js")
	h.server.keyErr = errors.New("fetch vapid key: boom")

	_, err := h.ctrl.SubscribeToPush(context.Background())
	require.Error(t, err)
	assert.Empty(t, h.profile.Calls(), "no subscribe attempt without a key")
}

func TestUnsubscribeFromPush_CapturesBeforeTeardown(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	server := mocks.NewMockSyncer(mockCtrl)

	profile := browsertest.NewProfile()
	profile.SetRegistered("./sw.js")
	data := browser.SubscriptionJSON{
		Endpoint: "https://push.test/send/xyz",
		Keys:     browser.Keys{P256DH: "pk", Auth: "au"},
	}
	profile.SetSubscribed(data)
	port := newFakePort()

	var tornDown bool
	profile.OnUnsubscribe = func() { tornDown = true }

	// The handle reads as empty after teardown, so a match on data proves it
	// was captured beforehand.
	server.EXPECT().Unsubscribe(gomock.Any(), data).DoAndReturn(
		func(ctx context.Context, sub browser.SubscriptionJSON) (*pusher.Response, error) {
			assert.True(t, tornDown, "server is notified after the browser teardown")
			return &pusher.Response{StatusCode: 200}, nil
		})

	c, err := New(profile, server, port, Options{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	resp, err := c.UnsubscribeFromPush(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, []string{browsertest.CallUnsubscribe}, profile.Calls())
	state, _ := port.lastState()
	assert.Equal(t, RegisteredUnsubscribed, state)
}

func TestUnsubscribeFromPush_Noops(t *testing.T) {
	h := newHarness(t)
	resp, err := h.ctrl.UnsubscribeFromPush(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp)

	h.profile.SetRegistered("./sw.js")
	resp, err = h.ctrl.UnsubscribeFromPush(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resp)

	assert.Empty(t, h.profile.Calls())
	assert.Empty(t, h.server.Calls())
}

func TestUnsubscribeFromPush_NotificationFailureIsReturned(t *testing.T) {
	h := newHarness(t)
	h.profile.SetRegistered("./sw.js")
	h.profile.SetSubscribed(browser.SubscriptionJSON{Endpoint: "https://push.test/send/a"})
	h.server.postErr = errors.New("connection refused")

	_, err := h.ctrl.UnsubscribeFromPush(context.Background())
	assert.ErrorContains(t, err, "notify unsubscribe")
	assert.False(t, h.profile.Subscribed(), "browser side is already torn down")
	require.Len(t, h.server.unsubs, 1)
	assert.Equal(t, "https://push.test/send/a", h.server.unsubs[0].Endpoint)
}

func TestSendTestPush_WithMessageInput(t *testing.T) {
	h := newHarness(t, InputMessage)
	h.port.inputs[InputMessage].value = "ping"

	resp, err := h.ctrl.SendTestPush(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, []string{"ping"}, h.server.messages)
	assert.Equal(t, 1, h.port.inputs[InputMessage].cleared)

	h.port.inputs[InputMessage].value = "again"
	h.server.postErr = errors.New("nope")
	_, err = h.ctrl.SendTestPush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, h.port.inputs[InputMessage].cleared, "cleared regardless of outcome")
}

func TestSendTestPush_WithoutMessageInput(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.SendTestPush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"trigger"}, h.server.Calls())
}

func TestDispatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.ctrl.Dispatch(ctx, ActionNone))
	assert.Empty(t, h.profile.Calls())

	require.NoError(t, h.ctrl.Dispatch(ctx, ActionRegister))
	require.NoError(t, h.ctrl.Dispatch(ctx, ActionSubscribe))
	require.NoError(t, h.ctrl.Dispatch(ctx, ActionUnsubscribe))
	require.NoError(t, h.ctrl.Dispatch(ctx, ActionUnregister))
	assert.Equal(t, []string{
		browsertest.CallRegister,
		browsertest.CallSubscribe,
		browsertest.CallUnsubscribe,
		browsertest.CallUnregister,
	}, h.profile.Calls())

	require.NoError(t, h.ctrl.Dispatch(ctx, ActionTestPush))
	assert.Error(t, h.ctrl.Dispatch(ctx, Action(42)))
}
