package devserver

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/pushpanel/internal/browser"
	"github.com/five82/pushpanel/internal/pusher"
)

func validRecord(t *testing.T, endpoint string) pusher.SubscriptionRecord {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return pusher.SubscriptionRecord{
		SubscriptionJSON: browser.SubscriptionJSON{
			Endpoint: endpoint,
			Keys: browser.Keys{
				P256DH: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
				Auth:   base64.RawURLEncoding.EncodeToString(auth),
			},
		},
	}
}

func newTestServer(t *testing.T, opts Options) (*Server, *pusher.Client) {
	t.Helper()
	srv, err := New(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	client, err := pusher.NewClient(ts.URL, nil)
	require.NoError(t, err)
	return srv, client
}

func TestNew_PublicKey(t *testing.T) {
	srv, err := New(Options{})
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(srv.PublicKey())
	require.NoError(t, err)
	assert.Len(t, raw, 65, "uncompressed P-256 point")

	padded := srv.PublicKey() + "="
	again, err := New(Options{PublicKey: padded})
	require.NoError(t, err)
	assert.Equal(t, srv.PublicKey(), again.PublicKey())

	_, err = New(Options{PublicKey: "not-a-key"})
	assert.Error(t, err)
}

func TestServer_PublicKeyRoute(t *testing.T) {
	srv, client := newTestServer(t, Options{})
	key, err := client.PublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, srv.PublicKey(), key)
}

func TestServer_SubscribeLifecycle(t *testing.T) {
	srv, client := newTestServer(t, Options{TestPush: true})
	ctx := context.Background()

	rec := validRecord(t, "https://push.example.com/send/abc")
	rec.Name = "  laptop "
	resp, err := client.Subscribe(ctx, rec)
	require.NoError(t, err)
	assert.True(t, resp.OK())

	subs := srv.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, "laptop", subs[0].Name)

	assert.True(t, client.TestPushAvailable(ctx, rec.Endpoint))
	assert.True(t, client.TestPushAvailable(ctx, ""), "no endpoint means any target")
	assert.False(t, client.TestPushAvailable(ctx, "https://push.example.com/send/other"))

	resp, err = client.Unsubscribe(ctx, rec.SubscriptionJSON)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Empty(t, srv.Subscriptions())
	assert.False(t, client.TestPushAvailable(ctx, rec.Endpoint))

	resp, err = client.Unsubscribe(ctx, rec.SubscriptionJSON)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SubscribeRejectsBadRecords(t *testing.T) {
	srv, client := newTestServer(t, Options{})
	ctx := context.Background()

	bad := validRecord(t, "relative/path")
	resp, err := client.Subscribe(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad = validRecord(t, "https://push.example.com/x")
	bad.Keys.Auth = base64.RawURLEncoding.EncodeToString([]byte("short"))
	resp, err = client.Subscribe(ctx, bad)
	require.Error(t, err)
	assert.Contains(t, string(resp.Body), "auth secret")

	bad = validRecord(t, "https://push.example.com/x")
	bad.Keys.P256DH = "p256dh-1"
	_, err = client.Subscribe(ctx, bad)
	require.Error(t, err)

	assert.Empty(t, srv.Subscriptions())
}

func TestServer_TestPushInfoDisabled(t *testing.T) {
	srv, client := newTestServer(t, Options{})
	ctx := context.Background()
	rec := validRecord(t, "https://push.example.com/send/abc")
	_, err := client.Subscribe(ctx, rec)
	require.NoError(t, err)

	assert.False(t, client.TestPushAvailable(ctx, rec.Endpoint))
	srv.SetTestPush(true)
	assert.True(t, client.TestPushAvailable(ctx, rec.Endpoint))
}

func TestServer_TestPush(t *testing.T) {
	srv, client := newTestServer(t, Options{})
	ctx := context.Background()
	rec := validRecord(t, "https://push.example.com/send/abc")
	_, err := client.Subscribe(ctx, rec)
	require.NoError(t, err)

	_, err = client.SendTestPush(ctx, "ignored")
	require.NoError(t, err)
	assert.Empty(t, srv.Messages(), "no target, nothing recorded")

	srv.SetTestPush(true)
	_, err = client.SendTestPush(ctx, "hello")
	require.NoError(t, err)
	_, err = client.TriggerTestPush(ctx)
	require.NoError(t, err)

	msgs := srv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, []string{rec.Endpoint}, msgs[0].Recipients)
	assert.Empty(t, msgs[1].Text)
	assert.False(t, msgs[1].ReceivedAt.IsZero())
}

func TestServer_TestPushRejectsMalformedBody(t *testing.T) {
	srv, err := New(Options{TestPush: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/test-push", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_LogsErrorsAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv, err := New(Options{Logger: zap.New(core)})
	require.NoError(t, err)
	h := srv.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/vapid/pubkey", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/unsubscribe", strings.NewReader(`{"endpoint":"https://x.test/1"}`)))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 2)
	assert.Equal(t, "Not Found", errs[0].Message)
	assert.Equal(t, int64(http.StatusNotFound), errs[0].ContextMap()["status"])
	assert.Equal(t, 1, logs.FilterMessage("request").Len())
}
