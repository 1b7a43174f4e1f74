package ws_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/internal/security"
	"github.com/cwrk-planet/watch-party/internal/transport/ws"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayEnv struct {
	srv     *httptest.Server
	gateway *ws.Gateway
	signer  *security.Signer
}

func newGatewayEnv(t *testing.T) *gatewayEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := security.NewVerifier(&key.PublicKey, "cwrk-auth", "watch-party", 30*time.Second, nil)
	registry := ws.NewRegistry()
	hub := ws.NewHub()
	proto := ws.NewProtocol(registry, hub, clockwork.NewFakeClockAt(time.UnixMilli(1000)), nil)
	gw := ws.NewGateway(ws.GatewayConfig{}, verifier, registry, hub, proto)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWS)
	mux.HandleFunc("/ws/stats", gw.HandleStats)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		gw.Shutdown()
		srv.Close()
	})

	return &gatewayEnv{
		srv:     srv,
		gateway: gw,
		signer:  security.NewSigner(key, "cwrk-auth", "watch-party", time.Hour, 0),
	}
}

func (e *gatewayEnv) dial(t *testing.T, p domain.Principal) *websocket.Conn {
	t.Helper()
	tok, err := e.signer.Sign(p, time.Now())
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?token=" + tok
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func emit(t *testing.T, c *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func next(t *testing.T, c *websocket.Conn) ws.Frame {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var f ws.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

// barrier returns once everything c sent before it has been handled.
func barrier(t *testing.T, c *websocket.Conn, ack int64) {
	t.Helper()
	emit(t, c, `{"event":"time-sync","ack":`+jsonInt(ack)+`}`)
	f := next(t, c)
	require.Equal(t, ws.EventAck, f.Event)
	require.Equal(t, ack, *f.Ack)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestGateway_RejectsUnauthenticated(t *testing.T) {
	env := newGatewayEnv(t)

	for _, q := range []string{"", "?token=", "?token=not.a.jwt"} {
		resp, err := http.Get(env.srv.URL + "/ws" + q)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, q)
		assert.Empty(t, body, q)
	}

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws?token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateway_LiveSession(t *testing.T) {
	env := newGatewayEnv(t)

	a := env.dial(t, domain.Principal{UserID: 1, Email: "a@example.com"})
	b := env.dial(t, domain.Principal{UserID: 2, Email: "b@example.com"})

	emit(t, a, `{"event":"join-room","data":"R"}`)
	barrier(t, a, 1)

	emit(t, b, `{"event":"join-room","data":{"roomCode":"R"}}`)
	barrier(t, b, 2)

	joined := next(t, a)
	assert.Equal(t, ws.EventUserJoined, joined.Event)
	assert.JSONEq(t, `{"userId":2,"email":"b@example.com"}`, string(joined.Data))

	resp, err := http.Get(env.srv.URL + "/ws/stats")
	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	_ = resp.Body.Close()
	assert.EqualValues(t, 2, stats["connections"])
	assert.EqualValues(t, 2, stats["subscriptions"])

	// malformed frames are dropped without a reply
	emit(t, a, `{"event":"play-video","data":{"roomCode":"R"}}`)
	emit(t, a, `{"event":"play-video","data":{"roomCode":"R","videoId":42,"videoTitle":"Intro"}}`)

	for _, c := range []*websocket.Conn{a, b} {
		f := next(t, c)
		require.Equal(t, ws.EventPlayVideo, f.Event)
		assert.JSONEq(t,
			`{"videoId":42,"videoTitle":"Intro","startedBy":1,"serverTime":1000,"startAt":6000}`,
			string(f.Data))
	}

	require.NoError(t, b.Close())

	left := next(t, a)
	assert.Equal(t, ws.EventUserLeft, left.Event)
	assert.JSONEq(t, `{"userId":2,"email":"b@example.com"}`, string(left.Data))
}

func TestGateway_ShutdownClosesConnections(t *testing.T) {
	env := newGatewayEnv(t)
	a := env.dial(t, domain.Principal{UserID: 1, Email: "a@example.com"})
	barrier(t, a, 1)

	env.gateway.Shutdown()

	require.NoError(t, a.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := a.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
