package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/pkg/httputil"

	"github.com/gorilla/websocket"
)

type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

type GatewayConfig struct {
	PingEvery   time.Duration
	WriteWait   time.Duration
	ReadLimit   int64
	QueueSize   int
	CheckOrigin func(r *http.Request) bool
	ReadBuffer  int
	WriteBuffer int
}

func (c *GatewayConfig) withDefaults() {
	if c.PingEvery <= 0 {
		c.PingEvery = 15 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 5 * time.Second
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 64 << 10
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.ReadBuffer <= 0 {
		c.ReadBuffer = 1024
	}
	if c.WriteBuffer <= 0 {
		c.WriteBuffer = 1024
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = func(r *http.Request) bool { return true }
	}
}

// Gateway authenticates and upgrades live connections and runs their pumps.
type Gateway struct {
	cfg      GatewayConfig
	upgrader websocket.Upgrader
	verifier TokenVerifier
	registry *Registry
	hub      *Hub
	protocol *Protocol

	ctx    context.Context
	cancel context.CancelFunc
}

func NewGateway(cfg GatewayConfig, verifier TokenVerifier, registry *Registry, hub *Hub, protocol *Protocol) *Gateway {
	cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBuffer,
			WriteBufferSize: cfg.WriteBuffer,
			CheckOrigin:     cfg.CheckOrigin,
		},
		verifier: verifier,
		registry: registry,
		hub:      hub,
		protocol: protocol,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// HandleWS: GET /ws?token=...
// Authentication failures get a bare 401 before the upgrade.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	principal, err := g.verifier.Verify(token)
	if err != nil {
		slog.Debug("ws auth failed", slog.Any("err", err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already replied
		slog.Warn("ws upgrade failed", slog.Any("err", err))
		return
	}

	s := NewSession(principal, g.cfg.QueueSize)
	g.registry.Register(s)
	slog.Info("ws connected", "session", s.ID(), "user_id", principal.UserID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		g.writePump(conn, s)
	}()
	g.readPump(conn, s)

	g.protocol.HandleDisconnect(s)
	g.registry.Unregister(s.ID())
	s.Close()
	<-done

	slog.Info("ws disconnected", "session", s.ID(), "user_id", principal.UserID)
}

// HandleStats: GET /ws/stats
func (g *Gateway) HandleStats(w http.ResponseWriter, r *http.Request) {
	st := g.hub.Stats()
	httputil.JSON(w, http.StatusOK, map[string]any{
		"connections":   g.registry.Len(),
		"rooms":         st.Rooms,
		"subscriptions": st.Subscriptions,
		"perRoom":       st.PerRoom,
	})
}

// Shutdown closes every live connection; each one still runs its disconnect path.
func (g *Gateway) Shutdown() {
	g.cancel()
}

func (g *Gateway) readPump(conn *websocket.Conn, s *Session) {
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(g.cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(2 * g.cfg.PingEvery))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * g.cfg.PingEvery))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws read failed", "session", s.ID(), slog.Any("err", err))
			}
			return
		}

		in, err := ParseFrame(data)
		if err != nil {
			slog.Debug("ws frame dropped", "session", s.ID(), slog.Any("err", err))
			continue
		}
		g.protocol.HandleEvent(g.ctx, s, in)
	}
}

func (g *Gateway) writePump(conn *websocket.Conn, s *Session) {
	ticker := time.NewTicker(g.cfg.PingEvery)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					slog.Debug("ws write failed", "session", s.ID(), slog.Any("err", err))
				}
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(g.cfg.WriteWait)); err != nil {
				return
			}
		case <-g.ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(g.cfg.WriteWait))
			return
		}
	}
}
