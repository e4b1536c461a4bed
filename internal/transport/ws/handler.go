package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/junkshot/internal/catalog"
	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/games/junkshot"
	"github.com/vovakirdan/junkshot/internal/loop"
)

const (
	readLimit    = 64 << 10
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
	stopWait     = 2 * time.Second
	outboxSize   = 256
)

// Options configures the websocket endpoint.
type Options struct {
	Catalog        catalog.Source
	HighScores     junkshot.HighScores
	Gameplay       config.Gameplay
	Difficulties   config.DifficultyTable
	AllowedOrigins []string // Empty means same-origin only
	Logger         *log.Logger
}

// Handler upgrades requests and runs one game connection per socket.
type Handler struct {
	opts     Options
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the endpoint.
func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Difficulties == nil {
		opts.Difficulties = config.DefaultDifficulties()
	}
	return &Handler{
		opts:   opts,
		logger: opts.Logger.WithPrefix("ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(opts.AllowedOrigins),
		},
	}
}

// originChecker returns nil for an empty list so the upgrader applies its
// same-origin default.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")] = true
	}
	return func(r *http.Request) bool {
		if set["*"] {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return set[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	c := newConnection(h, conn, r.RemoteAddr)
	c.run()
}

// connection owns one socket, its loop and at most one live session.
type connection struct {
	h      *Handler
	conn   *websocket.Conn
	logger *log.Logger
	out    *Outbox
	loop   *loop.Loop

	ctx    context.Context
	cancel context.CancelFunc

	// Touched only by the read goroutine.
	session *junkshot.Session
}

func newConnection(h *Handler, conn *websocket.Conn, remote string) *connection {
	logger := h.logger.With("remote", remote)
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		h:      h,
		conn:   conn,
		logger: logger,
		out:    NewOutbox(outboxSize),
		loop:   loop.New(logger),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *connection) run() {
	c.logger.Info("client connected")
	go c.loop.Run(c.ctx)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.send(MsgWelcome, WelcomePayload{Difficulties: c.h.opts.Difficulties.Names()})
	c.readPump()

	c.stopSession()
	c.cancel()
	c.loop.Close()
	c.out.Close()
	<-writerDone
	c.logger.Info("client disconnected")
}

func (c *connection) readPump() {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read failed", "err", err)
			}
			return
		}
		env, err := DecodeEnvelope(msg)
		if err != nil {
			c.sendError(err.Error())
			continue
		}
		c.dispatch(env)
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.out.Frames():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn("write failed", "err", err)
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-c.out.Done():
			c.flush()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes whatever is still queued.
func (c *connection) flush() {
	for {
		select {
		case frame := <-c.out.Frames():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *connection) dispatch(env Envelope) {
	switch env.T {
	case MsgStart:
		c.start(env)
	case MsgShoot:
		p, err := DecodePayload[ShootPayload](env)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		if s := c.live(); s != nil {
			s.Shoot(junkshot.AimRay(p.X, p.Y))
		}
	case MsgPause:
		if s := c.live(); s != nil {
			s.Pause()
		}
	case MsgResume:
		if s := c.live(); s != nil {
			s.Resume()
		}
	case MsgStop:
		c.stopSession()
	case MsgState:
		if c.session == nil {
			c.sendError("no session")
			return
		}
		c.send(MsgState, c.session.Snapshot())
	default:
		c.sendError("unknown message type " + env.T)
	}
}

// live returns the current session unless it has finished.
func (c *connection) live() *junkshot.Session {
	if c.session == nil {
		return nil
	}
	select {
	case <-c.session.Done():
		return nil
	default:
		return c.session
	}
}

func (c *connection) start(env Envelope) {
	if c.live() != nil {
		c.sendError("session already running")
		return
	}
	var p StartPayload
	if len(env.P) > 0 {
		var err error
		if p, err = DecodePayload[StartPayload](env); err != nil {
			c.sendError(err.Error())
			return
		}
	}

	// The browser plays its own audio and keeps its own stored difficulty.
	s := junkshot.NewSession(junkshot.Options{
		Scheduler:    c.loop,
		Catalog:      c.h.opts.Catalog,
		HighScores:   c.h.opts.HighScores,
		Logger:       c.logger,
		Gameplay:     c.h.opts.Gameplay,
		Difficulties: c.h.opts.Difficulties,
	})
	s.OnEvent(func(ev junkshot.Event) { c.send(ev.Kind(), ev) })
	c.session = s
	c.logger.Info("session started", "session", s.ID(), "requested", p.Difficulty)
	s.Start(c.ctx, p.Difficulty)
}

// stopSession ends a live session and waits briefly for it to finish.
func (c *connection) stopSession() {
	s := c.live()
	if s == nil {
		return
	}
	s.Stop()
	select {
	case <-s.Done():
	case <-time.After(stopWait):
		c.logger.Warn("session did not stop in time", "session", s.ID())
	}
}

func (c *connection) send(t string, payload any) {
	frame, err := Encode(t, payload)
	if err != nil {
		c.logger.Warn("encode failed", "type", t, "err", err)
		return
	}
	c.out.Send(frame)
}

func (c *connection) sendError(msg string) {
	c.send(MsgError, ErrorPayload{Message: msg})
}
