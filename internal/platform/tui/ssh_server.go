package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/core"
	"github.com/vovakirdan/junkshot/internal/prefs"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key is generated at ~/.junkshot/host_key.
	HostKeyPath string

	// PrefsDir holds one preferences file per SSH user.
	// If empty, preferences live at ~/.junkshot/players.
	PrefsDir string

	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	TickRate        int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:         ":23234",
		IdleTimeout:     30 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		TickRate:        30,
	}
}

// SSHServer serves the gallery to SSH clients through Wish.
type SSHServer struct {
	config SSHServerConfig
	deps   Deps
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates an SSH server. deps.Prefs is ignored; each user gets
// their own preferences file.
func NewSSHServer(cfg SSHServerConfig, deps Deps) (*SSHServer, error) {
	deps = deps.withDefaults()
	srv := &SSHServer{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.WithPrefix("ssh"),
	}

	hostKeyPath, err := resolveDataPath(cfg.HostKeyPath, "host_key")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: create host key directory: %w", err)
	}
	if srv.config.PrefsDir, err = resolveDataPath(cfg.PrefsDir, "players"); err != nil {
		return nil, err
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

func resolveDataPath(path, name string) (string, error) {
	if path == "" {
		path = filepath.Join("~", ".junkshot", name)
	}
	expanded, err := config.ExpandHome(path)
	if err != nil {
		return "", fmt.Errorf("tui: %w", err)
	}
	return expanded, nil
}

// prefsFile maps an SSH user name to a safe file name.
func prefsFile(user string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, user)
	if clean == "" || strings.Trim(clean, "_") == "" {
		clean = "anonymous"
	}
	return clean + ".yaml"
}

// teaHandler creates an app for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	deps := s.deps
	deps.Context = sess.Context()
	deps.Logger = s.deps.Logger.With("user", sess.User())
	deps.Prefs = nil
	store, err := prefs.NewStore(filepath.Join(s.config.PrefsDir, prefsFile(sess.User())), deps.Logger)
	if err != nil {
		s.logger.Warn("preferences unavailable", "user", sess.User(), "err", err)
	} else {
		deps.Prefs = store
	}

	return NewAppModel(deps, cfg, ""), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr().String())
		next(sess)
		s.logger.Info("session ended", "user", sess.User(), "remote", sess.RemoteAddr().String())
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("listening", "addr", s.config.Address)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.Shutdown()
	case err := <-serveErr:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("tui: serve ssh: %w", err)
	}
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
