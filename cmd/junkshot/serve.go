package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/junkshot/internal/catalog"
	"github.com/vovakirdan/junkshot/internal/config"
	"github.com/vovakirdan/junkshot/internal/highscore"
	"github.com/vovakirdan/junkshot/internal/platform/tui"
	"github.com/vovakirdan/junkshot/internal/server"
	"github.com/vovakirdan/junkshot/internal/transport/ws"
)

var (
	flagHTTPAddr string
	flagSSHAddr  string
	flagHostKey  string
	flagEnvFile  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the score API, websocket play and SSH",
	Long: `Start the JunkShot servers.

HTTP serves the score endpoints and browser play:
  GET  /api/getHighestScore?difficulty=<d>
  POST /api/saveHighestScore   {"score": n, "difficulty": "<d>"}
  GET  /ws                      websocket game sessions

With --ssh, terminal players can also connect over SSH. Scores are shared
by every player of the server.

Settings come from the environment (JUNKSHOT_HTTP_ADDR, JUNKSHOT_SSH_ADDR,
JUNKSHOT_HOST_KEY, JUNKSHOT_DB_PATH, JUNKSHOT_CATALOG_URL,
JUNKSHOT_ALLOWED_ORIGINS, JUNKSHOT_SHUTDOWN_TIMEOUT, JUNKSHOT_SSH_IDLE_TIMEOUT),
optionally loaded from a .env file. Flags override the environment.

Examples:
  junkshot serve
  junkshot serve --http :9000 --ssh :23234
  junkshot serve --env-file ./prod.env`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP address (host:port)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH address (host:port); empty disables SSH")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "SSH host key file (generated if missing)")
	serveCmd.Flags().StringVar(&flagEnvFile, "env-file", ".env", "Optional dotenv file")
}

// serverConfig merges the dotenv file, the environment and flags.
func serverConfig(cmd *cobra.Command) (config.ServerConfig, error) {
	if err := godotenv.Load(flagEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.ServerConfig{}, fmt.Errorf("load %s: %w", flagEnvFile, err)
	}
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("http") {
		cfg.HTTPAddr = flagHTTPAddr
	}
	if flags.Changed("ssh") {
		cfg.SSHAddr = flagSSHAddr
	}
	if flags.Changed("host-key") {
		cfg.HostKeyPath = flagHostKey
	}
	if cmd.Root().PersistentFlags().Changed("db") {
		cfg.DBPath = flagDBPath
	}
	if cmd.Root().PersistentFlags().Changed("catalog") {
		cfg.CatalogURL = flagCatalog
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger(os.Stderr, "junkshot")

	cfg, err := serverConfig(cmd)
	if err != nil {
		return err
	}
	game := loadConfig(logger)

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	items := catalog.Open(cfg.CatalogURL)
	scores := highscore.NewLocalScores(store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := server.New(server.Options{
		Addr:            cfg.HTTPAddr,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Scores:          store,
		Play: ws.NewHandler(ws.Options{
			Catalog:        items,
			HighScores:     scores,
			Gameplay:       game.Gameplay,
			Difficulties:   game.Difficulties,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		}),
		Logger: logger,
	})

	errc := make(chan error, 2)
	running := 1
	go func() { errc <- httpServer.ListenAndServe(ctx) }()

	if cfg.SSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = cfg.SSHAddr
		sshCfg.HostKeyPath = cfg.HostKeyPath
		sshCfg.IdleTimeout = cfg.IdleTimeout
		sshCfg.ShutdownTimeout = cfg.ShutdownTimeout
		sshCfg.TickRate = flagFPS

		sshServer, err := tui.NewSSHServer(sshCfg, tui.Deps{
			Config:  game,
			Catalog: items,
			Scores:  scores,
			Board:   store,
			Logger:  logger,
		})
		if err != nil {
			stop()
			<-errc
			return err
		}
		running++
		go func() { errc <- sshServer.ListenAndServe(ctx) }()
	}

	// The first failure stops the others.
	var firstErr error
	for range running {
		if err := <-errc; err != nil && firstErr == nil {
			firstErr = err
			stop()
		}
	}
	return firstErr
}
