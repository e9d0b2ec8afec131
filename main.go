package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio/api"
	"portfolio/assets"
	"portfolio/config"
	"portfolio/logging"
	"portfolio/metrics"
	"portfolio/page"
	"portfolio/scheduler"
	"portfolio/session"
	"portfolio/storage"
	"portfolio/theme"
)

var (
	dataDir    string
	listen     string
	listenPort int
	logLevel   string
	appVersion = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:          "portfolio",
	Short:        "portfolio – personal site server",
	Long:         "Serves the portfolio site with persistent light/dark theme preferences.",
	RunE:         run,
	SilenceUsage: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage portfolio configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default portfolio.yaml in the specified data directory (or current directory if not specified).",
	RunE:  runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.Flags().StringVar(&listen, "listen", "all", "IP address to listen on (default: all)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	configGenerateCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory where config file will be created (default: current directory)")
	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override config with CLI flags only if they were explicitly provided
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		if listen != "" && listen != "all" {
			cfg.ListenAddr = net.JoinHostPort(listen, fmt.Sprint(listenPort))
		} else {
			cfg.ListenAddr = fmt.Sprintf(":%d", listenPort)
		}
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDirAbs
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, storage.Options{
		Driver:        cfg.Storage.Driver,
		SQLitePath:    cfg.SQLitePath(),
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		RedisPrefix:   cfg.Storage.RedisPrefix,
	}, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	palette, err := theme.LoadPalette(assets.Files, assets.StylesheetPath, logger.Named("theme"))
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}

	sections, err := page.LoadSections(page.Content, "content")
	if err != nil {
		return fmt.Errorf("load sections: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	pendingTTL, _ := cfg.PendingTTL()
	pingInterval, _ := cfg.PingInterval()

	sessions := session.NewManager(session.Options{
		Profile:    cfg.Site,
		Sections:   sections,
		Store:      store,
		Metrics:    m,
		PendingTTL: pendingTTL,
		Logger:     logger.Named("session"),
	})

	apiServer := api.NewServer(api.Options{
		Sessions:      sessions,
		Palette:       palette,
		Store:         store,
		Static:        assets.Static(),
		Assets:        assets.Root(),
		Gatherer:      reg,
		Metrics:       m,
		CORSOrigins:   cfg.CORSOrigins,
		PingInterval:  pingInterval,
		SweepInterval: pendingTTL / 2,
		Logger:        logger.Named("api"),
	})

	sched := scheduler.New(logger.Named("scheduler"), apiServer.Tasks()...)
	schedDone := sched.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSignature(cfg.Site.Person.Name)
	printListeningAddresses(logger, cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	apiServer.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	cancel()
	<-schedDone
	return nil
}

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
	return nil
}

// printSignature writes the site owner's banner to the terminal.
func printSignature(name string) {
	accent := color.New(color.FgHiYellow, color.Bold)
	muted := color.New(color.FgHiBlack)
	fmt.Println()
	accent.Printf("  %s | Developer\n", name)
	muted.Printf("  portfolio %s\n\n", appVersion)
}

func printListeningAddresses(logger *zap.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Info("listening", zap.String("url", "http://"+addr))
		return
	}

	if host != "" && host != "0.0.0.0" && host != "::" {
		logger.Info("listening", zap.String("url", "http://"+net.JoinHostPort(host, port)))
		return
	}

	urls := []string{"http://localhost:" + port}
	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				urls = append(urls, "http://"+net.JoinHostPort(ipnet.IP.String(), port))
			}
		}
	}
	logger.Info("listening", zap.Strings("urls", urls))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
