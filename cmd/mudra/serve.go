package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/publish"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/spf13/cobra"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr     string
		camera   bool
		withTray bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gesture session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("camera") {
				cfg.Camera.Enabled = camera
			}
			return serve(cfg, logger, withTray)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().BoolVar(&camera, "camera", false, "Drive the session from the local camera")
	cmd.Flags().BoolVar(&withTray, "tray", false, "Show a system tray menu")
	return cmd
}

func serve(cfg *config.Config, logger *slog.Logger, withTray bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	tuning := cfg.Tuning()
	if p, err := st.ActiveProfile(); err == nil {
		tuning = p.Tuning
		logger.Info("using active profile", "profile", p.Name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load active profile: %w", err)
	}

	m := metrics.New("")
	session := app.NewSession(tuning,
		app.WithMetrics(m),
		app.WithLogger(logger),
		app.WithFallbackConfidence(cfg.Camera.Detector.MinConfidence),
	)

	hooks := hook.NewManager(cfg.Hooks.Dir, logger)
	if err := hooks.Discover(); err != nil {
		logger.Warn("hook discovery failed", "dir", cfg.Hooks.Dir, "error", err)
	}
	dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.Hooks.Timeout), st.Bindings(), m, logger)
	dispatcher.Start(ctx)
	defer dispatcher.Close()
	session.AddSink(dispatcher)

	if cfg.MQTT.Broker != "" {
		pub, err := publish.Connect(publish.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         cfg.MQTT.QoS,
			StateEvery:  cfg.MQTT.StateEvery,
		}, m, logger)
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		defer pub.Close()
		session.AddSink(pub)
	}

	srvConfig := server.Config{
		StaticDir: cfg.Server.StaticDir,
		Store:     st,
		Session:   session,
		Hooks:     hooks,
		Metrics:   m,
		Logger:    logger,
	}

	var local *app.App
	if cfg.Camera.Enabled {
		preview := server.NewPreview()
		srvConfig.Preview = preview
		local = app.New(cfg.AppConfig(), session, logger)
		local.SetFrameObserver(preview.Observe)
		if err := local.Start(ctx); err != nil {
			return fmt.Errorf("start camera: %w", err)
		}
		defer local.Stop()
	}

	srv := server.New(srvConfig)

	if !withTray {
		return srv.Run(ctx, cfg.Server.Addr)
	}

	// systray must own the main goroutine.
	errCh := make(chan error, 1)
	t := tray.New()
	go func() {
		errCh <- srv.Run(ctx, cfg.Server.Addr)
		t.Quit()
	}()
	wireTray(t, session, local, viewerURL(cfg.Server.Addr), logger)
	session.AddSink(t)
	t.OnQuit(stop)
	t.Run()

	stop()
	return <-errCh
}

func wireTray(t *tray.Tray, session *app.Session, local *app.App, url string, logger *slog.Logger) {
	t.OnToggle(func(enabled bool) {
		if local != nil {
			local.SetEnabled(enabled)
			return
		}
		if !enabled {
			session.Reset()
		}
	})
	t.OnReset(session.Reset)
	t.OnSettings(func() {
		if err := openBrowser(url); err != nil {
			logger.Warn("opening viewer failed", "url", url, "error", err)
		}
	})
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
