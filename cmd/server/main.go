package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"minebuddy.app/internal/bot"
	"minebuddy.app/internal/gameclient/sim"
	"minebuddy.app/internal/hub"
	"minebuddy.app/internal/logger"
	persistlog "minebuddy.app/internal/persistence/log"
	"minebuddy.app/internal/storage"
	"minebuddy.app/internal/transport/httpapi"
	"minebuddy.app/internal/transport/ws"
	"minebuddy.app/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":5000", "http listen address")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to anti-detection tuning yaml")
		consoleDir = flag.String("console_log", "", "directory for the console archive (empty to disable)")
		driver     = flag.String("driver", "sim", "game client driver (sim)")
	)
	flag.Parse()

	log := logger.New()

	tune, err := tuning.Load(loadableTuningPath(*tuningPath))
	if err != nil {
		log.WithError(err).Fatal("load tuning")
	}

	var dialer bot.Dialer
	switch *driver {
	case "sim":
		dialer = &sim.Dialer{}
	default:
		log.Fatalf("unknown driver %q", *driver)
	}

	store := storage.NewMemStore()
	h := hub.New(log)

	if dir := strings.TrimSpace(*consoleDir); dir != "" {
		archive := persistlog.NewConsoleLogger(dir)
		defer archive.Close()
		h.SetArchive(archive)
		log.WithField("dir", dir).Info("console archive enabled")
	}

	manager := bot.NewManager(dialer, h, tune, log)

	mux := http.NewServeMux()
	httpapi.NewServer(store, manager, h, log).Register(mux)
	mux.HandleFunc(ws.Path, ws.NewServer(h, manager, log).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", *addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		manager.Disconnect()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// loadableTuningPath keeps a missing default tuning file from being fatal:
// the built-in profiles are a fine fallback for a bare checkout.
func loadableTuningPath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
