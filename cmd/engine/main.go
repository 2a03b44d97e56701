package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"unhcr-feed-engine/internal/config"
	"unhcr-feed-engine/internal/feed"
	"unhcr-feed-engine/internal/metrics"
	"unhcr-feed-engine/internal/scrape"
	"unhcr-feed-engine/internal/scrape/util"
	"unhcr-feed-engine/internal/scrape/workday"
)

func main() {
	once := flag.Bool("once", false, "run a single fetch/publish cycle and exit")
	flag.Parse()

	dataDir := os.Getenv("UNHCR_FEED_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !res.OK() {
		for _, e := range res.Errors {
			log.Printf("[config] error: %s", e)
		}
		log.Fatalf("config invalid (%s)", userCfgPath)
	}

	// One engine process per data dir. Scheduled runs must never overlap
	// a second instance writing the same feed file.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock %s: %v", lock.Path(), err)
	}
	if !locked {
		log.Fatalf("another engine instance holds %s", lock.Path())
	}
	defer lock.Unlock()

	feedPath := cfg.Feed.File
	if !filepath.IsAbs(feedPath) {
		feedPath = filepath.Join(dataDir, feedPath)
	}
	store := feed.NewStore(feedPath)

	limiter := util.NewRequestLimiter(cfg.Source.RequestsPerSec, 1)
	scraper, err := workday.New(workday.Config{
		BoardURL: cfg.Source.BoardURL,
		PageSize: cfg.Source.PageSize,
		MaxPages: cfg.Source.MaxPages,
		Timeout:  time.Duration(cfg.Source.TimeoutSeconds) * time.Second,
	}, limiter)
	if err != nil {
		log.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)

	var statusVal atomic.Value
	statusVal.Store(scrape.Status{})

	runJob := func(ctx context.Context) error {
		st := statusVal.Load().(scrape.Status)
		st.Running = true
		st.LastRunAt = time.Now().Format(time.RFC3339)
		statusVal.Store(st)

		added, total, err := scrape.RunOnce(ctx, cfg, store, scraper, m)

		st = statusVal.Load().(scrape.Status)
		st.Running = false
		st.LastAdded = added
		if err != nil {
			st.LastError = err.Error()
			log.Printf("[run] error: %v", err)
		} else {
			st.LastError = ""
			st.LastOkAt = time.Now().Format(time.RFC3339)
			st.Entries = total
		}
		statusVal.Store(st)
		return err
	}

	if *once {
		if err := runJob(context.Background()); err != nil {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule.Cron, func() { _ = runJob(ctx) }); err != nil {
		log.Fatalf("bad schedule.cron %q: %v", cfg.Schedule.Cron, err)
	}
	c.Start()

	// First run right away; the cron entry handles the rest.
	go func() { _ = runJob(ctx) }()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "time": time.Now().Format(time.RFC3339)})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, statusVal.Load())
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		http.ServeFile(w, r, feedPath)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[engine] listening on http://%s (feed=%s)", addr, feedPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		cronCtx := c.Stop()
		<-cronCtx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
