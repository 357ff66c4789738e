package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"turtlescout.app/internal/config"
	"turtlescout.app/internal/gamedata"
	"turtlescout.app/internal/huntdata"
	"turtlescout.app/internal/persistence/linkdb"
	"turtlescout.app/internal/persistence/synclog"
	"turtlescout.app/internal/transport/feed"
	"turtlescout.app/internal/turtle"
)

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:8089", "feed listen address")
		huntsPath = flag.String("hunts", "./configs/hunts.yaml", "hunt dataset path")
		namesPath = flag.String("names", "./configs/names.yaml", "name index path")
		dataDir   = flag.String("data", "./data", "runtime data directory")
		disableDB = flag.Bool("disable_db", false, "disable the generated-link history db")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bridge] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	defaultPatch, ok := huntdata.ParsePatch(cfg.DefaultPatch)
	if !ok {
		logger.Fatalf("config: unknown default patch %q", cfg.DefaultPatch)
	}

	names, err := gamedata.Load(*namesPath)
	if err != nil {
		logger.Fatalf("name index: %v", err)
	}
	tables, soft, err := huntdata.Load(*huntsPath, names)
	if err != nil {
		logger.Fatalf("hunt dataset: %v", err)
	}
	for _, e := range soft {
		logger.Printf("hunt dataset: %v", e)
	}
	logger.Printf("hunt data loaded mobs=%d territories=%d skipped=%d",
		len(tables.Mobs), len(tables.Territories), len(soft))

	tags := &feed.TagHolder{}
	if cfg.PlayerTag != "" {
		tags.Set(cfg.PlayerTag)
	}

	session := &turtle.Session{}
	client, err := turtle.NewClient(turtle.Config{
		BaseURL:      cfg.TurtleBaseURL,
		TrainPath:    cfg.TurtleTrainPath,
		Timeout:      cfg.HTTPTimeout,
		DefaultPatch: defaultPatch,
		Tags:         tags,
		Logger:       logger,
	}, tables, session)
	if err != nil {
		logger.Fatalf("turtle client: %v", err)
	}

	reports := synclog.New(*dataDir)
	defer reports.Close()

	var links *linkdb.Store
	if !*disableDB {
		links, err = linkdb.Open(filepath.Join(*dataDir, "links.db"))
		if err != nil {
			logger.Fatalf("link db: %v", err)
		}
		defer links.Close()
	}

	feedSrv := feed.NewServer(feed.Config{
		Session: session,
		Relay:   client,
		Tags:    tags,
		Logger:  logger,
		OnReport: func(r feed.Report) {
			err := reports.Write(synclog.Report{
				Op:      r.Op,
				Session: r.Session,
				Mobs:    r.Mobs,
				OK:      r.OK,
				Detail:  r.Detail,
			})
			if err != nil {
				logger.Printf("sync log: %v", err)
			}
		},
		OnLink: func(l turtle.LinkData) {
			logger.Printf("train generated slug=%s patch=%s url=%s", l.Slug, l.HighestPatch, l.CollaborateURL)
			if links == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := links.Record(ctx, l); err != nil {
				logger.Printf("link db: %v", err)
			}
		},
	})

	mux := http.NewServeMux()
	mux.Handle("/v1/feed", feedSrv.Handler())

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
