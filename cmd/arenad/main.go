package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	arena "arena-server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path (empty disables persistence)")
	modeName := flag.String("mode", "ffa", "Match mode: ffa, tdm, ctf, koth, oddball, conquest, siege")
	seed := flag.Int64("seed", 0, "Map seed (0 picks one from the clock)")
	width := flag.Float64("width", 0, "World width (0 keeps the mode default)")
	height := flag.Float64("height", 0, "World height (0 keeps the mode default)")
	maxPlayers := flag.Int("max-players", 0, "Player cap (0 keeps the mode default)")
	ticketSecret := flag.String("ticket-secret", "", "HS256 key for join tickets (default: stored in the database)")
	devTickets := flag.Bool("dev-tickets", false, "Serve /ticket so local clients can mint tickets")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(log, options{
		addr:         *addr,
		dbPath:       *dbPath,
		mode:         *modeName,
		seed:         *seed,
		width:        *width,
		height:       *height,
		maxPlayers:   *maxPlayers,
		ticketSecret: *ticketSecret,
		devTickets:   *devTickets,
	}); err != nil {
		log.Error("arenad failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	addr         string
	dbPath       string
	mode         string
	seed         int64
	width        float64
	height       float64
	maxPlayers   int
	ticketSecret string
	devTickets   bool
}

func matchConfig(o options) (arena.MatchConfig, error) {
	mode, err := arena.ParseMode(o.mode)
	if err != nil {
		return arena.MatchConfig{}, err
	}
	cfg := arena.DefaultConfig(mode)
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	if o.width > 0 {
		cfg.WorldWidth = o.width
	}
	if o.height > 0 {
		cfg.WorldHeight = o.height
	}
	if o.maxPlayers > 0 {
		cfg.MaxPlayers = o.maxPlayers
	}
	return cfg, cfg.Validate()
}

func run(log *slog.Logger, o options) error {
	cfg, err := matchConfig(o)
	if err != nil {
		return err
	}

	var (
		db       *arena.DB
		recorder *arena.Recorder
	)
	if o.dbPath != "" {
		if db, err = arena.OpenDB(o.dbPath); err != nil {
			return err
		}
		defer db.Close()
	}

	secret := []byte(o.ticketSecret)
	switch {
	case len(secret) > 0:
	case db != nil:
		if secret, err = arena.LoadOrCreateSecret(db); err != nil {
			return err
		}
	default:
		if secret, err = arena.NewSecret(); err != nil {
			return err
		}
		log.Warn("ticket secret is ephemeral; tickets die with this process")
	}

	hub := arena.NewHub(log)
	gameOpts := arena.Options{Config: cfg, Logger: log, Sink: hub}
	if db != nil {
		recorder = arena.NewRecorder(db, log)
		gameOpts.Recorder = recorder
	}
	game, err := arena.NewGame(gameOpts)
	if err != nil {
		return err
	}
	if db != nil {
		if err := db.CreateMatch(game.MatchID(), cfg); err != nil {
			return err
		}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	server := &http.Server{
		Addr:    o.addr,
		Handler: arena.SetupRoutes(hub, game, arena.NewTickets(secret), arena.RouteOptions{DevTickets: o.devTickets}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error {
		// the match ending stops the whole process
		defer cancel()
		return game.Run(gctx)
	})
	g.Go(func() error {
		log.Info("server starting", "addr", o.addr, "match", game.MatchID(), "mode", cfg.Mode)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		return server.Shutdown(shutCtx)
	})

	err = g.Wait()

	if db != nil {
		recorder.Stop()
		if ferr := db.FinishMatch(game.MatchID(), game.Match()); ferr != nil {
			err = errors.Join(err, ferr)
		}
	}
	return err
}
