package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"turtlesoup/internal/cache"
	"turtlesoup/internal/catalog"
	"turtlesoup/internal/config"
	"turtlesoup/internal/repository"
	"turtlesoup/internal/service"
	"turtlesoup/internal/transport/rest"
	"turtlesoup/internal/transport/ws"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func serve(ctx context.Context, cfg *config.Config) error {
	puzzles, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Int("puzzles", puzzles.Len()).Msg("catalog loaded")

	oracle := service.NewOracle(cfg.AI)
	if cfg.AI.IsEnabled() {
		log.Info().Str("model", cfg.AI.Model).Dur("timeout", cfg.AI.Timeout).Msg("oracle configured")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, every question will be answered with oracle unavailable")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress()})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		oracle = service.NewCachingOracle(oracle, cache.NewVerdictCache(rdb, cfg.VerdictTTL))
		log.Info().Str("addr", cfg.RedisAddress()).Dur("ttl", cfg.VerdictTTL).Msg("verdict cache enabled")
	}

	hub := ws.NewHub()
	defer hub.Close()

	games := service.NewGameService(repository.NewRoomRepo(), puzzles, oracle)
	games.SetBroadcaster(hub)

	router := rest.NewRouter(&rest.Container{
		GameService: games,
		WSHub:       hub,
		PublicURL:   cfg.PublicURL,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server exited")
	return nil
}

// loadCatalog picks the puzzle source: mongodb, a json file, or the built-in
// set, in that order.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch {
	case cfg.MongoURI != "":
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		defer client.Disconnect(context.Background())

		repo := repository.NewPuzzleRepo(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
		c, err := catalog.Load(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("load catalog from mongodb: %w", err)
		}
		return c, nil
	case cfg.CatalogFile != "":
		return catalog.LoadFile(cfg.CatalogFile)
	default:
		return catalog.Default()
	}
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}
