package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gitlab.com/creatorhub/commission_api/actions"
	"gitlab.com/creatorhub/commission_api/apps/payments"
	"gitlab.com/creatorhub/commission_api/cache/networktree"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/crons"
	"gitlab.com/creatorhub/commission_api/monitor"
	"gitlab.com/creatorhub/commission_api/net/kafka"
	"gitlab.com/creatorhub/commission_api/net/redis"
	"gitlab.com/creatorhub/commission_api/queries"
	"gitlab.com/creatorhub/commission_api/queries/memory"
	"gitlab.com/creatorhub/commission_api/service"
)

// Server interface
type Server interface {
	Listen()
}

type server struct {
	config   config.Config
	actions  *actions.Actions
	service  *service.Service
	payments *payments.App
	redis    *redis.Client
	ctx      context.Context
	close    context.CancelFunc
	HTTP     *http.Server
}

// NewServer constructor
func NewServer(cfg config.Config) Server {
	ctx, close := context.WithCancel(context.Background())

	repo := newStorage(cfg)

	var trees service.TreeCache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(cfg.Redis.Addr, cfg.Redis.PoolSize)
		if err := redisClient.Connect(); err != nil {
			log.Fatal().Err(err).Str("section", "server").Str("addr", cfg.Redis.Addr).Msg("Unable to connect to redis")
		}
		trees = networktree.New(redisClient, cfg.Redis.TreeTTL)
	}

	dataServices := service.NewService(cfg, repo, trees)

	var paymentsApp *payments.App
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewKafkaConsumer(cfg.Kafka.Reader, cfg.Kafka.Brokers, cfg.Kafka.UseTLS, cfg.Kafka.Topics.Payments, cfg.Kafka.GroupID)
		paymentsApp = payments.NewApp(dataServices, consumer)
	}

	return &server{
		config:   cfg,
		service:  dataServices,
		actions:  actions.NewActions(cfg, dataServices),
		payments: paymentsApp,
		redis:    redisClient,
		ctx:      ctx,
		close:    close,
	}
}

func newStorage(cfg config.Config) queries.Storage {
	switch cfg.Storage.Driver {
	case config.StorageDriver_Memory:
		log.Warn().Str("section", "server").Msg("Using in-memory storage, data is lost on exit")
		return memory.New()
	default:
		repo, err := queries.NewRepo(cfg.DatabaseCluster)
		if err != nil {
			log.Fatal().Err(err).Str("section", "server").Msg("Unable to connect to database")
		}
		return repo
	}
}

// Listen for requests and payment events until a termination signal arrives
func (srv *server) Listen() {
	group, ctx := errgroup.WithContext(srv.ctx)

	// start the http server
	srv.HTTP = srv.newHTTPServer()
	group.Go(srv.ListenToRequests)
	group.Go(func() error {
		monitor.LoopProfilingServer(srv.config.Server.Monitoring)
		return nil
	})
	if srv.payments != nil {
		group.Go(func() error {
			return srv.payments.Run(ctx)
		})
	}
	crons.Start(srv.config.Crons, srv.service)

	group.Go(func() error {
		srv.stopOnSignal(ctx)
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Str("section", "server").Msg("Service stopped with an error")
	}

	if srv.redis != nil {
		if err := srv.redis.Disconnect(); err != nil {
			log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to close redis pool")
		}
	}
	// make sure database connection is closed on program exit
	queries.Close()
	log.Info().Str("section", "server").Str("app_event", "terminate").Str("state", "complete").Msg("All workers terminated")
}

func (srv *server) stopOnSignal(ctx context.Context) {
	// listen for termination signals
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case sig := <-sigc:
		log.Info().Str("section", "server").Str("app_event", "terminate").Str("signal", sig.String()).Msg("Shutting down services")
	case <-ctx.Done():
		log.Info().Str("section", "server").Str("app_event", "terminate").Msg("Worker failed, shutting down services")
	}
	srv.closeApp(5 * time.Second)
}

func (srv *server) closeApp(timeout time.Duration) {
	// define a timeout in which the graceful shutdown procedure should happen before forcing the shutdown
	timeoutFunc := time.AfterFunc(timeout, func() {
		log.Printf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds())
		os.Exit(0)
	})
	defer timeoutFunc.Stop()

	monitor.ShutdownServer()
	if err := srv.HTTP.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Str("section", "server").Str("action", "terminate").Msg("Unable to shutdown HTTP server")
	}

	crons.Close()
	// stops the payments consumer
	srv.close()
}
