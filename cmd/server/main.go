package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"foicore/internal/audit"
	auditkafka "foicore/internal/audit/kafka"
	"foicore/internal/calendar"
	"foicore/internal/calendar/holidays"
	"foicore/internal/platform/config"
	"foicore/internal/platform/httpserver"
	"foicore/internal/platform/logger"
	"foicore/internal/platform/metrics"
	"foicore/internal/platform/postgres"
	platformredis "foicore/internal/platform/redis"
	publicbodyHandler "foicore/internal/publicbody/handler"
	publicbodyService "foicore/internal/publicbody/service"
	publicbodyStore "foicore/internal/publicbody/store"
	statuteHandler "foicore/internal/statute/handler"
	statuteService "foicore/internal/statute/service"
	statuteStore "foicore/internal/statute/store"
	httptransport "foicore/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres unavailable", "error", err.Error())
		os.Exit(1)
	}

	// Stores fall back to memory when postgres is not configured, which
	// keeps local development dependency-free.
	var (
		statutes statuteService.StatuteStore
		bodies   publicbodyService.BodyStore
	)
	if db != nil {
		statutes = statuteStore.NewPostgres(db)
		bodies = publicbodyStore.NewPostgres(db)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		statutes = statuteStore.NewInMemory()
		bodies = publicbodyStore.NewInMemory()
	}

	var holidayCal calendar.Calendar = calendar.Empty{}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		holidayCal = holidays.NewRedis(redisClient.Client, log)
	}

	var publisher audit.Publisher = audit.Log{Logger: log}
	var kafkaPub *auditkafka.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err = auditkafka.New(cfg.Kafka, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err.Error())
			os.Exit(1)
		}
		publisher = kafkaPub
	}

	statuteSvc := statuteService.New(statutes,
		statuteService.WithDefaultStatuteID(cfg.DefaultStatuteID),
		statuteService.WithHolidayCalendar(holidayCal),
		statuteService.WithLogger(log),
		statuteService.WithMetrics(m),
		statuteService.WithAuditPublisher(publisher),
	)
	bodySvc := publicbodyService.New(bodies, statutes,
		publicbodyService.WithLogger(log),
		publicbodyService.WithMetrics(m),
		publicbodyService.WithAuditPublisher(publisher),
	)

	router := httptransport.NewRouter(
		statuteHandler.New(statuteSvc, log),
		publicbodyHandler.New(bodySvc, log),
		log, m,
	)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting foicore", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if kafkaPub != nil {
			if err := kafkaPub.Close(shutdownCtx); err != nil {
				log.Warn("kafka flush on shutdown failed", "error", err.Error())
			}
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if db != nil {
			_ = db.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
