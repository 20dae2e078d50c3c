package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/katatrina/complaint-BE/api"
	"github.com/katatrina/complaint-BE/internal/blacklist"
	"github.com/katatrina/complaint-BE/internal/db"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/mailer"
	"github.com/katatrina/complaint-BE/internal/notifier"
	"github.com/katatrina/complaint-BE/internal/partner"
	"github.com/katatrina/complaint-BE/internal/proxy"
	"github.com/katatrina/complaint-BE/internal/util"
	"github.com/katatrina/complaint-BE/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	log.Info().Msg("configurations loaded successfully ✅")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	firestoreClient, err := db.NewFirestoreClient(ctx, config.FirebaseProjectID, config.FirebaseCredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to firestore 😣")
	}
	defer firestoreClient.Close()
	log.Info().Msg("connected to firestore ✅")

	store := db.NewStore(firestoreClient)

	var redisDb *redis.Client
	if config.RedisServerAddress != "" {
		redisDb = redis.NewClient(&redis.Options{
			Addr:     config.RedisServerAddress,
			Password: "", // no password set
			DB:       0,  // use default DB
		})
		defer redisDb.Close()

		if err = redisDb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis 😣")
		}
		log.Info().Msg("connected to redis ✅")
	}

	tokenBlacklist, stopBlacklist := newBlacklist(config, redisDb)
	defer stopBlacklist()

	mailService, stopMailer := newMailService(config)
	defer stopMailer()

	hub := event.NewHub()

	var (
		proxyRouter *proxy.Router
		dispatcher  *notifier.Dispatcher
	)
	if config.PartnerEnabled() {
		partnerClient := partner.NewClient(config.PartnerAPIBaseURL, config.PartnerRequestTimeout)
		defer partnerClient.Close()

		notificationService := notifier.NewNotifier(store, partnerClient, mailService, hub)
		dispatcher = notifier.NewDispatcher(notificationService.Handle, config.NotifierWorkers, config.NotifierQueueSize)
		dispatcher.Start()
		go notifier.LogErrors(dispatcher.Errors())
		log.Info().Int("workers", config.NotifierWorkers).Msg("notification dispatcher started ✅")

		proxyRouter = proxy.NewRouter(
			partnerClient.BaseURL(),
			partnerClient,
			proxy.NewGate(partnerClient),
			proxy.NewEnricher(store, hub),
			dispatcher,
		)
		log.Info().Str("partner", partnerClient.BaseURL()).Msg("partner proxy configured ✅")
	}

	server, err := api.NewServer(config, tokenBlacklist, proxyRouter, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server 😣")
	}

	go func() {
		log.Info().Str("address", config.HTTPServerAddress).Msg("HTTP server started ✅")
		if err := server.Start(config.HTTPServerAddress); err != nil {
			log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down HTTP server")
	}
	if dispatcher != nil {
		if err = dispatcher.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("notification dispatcher did not drain in time")
		}
	}

	log.Info().Msg("server stopped 👋")
}

// newBlacklist picks the shared Redis blacklist when Redis is configured, otherwise the in-process one.
func newBlacklist(config util.Config, redisDb *redis.Client) (blacklist.Blacklist, func()) {
	if redisDb != nil {
		log.Info().Msg("token blacklist backed by redis ✅")
		return blacklist.NewRedisBlacklist(redisDb), func() {}
	}

	memoryBlacklist, err := blacklist.NewMemoryBlacklist(config.BlacklistCleanupInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token blacklist 😣")
	}
	if err = memoryBlacklist.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start token blacklist cleanup 😣")
	}
	log.Warn().Msg("token blacklist is in-memory, logouts are not shared across instances ⚠️")

	return memoryBlacklist, func() {
		if err := memoryBlacklist.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop token blacklist cleanup")
		}
	}
}

// newMailService sends through SMTP directly, or through the asynq queue with a local processor
// draining it to SMTP.
func newMailService(config util.Config) (mailer.Sender, func()) {
	smtpSender, err := mailer.NewSMTPSender(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mailer service 😣")
	}

	if config.EmailDeliveryMode != util.EmailDeliveryQueue {
		log.Info().Msg("mailer service created successfully ✅")
		return smtpSender, func() {}
	}

	redisOpt := asynq.RedisClientOpt{
		Addr: config.RedisServerAddress,
	}

	taskDistributor := worker.NewTaskDistributor(redisOpt)
	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, smtpSender)
	if err = taskProcessor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start task processor 😣")
	}
	log.Info().Msg("task processor started ✅")

	return worker.NewQueuedSender(taskDistributor), func() {
		taskProcessor.Shutdown()
		if err := taskDistributor.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close task distributor")
		}
	}
}
