// mailworker consumes registration events and sends welcome emails.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/codeventure/warden/config"
	"github.com/codeventure/warden/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("parse redis url: %v", err)
	}
	redisClient := redis.NewClient(opts)
	defer func() { _ = redisClient.Close() }()

	wmLogger := watermill.NewStdLogger(false, false)

	subscriber, err := redisstream.NewSubscriber(
		redisstream.SubscriberConfig{
			Client:        redisClient,
			ConsumerGroup: "mailworker",
		},
		wmLogger,
	)
	if err != nil {
		log.Fatalf("create subscriber: %v", err)
	}

	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		log.Fatalf("smtp sender: %v", err)
	}

	router, err := mailer.NewWorker(subscriber, sender, wmLogger)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}

	if err := router.Run(ctx); err != nil {
		log.Fatalf("worker stopped: %v", err)
	}
}
