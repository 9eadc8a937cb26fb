package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-lifecycle-api/config"
	"github.com/oksasatya/user-lifecycle-api/internal/events"
	"github.com/oksasatya/user-lifecycle-api/internal/notify"
	"github.com/oksasatya/user-lifecycle-api/pkg/helpers"
	"github.com/oksasatya/user-lifecycle-api/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-events-worker", cfg.Env, cfg.LogLevel)

	var sender mailer.Sender = mailer.LogSender{Logger: logger}
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			log.Fatal("Mailgun not configured")
		}
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Info("MAIL_SEND_ENABLED=false; lifecycle mails are only logged")
	}

	consumer, err := events.NewConsumer(events.BrokerConfig{
		Broker:       cfg.EventBroker,
		Topic:        cfg.EventTopic,
		KafkaBrokers: cfg.KafkaBrokerList(),
		KafkaGroupID: cfg.KafkaGroupID,
		RabbitMQURL:  cfg.RabbitMQURL,
		Prefetch:     cfg.RabbitMQPrefetch,
		RequeueDelay: cfg.RabbitMQRequeueDelay,
	}, logger)
	if err != nil {
		log.Fatalf("consumer: %v", err)
	}
	defer func() { _ = consumer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n := notify.NewNotifier(sender, cfg.CompanyName, logger)
	logger.WithFields(logrus.Fields{"broker": cfg.EventBroker, "topic": cfg.EventTopic}).Info("events worker listening")
	if err := consumer.Run(ctx, n.Handle); err != nil {
		logger.WithError(err).Error("consumer stopped")
		return
	}
	logger.Info("shutting down...")
}
