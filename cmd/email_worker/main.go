package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fittinglab/storefront/config"
	"github.com/fittinglab/storefront/pkg/helpers"
	"github.com/fittinglab/storefront/pkg/mailer"
	mailtpl "github.com/fittinglab/storefront/pkg/mailer/templates"
)

// sender is the part of mailer.Mailgun the worker needs.
type sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

var errPoison = errors.New("unprocessable email job")

// process renders and sends one queued job. Errors wrapping errPoison must not be requeued.
func process(ctx context.Context, mg sender, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", errPoison)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return fmt.Errorf("%w: unknown template %q", errPoison, job.Template)
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", errPoison, job.Template, err)
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return mg.Send(c, job.To, subject, text, html)
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)
	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("amqp connect failed")
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume failed")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			err := process(ctx, mg, msg.Body)
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, errPoison):
				logger.WithError(err).Warn("dropping email job")
				_ = msg.Nack(false, false)
			default:
				logger.WithError(err).Warn("send failed, requeueing")
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-ctx.Done()
	logger.Info("shutting down")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
