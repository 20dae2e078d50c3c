package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/katatrina/complaint-BE/internal/mailer"
	"github.com/rs/zerolog/log"
)

// PayloadSendEmail contains all data of the task that we want to store in Redis.
type PayloadSendEmail struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

func (distributor *RedisTaskDistributor) DistributeTaskSendEmail(
	ctx context.Context,
	payload *PayloadSendEmail,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskSendEmail, jsonPayload, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	log.Info().Str("type", task.Type()).Str("subject", payload.Subject).Int("recipients", len(payload.To)).
		Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("task enqueued")

	return nil
}

func (processor *RedisTaskProcessor) ProcessTaskSendEmail(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadSendEmail
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	err := processor.mailer.SendEmail(ctx, mailer.Email{
		To:      payload.To,
		Subject: payload.Subject,
		Text:    payload.Text,
		HTML:    payload.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("type", task.Type()).Str("subject", payload.Subject).
		Int("recipients", len(payload.To)).Msg("task processed")

	return nil
}

// QueuedSender hands emails to the Redis queue instead of talking to SMTP directly.
// Queued emails are attempted once.
type QueuedSender struct {
	distributor TaskDistributor
}

func NewQueuedSender(distributor TaskDistributor) *QueuedSender {
	return &QueuedSender{distributor: distributor}
}

func (sender *QueuedSender) SendEmail(ctx context.Context, email mailer.Email) error {
	return sender.distributor.DistributeTaskSendEmail(ctx, &PayloadSendEmail{
		To:      email.To,
		Subject: email.Subject,
		Text:    email.Text,
		HTML:    email.HTML,
	}, asynq.MaxRetry(0), asynq.Queue(QueueCritical))
}
