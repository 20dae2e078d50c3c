package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/katatrina/complaint-BE/internal/mailer"
	"github.com/rs/zerolog/log"
)

/*
 This file contains code that will pick up the tasks from the Redis queue and process them.
*/

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

type RedisTaskProcessor struct {
	server *asynq.Server
	mailer mailer.Sender
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, sender mailer.Sender) *RedisTaskProcessor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Msg("process task failed")
			}),
			Logger: NewLogger(),
		},
	)

	return &RedisTaskProcessor{
		server: server,
		mailer: sender,
	}
}

// Start registers the task handlers for the mux, attaches the mux to the asynq server, and starts the server.
func (processor *RedisTaskProcessor) Start() error {
	return processor.server.Start(processor.mux())
}

func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}

func (processor *RedisTaskProcessor) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskSendEmail, processor.ProcessTaskSendEmail)

	return mux
}
