// Package job runs background work on asynq, a Redis-backed queue:
//
//   - services enqueue tasks through JobService.Client
//   - JobService's worker server executes them with the registered handlers
package job

import (
	"fmt"

	"github.com/deppfellow/gpthub/internal/config"
	"github.com/deppfellow/gpthub/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService owns both ends of the queue.
//
// Client is exported because services enqueue through it directly (it
// satisfies service.TaskEnqueuer). The worker server and the email sender
// stay private: tasks only run after InitHandlers has built the sender and
// Start has been called.
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger
	emails EmailSender
}

// NewJobService creates the client and worker server on cfg.Redis.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6, // contact notifications
				"default":  3,
				"low":      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// InitHandlers builds the dependencies the task handlers need.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) error {
	client, err := email.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create email client: %w", err)
	}
	j.emails = client
	return nil
}

// Mux routes task types to their handlers.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNewsletterWelcome, j.handleNewsletterWelcomeTask)
	mux.HandleFunc(TaskContactNotification, j.handleContactNotificationTask)
	return mux
}

// Start launches the worker server in the background.
func (j *JobService) Start() error {
	if j.emails == nil {
		return fmt.Errorf("job handlers not initialized")
	}

	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}
	return nil
}

// Stop waits for running tasks and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
