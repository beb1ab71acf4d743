package fetchvideos

import (
	"context"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"price-finder/internal/common/camunda"
	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/metrics"
	"price-finder/internal/common/validation"
	"price-finder/internal/models"
)

const TaskType = "fetch-videos"

type VideoFetcher interface {
	FetchVideos(ctx context.Context, title string, limit int) ([]models.VideoRecord, error)
}

type Dependencies struct {
	Videos    VideoFetcher
	Validator *validation.Validator
}

type Handler struct {
	config     *Config
	videos     VideoFetcher
	validator  *validation.Validator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		videos:     deps.Videos,
		validator:  deps.Validator,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := camunda.ParseJobInput(job, TaskType, h.validator, &input); err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute looks up videos for one title. Provider failures degrade to an
// empty list so enrichment never fails the process.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInputValidationError("title is required")
	}

	limit := input.MaxResults
	if limit <= 0 {
		limit = h.config.MaxVideos
	}

	videos, err := h.videos.FetchVideos(ctx, title, limit)
	if err != nil {
		h.logger.Warn("video lookup failed", map[string]interface{}{
			"title":     title,
			"errorCode": string(errors.CodeOf(err)),
			"error":     err.Error(),
		})
		videos = []models.VideoRecord{}
	}

	return &Output{Videos: videos, Count: len(videos)}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		h.failJob(client, job, errors.NewInternalError(err))
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
