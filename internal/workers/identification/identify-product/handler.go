package identifyproduct

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"price-finder/internal/caption"
	"price-finder/internal/common/camunda"
	"price-finder/internal/common/errors"
	commonhttp "price-finder/internal/common/http"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/metrics"
	"price-finder/internal/common/validation"
	"price-finder/internal/models"
	"price-finder/internal/session"
)

const TaskType = "identify-product"

type CaptionResolver interface {
	Resolve(ctx context.Context, img image.Image, strategy caption.Strategy) (models.Caption, error)
}

type SessionStore interface {
	Lookup(ctx context.Context, sessionID, strategy, digest string) (*session.State, bool, error)
	Save(ctx context.Context, st *session.State) error
}

type Dependencies struct {
	Resolver  CaptionResolver
	Sessions  SessionStore
	Validator *validation.Validator
}

type Handler struct {
	config     *Config
	resolver   CaptionResolver
	sessions   SessionStore
	validator  *validation.Validator
	images     *commonhttp.Client
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		resolver:   deps.Resolver,
		sessions:   deps.Sessions,
		validator:  deps.Validator,
		images:     commonhttp.NewClient(config.ImageTimeout),
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.ParseJobInput(job, TaskType, h.validator, &input); err != nil {
		h.failJob(client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute resolves a caption for the input image. An absent caption is a
// successful result with CaptionAvailable false.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	strategyName := input.Strategy
	if strategyName == "" {
		strategyName = h.config.DefaultStrategy
	}
	strategy, err := caption.ParseStrategy(strategyName)
	if err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}

	data, err := h.loadImage(ctx, input)
	if err != nil {
		return nil, err
	}
	img, format, err := caption.DecodeImage(data)
	if err != nil {
		return nil, errors.NewInvalidImageError(err)
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = session.NewSessionID()
	}
	digest := session.Digest(data)

	if st, ok := h.lookup(ctx, sessionID, string(strategy), digest); ok {
		h.logger.Info("reusing session caption", map[string]interface{}{
			"sessionId":    sessionID,
			"source":       string(st.Source),
			"refinedQuery": st.Query != "",
		})
		return newOutput(sessionID, st.CaptionResult(), st.Query, true), nil
	}

	c, err := h.resolver.Resolve(ctx, img, strategy)
	if err != nil {
		return nil, err
	}

	h.logger.Info("caption resolved", map[string]interface{}{
		"sessionId": sessionID,
		"strategy":  string(strategy),
		"format":    format,
		"available": c.Available(),
		"source":    string(c.Source),
	})

	if h.sessions != nil {
		st := &session.State{
			SessionID:   sessionID,
			Strategy:    string(strategy),
			ImageDigest: digest,
			Caption:     c.Text,
			Source:      c.Source,
		}
		if err := h.sessions.Save(ctx, st); err != nil {
			h.logger.Warn("failed to save session caption", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
		}
	}

	return newOutput(sessionID, c, "", false), nil
}

// newOutput seeds the query from the caption unless the session holds a
// refined one.
func newOutput(sessionID string, c models.Caption, query string, reused bool) *Output {
	query = strings.TrimSpace(query)
	if query == "" {
		query = strings.TrimSpace(c.Text)
	}
	return &Output{
		SessionID:        sessionID,
		Caption:          c.Text,
		CaptionSource:    string(c.Source),
		CaptionAvailable: c.Available(),
		Query:            query,
		Reused:           reused,
	}
}

// lookup treats a session store failure as a miss.
func (h *Handler) lookup(ctx context.Context, sessionID, strategy, digest string) (*session.State, bool) {
	if h.sessions == nil {
		return nil, false
	}
	st, ok, err := h.sessions.Lookup(ctx, sessionID, strategy, digest)
	if err != nil {
		h.logger.Warn("session lookup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return nil, false
	}
	return st, ok
}

func (h *Handler) loadImage(ctx context.Context, input *Input) ([]byte, error) {
	if input.ImageBase64 != "" {
		data, err := caption.DecodeBase64(input.ImageBase64)
		if err != nil {
			return nil, errors.NewInvalidImageError(err)
		}
		return data, nil
	}
	if input.ImageURL == "" {
		return nil, errors.NewInputValidationError("imageBase64 or imageUrl is required")
	}

	resp, err := h.images.Get(ctx, input.ImageURL)
	if err != nil {
		return nil, errors.NewInvalidImageError(fmt.Errorf("fetch image: %w", err))
	}
	if !resp.OK() {
		return nil, errors.NewInvalidImageError(fmt.Errorf("fetch image: status %d", resp.StatusCode))
	}
	return resp.Body, nil
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
