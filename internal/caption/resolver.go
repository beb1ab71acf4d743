package caption

import (
	"context"
	"image"

	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/metrics"
	"price-finder/internal/models"
)

// Resolver applies a Strategy over the engines in a Registry.
type Resolver struct {
	registry *Registry
	logger   logger.Logger
}

func NewResolver(registry *Registry, log logger.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   log.With(map[string]interface{}{"component": "caption-resolver"}),
	}
}

// Resolve returns the caption for img under strategy. The error is non-nil
// only when the local model could not be initialized; every other failure
// yields the absent caption.
func (r *Resolver) Resolve(ctx context.Context, img image.Image, strategy Strategy) (models.Caption, error) {
	var (
		c   models.Caption
		err error
	)
	switch strategy {
	case StrategyLLM:
		c, _ = r.tryLLM(ctx, img)
	case StrategyLocal:
		c, err = r.tryLocal(ctx, img)
	default:
		var ok bool
		if c, ok = r.tryLLM(ctx, img); !ok {
			r.logger.Info("falling back to local captioning model", nil)
			c, err = r.tryLocal(ctx, img)
		}
	}

	if err == nil && !c.Available() {
		unavailable := errors.NewCaptionUnavailableError(string(strategy))
		r.logger.WithError(unavailable).Warn("no caption available", map[string]interface{}{
			"strategy":  string(strategy),
			"errorCode": string(unavailable.Code),
		})
	}
	return c, err
}

func (r *Resolver) tryLLM(ctx context.Context, img image.Image) (models.Caption, bool) {
	engine, err := r.registry.Get(ctx, SlotLLM)
	if err != nil {
		r.logger.Error("hosted caption engine unavailable", map[string]interface{}{"error": err.Error()})
		metrics.CaptionOutcomes.WithLabelValues(string(SlotLLM), "init_failed").Inc()
		return models.Caption{}, false
	}

	res := engine.Describe(ctx, img)
	r.record(engine.Name(), res)
	if res.Kind() == KindSuccess {
		return res.Caption(), true
	}
	return models.Caption{}, false
}

func (r *Resolver) tryLocal(ctx context.Context, img image.Image) (models.Caption, error) {
	engine, err := r.registry.Get(ctx, SlotLocal)
	if err != nil {
		metrics.CaptionOutcomes.WithLabelValues(string(SlotLocal), "init_failed").Inc()
		if _, ok := errors.AsStandardError(err); !ok {
			err = errors.NewModelInitError(string(SlotLocal), err)
		}
		r.logger.Error("local captioning model failed to initialize", map[string]interface{}{"error": err.Error()})
		return models.Caption{}, err
	}

	res := engine.Describe(ctx, img)
	r.record(engine.Name(), res)
	if res.Kind() == KindSuccess {
		return res.Caption(), nil
	}
	return models.Caption{}, nil
}

func (r *Resolver) record(engine string, res Result) {
	metrics.CaptionOutcomes.WithLabelValues(engine, res.metricLabel()).Inc()

	fields := map[string]interface{}{"engine": engine}
	if res.Err() != nil {
		fields["error"] = res.Err().Error()
	}

	switch {
	case res.Kind() == KindSuccess:
		r.logger.Debug("caption generated", fields)
	case res.Kind() == KindNeedsFallback && res.Reason() == ReasonQuota:
		r.logger.Warn("caption engine quota exhausted", fields)
	case res.Kind() == KindNeedsFallback && res.Reason() == ReasonEmpty:
		r.logger.Warn("caption engine returned empty text", fields)
	default:
		fields["result"] = res.metricLabel()
		r.logger.Error("caption engine failed", fields)
	}
}
