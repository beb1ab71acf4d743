package caption

import (
	"fmt"

	"price-finder/internal/models"
)

// Kind enumerates the variants of Result.
type Kind int

const (
	KindSuccess Kind = iota
	KindNeedsFallback
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNeedsFallback:
		return "needs_fallback"
	case KindFailed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FallbackReason explains a NeedsFallback result. It only affects logging
// and metrics, never control flow.
type FallbackReason string

const (
	ReasonQuota FallbackReason = "quota"
	ReasonError FallbackReason = "error"
	ReasonEmpty FallbackReason = "empty"
)

// Result is the outcome of one Describe call: exactly one of Success,
// NeedsFallback or Failed.
type Result struct {
	kind    Kind
	caption models.Caption
	reason  FallbackReason
	err     error
}

// Success carries a caption. Blank text is turned into NeedsFallback(empty).
func Success(text string, source models.CaptionSource) Result {
	c := models.Caption{Text: text, Source: source}
	if !c.Available() {
		return NeedsFallback(ReasonEmpty, nil)
	}
	return Result{kind: KindSuccess, caption: c}
}

// NeedsFallback signals that the next engine in the chain should be tried.
func NeedsFallback(reason FallbackReason, err error) Result {
	return Result{kind: KindNeedsFallback, reason: reason, err: err}
}

// Failed is a terminal per-call failure.
func Failed(err error) Result {
	return Result{kind: KindFailed, err: err}
}

func (r Result) Kind() Kind { return r.kind }

// Caption is the zero Caption unless Kind is KindSuccess.
func (r Result) Caption() models.Caption { return r.caption }

func (r Result) Reason() FallbackReason { return r.reason }

func (r Result) Err() error { return r.err }

// metricLabel is the caption_outcomes_total result label.
func (r Result) metricLabel() string {
	switch r.kind {
	case KindSuccess:
		return "success"
	case KindNeedsFallback:
		return "fallback_" + string(r.reason)
	default:
		return "failed"
	}
}
