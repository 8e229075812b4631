package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/alexanderramin/ordertree/internal/domain"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver reports use-case events through logger. Failures the
// user can act on (bad input, stale versions, missing or in-use elements) are
// logged at warn with a failure attribute; anything else is an error.
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger.With("component", "service")}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, event.Fields[k])
	}
	if event.Err == nil {
		o.logger.InfoContext(ctx, "service_use_case", attrs...)
		return
	}

	attrs = append(attrs, "error", event.Err.Error())
	kind := FailureKind(event.Err)
	if kind == FailureInternal {
		o.logger.ErrorContext(ctx, "service_use_case", attrs...)
		return
	}
	attrs = append(attrs, "failure", kind)
	o.logger.WarnContext(ctx, "service_use_case", attrs...)
}

// Failure kinds reported by FailureKind.
const (
	FailureConflict   = "conflict"
	FailureValidation = "validation"
	FailureNotFound   = "not_found"
	FailureInUse      = "in_use"
	FailureDuplicate  = "duplicate"
	FailureStructure  = "structure"
	FailureInternal   = "internal"
)

// FailureKind classifies err by the domain error it wraps.
func FailureKind(err error) string {
	var (
		conflict   *domain.ConcurrentModificationError
		validation *domain.ValidationError
		all        domain.ValidationErrors
		inUse      *domain.InUseError
		dup        *domain.DuplicateError
		dupAssign  *domain.DuplicateAssignmentError
		structural *domain.StructuralError
	)
	switch {
	case errors.As(err, &conflict):
		return FailureConflict
	case errors.As(err, &all), errors.As(err, &validation):
		return FailureValidation
	case errors.Is(err, domain.ErrNotFound):
		return FailureNotFound
	case errors.As(err, &inUse):
		return FailureInUse
	case errors.As(err, &dup), errors.As(err, &dupAssign):
		return FailureDuplicate
	case errors.As(err, &structural):
		return FailureStructure
	}
	return FailureInternal
}

// observe emits one event for a use case that started at startedAt. Call it
// deferred with a pointer to the named error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   e == nil,
		Err:       e,
		Fields:    fields,
	})
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}
