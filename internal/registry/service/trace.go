package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "verireg/pkg/domain"
)

// startOp opens the span for a registry operation. The returned func ends
// the span and records metrics; pass it the operation's final error.
func (s *Service) startOp(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registry."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome(err))
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(op, outcome(err), start)
		}
	}
}

func accountAttr(key string, account id.AccountID) attribute.KeyValue {
	return attribute.String(key, account.String())
}
