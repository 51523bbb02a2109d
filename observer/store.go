package observer

import (
	"context"
	"time"

	"github.com/lectern-ai/lectern"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedStore wraps a lectern.VectorStore with OTEL instrumentation.
type ObservedStore struct {
	inner   lectern.VectorStore
	inst    *Instruments
	backend string
}

// WrapStore returns an instrumented vector store. backend names the
// implementation for metrics (e.g. "sqlite", "postgres").
func WrapStore(inner lectern.VectorStore, backend string, inst *Instruments) *ObservedStore {
	return &ObservedStore{inner: inner, inst: inst, backend: backend}
}

func (o *ObservedStore) Upsert(ctx context.Context, records []lectern.Record) error {
	ctx, span := o.inst.Tracer.Start(ctx, "store.upsert", trace.WithAttributes(
		AttrStoreBackend.String(o.backend),
		AttrStoreRecords.Int(len(records)),
	))
	defer span.End()
	start := time.Now()

	err := o.inner.Upsert(ctx, records)

	o.finish(ctx, span, "upsert", start, err)
	if err == nil {
		o.inst.StoreUpserts.Add(ctx, int64(len(records)), metric.WithAttributes(
			AttrStoreBackend.String(o.backend),
		))
	}
	return err
}

func (o *ObservedStore) Query(ctx context.Context, embedding []float32, topK int) ([]lectern.Hit, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "store.query", trace.WithAttributes(
		AttrStoreBackend.String(o.backend),
		AttrStoreTopK.Int(topK),
	))
	defer span.End()
	start := time.Now()

	hits, err := o.inner.Query(ctx, embedding, topK)

	span.SetAttributes(AttrStoreHitCount.Int(len(hits)))
	o.finish(ctx, span, "query", start, err)
	if err == nil {
		o.inst.StoreQueries.Add(ctx, 1, metric.WithAttributes(
			AttrStoreBackend.String(o.backend),
		))
	}
	return hits, err
}

func (o *ObservedStore) Count(ctx context.Context) (int, error) {
	return o.inner.Count(ctx)
}

func (o *ObservedStore) Init(ctx context.Context) error {
	return o.inner.Init(ctx)
}

func (o *ObservedStore) Close() error {
	return o.inner.Close()
}

func (o *ObservedStore) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	durationMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	o.inst.StoreDuration.Record(ctx, durationMs, metric.WithAttributes(
		AttrStoreBackend.String(o.backend),
		attribute.String("operation", op),
	))
}

var _ lectern.VectorStore = (*ObservedStore)(nil)
