// Package instrumented provides a Prometheus metrics decorator for any
// repository. Collectors are package-level so several repositories share the
// same metric families, distinguished by table label.
package instrumented

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rowstore/internal/repository"
)

var (
	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rowstore_operation_duration_seconds",
		Help:    "Duration of repository operations",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{"table", "op"})

	opErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rowstore_operation_errors_total",
		Help: "Repository operations that returned an error",
	}, []string{"table", "op"})
)

// Register registers the repository metrics on the given registry, or the
// default registry if nil. Re-registration is tolerated.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{opDuration, opErrors} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Repo wraps an inner repository, timing every operation and counting
// failures.
type Repo[K repository.Key, T any] struct {
	inner repository.Repository[K, T]
	table string
}

// New wraps inner. The table name becomes the metric label.
func New[K repository.Key, T any](inner repository.Repository[K, T], table string) *Repo[K, T] {
	return &Repo[K, T]{inner: inner, table: table}
}

func (r *Repo[K, T]) observe(op string, start time.Time, err error) {
	opDuration.WithLabelValues(r.table, op).Observe(time.Since(start).Seconds())
	if err != nil {
		opErrors.WithLabelValues(r.table, op).Inc()
	}
}

func (r *Repo[K, T]) CreateSchema(ctx context.Context) error {
	start := time.Now()
	err := r.inner.CreateSchema(ctx)
	r.observe("create_schema", start, err)
	return err
}

func (r *Repo[K, T]) DropSchema(ctx context.Context) error {
	start := time.Now()
	err := r.inner.DropSchema(ctx)
	r.observe("drop_schema", start, err)
	return err
}

func (r *Repo[K, T]) Save(ctx context.Context, row T) (K, error) {
	start := time.Now()
	id, err := r.inner.Save(ctx, row)
	r.observe("save", start, err)
	return id, err
}

func (r *Repo[K, T]) SaveAll(ctx context.Context, rows []T) ([]K, error) {
	start := time.Now()
	ids, err := r.inner.SaveAll(ctx, rows)
	r.observe("save_all", start, err)
	return ids, err
}

func (r *Repo[K, T]) FindByID(ctx context.Context, id K) (*T, error) {
	start := time.Now()
	row, err := r.inner.FindByID(ctx, id)
	r.observe("find_by_id", start, err)
	return row, err
}

func (r *Repo[K, T]) FindExistingByID(ctx context.Context, id K) (T, error) {
	start := time.Now()
	row, err := r.inner.FindExistingByID(ctx, id)
	r.observe("find_existing_by_id", start, err)
	return row, err
}

func (r *Repo[K, T]) FindAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	rows, err := r.inner.FindAll(ctx)
	r.observe("find_all", start, err)
	return rows, err
}

func (r *Repo[K, T]) FindByIDs(ctx context.Context, ids []K) ([]T, error) {
	start := time.Now()
	rows, err := r.inner.FindByIDs(ctx, ids)
	r.observe("find_by_ids", start, err)
	return rows, err
}

func (r *Repo[K, T]) CopyAndSave(ctx context.Context, id K) (K, error) {
	start := time.Now()
	newID, err := r.inner.CopyAndSave(ctx, id)
	r.observe("copy_and_save", start, err)
	return newID, err
}

func (r *Repo[K, T]) DeleteByID(ctx context.Context, id K) error {
	start := time.Now()
	err := r.inner.DeleteByID(ctx, id)
	r.observe("delete_by_id", start, err)
	return err
}

func (r *Repo[K, T]) DeleteAll(ctx context.Context) error {
	start := time.Now()
	err := r.inner.DeleteAll(ctx)
	r.observe("delete_all", start, err)
	return err
}
