package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/repute/pkg/metrics"
)

type instrumented struct {
	next Store
}

// Instrument wraps s so every call records its latency and failures.
func Instrument(s Store) Store {
	return &instrumented{next: s}
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordErrorByComponent("repository", op)
	}
}

func (i *instrumented) Get(ctx context.Context, key Key) ([]byte, error) {
	start := time.Now()
	v, err := i.next.Get(ctx, key)
	observe("get", start, err)
	return v, err
}

func (i *instrumented) Set(ctx context.Context, key Key, value []byte) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	observe("set", start, err)
	return err
}

func (i *instrumented) Has(ctx context.Context, key Key) (bool, error) {
	start := time.Now()
	ok, err := i.next.Has(ctx, key)
	observe("has", start, err)
	return ok, err
}

func (i *instrumented) Count(ctx context.Context, kind Kind) (int, error) {
	start := time.Now()
	n, err := i.next.Count(ctx, kind)
	observe("count", start, err)
	return n, err
}

func (i *instrumented) Close() error { return i.next.Close() }
