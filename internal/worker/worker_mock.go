package worker

import (
	"context"
	"io"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/wb-go/wbf/retry"
)

type mockSink struct {
	prepareFn func(ctx context.Context) error
	putFn     func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
}

func (m *mockSink) Prepare(ctx context.Context) error {
	if m.prepareFn == nil {
		return nil
	}
	return m.prepareFn(ctx)
}

func (m *mockSink) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockSink) Locate(key string) string {
	return "mock://" + key
}

//----------------------------------

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}

//----------------------------------

type mockJournal struct {
	createFn func(ctx context.Context, run *model.Run) error
	addFn    func(ctx context.Context, ev *model.FileEvent) error
	finishFn func(ctx context.Context, run *model.Run) error
}

func (m *mockJournal) CreateRun(ctx context.Context, run *model.Run) error {
	return m.createFn(ctx, run)
}

func (m *mockJournal) AddFile(ctx context.Context, ev *model.FileEvent) error {
	return m.addFn(ctx, ev)
}

func (m *mockJournal) FinishRun(ctx context.Context, run *model.Run) error {
	return m.finishFn(ctx, run)
}
