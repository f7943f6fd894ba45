package service

import (
	"context"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
)

// MOCK RESPOSITORY

type mockRepo struct {
	createRunFn func(ctx context.Context, run *model.Run) error
	finishRunFn func(ctx context.Context, run *model.Run) error
	addFileFn   func(ctx context.Context, ev *model.FileEvent) error
	getRunFn    func(ctx context.Context, id string) (*model.Run, error)
	listRunsFn  func(ctx context.Context, req *model.ListRequest) ([]model.Run, error)
	listFilesFn func(ctx context.Context, runID string) ([]model.FileEvent, error)
}

func (m *mockRepo) CreateRun(ctx context.Context, run *model.Run) error {
	return m.createRunFn(ctx, run)
}

func (m *mockRepo) FinishRun(ctx context.Context, run *model.Run) error {
	return m.finishRunFn(ctx, run)
}

func (m *mockRepo) AddFile(ctx context.Context, ev *model.FileEvent) error {
	return m.addFileFn(ctx, ev)
}

func (m *mockRepo) GetRun(ctx context.Context, id string) (*model.Run, error) {
	return m.getRunFn(ctx, id)
}

func (m *mockRepo) ListRuns(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
	return m.listRunsFn(ctx, req)
}

func (m *mockRepo) ListFiles(ctx context.Context, runID string) ([]model.FileEvent, error) {
	return m.listFilesFn(ctx, runID)
}
