package worker

import (
	"context"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/wb-go/wbf/retry"
)

// NoopPublisher - ЗАГЛУШКА, когда кафка не настроена
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}

// NoopJournal - ЗАГЛУШКА, когда журнал в postgres не настроен
type NoopJournal struct{}

func (NoopJournal) CreateRun(ctx context.Context, run *model.Run) error {
	return nil
}

func (NoopJournal) AddFile(ctx context.Context, ev *model.FileEvent) error {
	return nil
}

func (NoopJournal) FinishRun(ctx context.Context, run *model.Run) error {
	return nil
}
