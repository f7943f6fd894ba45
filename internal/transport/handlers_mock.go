package transport

import (
	"context"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/gin-gonic/gin"
)

type mockJournalService struct {
	getListFn  func(ctx context.Context, req *model.ListRequest) ([]model.Run, error)
	getFn      func(ctx context.Context, id string) (*model.Run, error)
	getFilesFn func(ctx context.Context, id string) ([]model.FileEvent, error)
}

func (m *mockJournalService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
	return m.getListFn(ctx, req)
}

func (m *mockJournalService) Get(ctx context.Context, id string) (*model.Run, error) {
	return m.getFn(ctx, id)
}

func (m *mockJournalService) GetFiles(ctx context.Context, id string) ([]model.FileEvent, error) {
	return m.getFilesFn(ctx, id)
}

func init() {
	gin.SetMode(gin.TestMode)
}
