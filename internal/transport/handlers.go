// Package transport provides methods for processing requests from journal endpoints
package transport

import (
	"context"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type JournalHandler struct {
	service JournalService
}

type JournalService interface {
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error) // список запусков
	Get(ctx context.Context, id string) (*model.Run, error)                   // один запуск со счетчиками
	GetFiles(ctx context.Context, id string) ([]model.FileEvent, error)       // результаты по файлам запуска
}

func NewJournalHandler(svc JournalService) *JournalHandler {
	return &JournalHandler{
		service: svc,
	}
}

func (h JournalHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h JournalHandler) GetAllRuns(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h JournalHandler) GetRun(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, err := h.service.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h JournalHandler) GetRunFiles(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, err := h.service.GetFiles(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}
