// Package service provides business-logic for the run journal
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/UnendingLoop/BatchWatermark/internal/mwlogger"
	"github.com/UnendingLoop/BatchWatermark/internal/repository"
	"github.com/google/uuid"
)

type JournalService struct {
	repo repository.JournalRepo
}

func NewJournalService(journalRep repository.JournalRepo) *JournalService {
	return &JournalService{repo: journalRep}
}

func (c JournalService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.repo.ListRuns(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch runs list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c JournalService) Get(ctx context.Context, id string) (*model.Run, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := c.repo.GetRun(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRunNotFound):
			return nil, model.ErrRunNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch run %q from DB", id))
			return nil, model.ErrCommon500
		}
	}

	return res, nil
}

// GetFiles returns per-file outcomes of a run; an unknown run is a 404, not an empty list.
func (c JournalService) GetFiles(ctx context.Context, id string) ([]model.FileEvent, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	if _, err := c.repo.GetRun(ctx, id); err != nil {
		switch {
		case errors.Is(err, model.ErrRunNotFound):
			return nil, model.ErrRunNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch run %q from DB", id))
			return nil, model.ErrCommon500
		}
	}

	res, err := c.repo.ListFiles(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch files of run %q from DB", id))
		return nil, model.ErrCommon500
	}

	return res, nil
}
