package transport

import (
	"errors"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrRunNotFound):
		return 404
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID):
		return 400
	default:
		return 500
	}
}
