package mapping

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/eslsoft/wordgym/internal/entity"
)

// ToConnectError maps domain errors onto Connect status codes.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	var fetchErr *entity.FetchError
	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.As(err, &fetchErr):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, entity.ErrInvalidQuery),
		errors.Is(err, entity.ErrInvalidWordID),
		errors.Is(err, entity.ErrInvalidQuizRecord),
		errors.Is(err, entity.ErrNoDataRows),
		errors.Is(err, entity.ErrEmptyBody):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, entity.ErrWordNotFound), errors.Is(err, entity.ErrFavoriteNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, entity.ErrDuplicateRecord):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, entity.ErrNoSource):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
