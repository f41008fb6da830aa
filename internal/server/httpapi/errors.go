package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/logging"
)

// AppError is an error ready to be written as an HTTP response.
type AppError struct {
	Code int
	Msg  string
	Base error
}

func (e *AppError) Error() string { return e.Msg }

func (e *AppError) Unwrap() error { return e.Base }

func (e *AppError) IsInternalError() bool { return e.Code/100 == 5 }

// AppErrorFromError maps service sentinels to statuses. Anything unknown is
// an internal error.
func AppErrorFromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return &AppError{http.StatusUnauthorized, "Incorrect email or password", err}
	case errors.Is(err, common.ErrUnauthenticated):
		return &AppError{http.StatusUnauthorized, "User not authenticated", err}
	case errors.Is(err, common.ErrSelfFollow):
		return &AppError{http.StatusBadRequest, "You cannot follow/unfollow yourself", err}
	case errors.Is(err, common.ErrorNotFound):
		return &AppError{http.StatusNotFound, "Not found", err}
	case errors.Is(err, common.ErrAlreadyExists):
		return &AppError{http.StatusConflict, "Try different email or username", err}
	case errors.Is(err, common.ErrValidation):
		return &AppError{http.StatusBadRequest, err.Error(), err}
	}
	return &AppError{http.StatusInternalServerError, "Internal server error", err}
}

func badRequest(msg string) *AppError {
	return &AppError{http.StatusBadRequest, msg, common.ErrValidation}
}

type errorBody struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	appErr := AppErrorFromError(err)
	if appErr.IsInternalError() {
		logger.Error(ctx, "request failed", "status", appErr.Code, "error", appErr.Base)
	}
	writeJSON(w, appErr.Code, errorBody{Message: appErr.Msg, Success: false})
}
