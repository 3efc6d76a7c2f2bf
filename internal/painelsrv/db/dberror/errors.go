// Package dberror declares the sentinel errors returned by the storage
// layer. Callers branch with errors.Is against these; the concrete driver
// error stays attached underneath for logging.
package dberror

import (
	"github.com/painelhub/painelcore/internal/common/apperrors"
)

var (
	ErrDatabase      apperrors.Error = apperrors.New("db error")
	ErrNotFound      apperrors.Error = ErrDatabase.New("not found")
	ErrAlreadyExists apperrors.Error = ErrDatabase.New("already exists")
	ErrInvalidInput  apperrors.Error = ErrDatabase.New("invalid input")

	// ErrPoolInit marks a pool that never became usable; ErrUnavailable is
	// what every lease request gets afterwards, fail-fast.
	ErrPoolInit    apperrors.Error = ErrDatabase.New("pool initialization failed")
	ErrUnavailable apperrors.Error = ErrDatabase.New("connection unavailable")
)
