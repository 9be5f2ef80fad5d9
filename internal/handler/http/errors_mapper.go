package http

import (
	"errors"
	"net/http"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/service"
	"github.com/tiplinehq/tipline/internal/store"
	"github.com/tiplinehq/tipline/internal/token"
	"github.com/tiplinehq/tipline/internal/upload"
	"github.com/tiplinehq/tipline/internal/validate"
)

var errorStatusMap = map[error]int{
	validate.ErrInvalidJSON:  http.StatusBadRequest,
	validate.ErrMissingKey:   http.StatusBadRequest,
	validate.ErrTypeMismatch: http.StatusBadRequest,

	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrInvalidCredentials:  http.StatusUnauthorized,
	service.ErrContextNotFound:     http.StatusNotFound,
	service.ErrTooManyReceivers:    http.StatusBadRequest,
	service.ErrNoRecipients:        http.StatusBadRequest,
	service.ErrTipNotFound:         http.StatusNotFound,

	token.ErrInvalidToken: http.StatusForbidden,

	upload.ErrChunkOutOfOrder: http.StatusBadRequest,
	upload.ErrUnknownFlow:     http.StatusBadRequest,

	store.ErrTenantNotFound:        http.StatusNotFound,
	store.ErrContextNotFound:       http.StatusNotFound,
	store.ErrQuestionnaireNotFound: http.StatusNotFound,
	store.ErrSchemaNotFound:        http.StatusNotFound,
	store.ErrNoUserWasFound:        http.StatusNotFound,
	store.ErrSubmissionNotFound:    http.StatusNotFound,
	store.ErrReceiverTipNotFound:   http.StatusNotFound,
	store.ErrSubmissionNotSaved:    http.StatusInternalServerError,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrPreparingStatement:   http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	var tooBig *upload.ErrFileTooBig
	if errors.As(err, &tooBig) {
		return http.StatusRequestEntityTooLarge
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the canonical error response for err: client errors
// echo the error text at the mapped status, everything else collapses to
// the bare status text so internal detail stays in the logs.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	log := logger.FromRequest(r)

	if status >= http.StatusInternalServerError {
		log.Err(err).Msg("request failed")
		http.Error(w, http.StatusText(status), status)
		return
	}

	log.Warn().Int("status", status).Msg(err.Error())
	http.Error(w, err.Error(), status)
}
