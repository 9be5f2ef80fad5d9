package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/token"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/internal/validate"
	"github.com/tiplinehq/tipline/models"
)

// finalizeSubmission turns a prepared submission into a stored one. The
// anti-automation token is redeemed exactly once: files staged against it
// travel into the submission, and whether the pipeline succeeds or fails
// the token cannot be replayed.
func (h *Handler) finalizeSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	tenant, _ := utils.GetTenantFromContext(ctx)
	tokenID := chi.URLParam(r, "token_id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Err(err).Msg("failed to read request body")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	fields, err := validate.ValidateMessage(body, validate.SubmissionDesc())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// re-encode the validated fields so unknown keys stay stripped
	cleaned, err := json.Marshal(fields)
	if err != nil {
		log.Err(err).Msg("failed to re-encode validated payload")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var request models.SubmissionRequest
	if err := json.Unmarshal(cleaned, &request); err != nil {
		log.Err(err).Msg("submission payload does not decode")
		http.Error(w, "invalid submission payload", http.StatusBadRequest)
		return
	}

	redeemed, err := h.tokens.Redeem(tokenID)
	if err != nil || redeemed.TenantID != tenant.ID {
		h.respondError(w, r, token.ErrInvalidToken)
		return
	}

	receipt, err := h.services.SubmissionService.Create(ctx, tenant, request, redeemed.UploadedFiles, r.TLS != nil)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// committed: the token is spent and the staged temp files are no
	// longer needed
	h.tokens.Delete(tokenID)
	for _, file := range redeemed.UploadedFiles {
		h.staging.Discard(file.ID)
	}

	utils.WriteJSON(w, receipt, http.StatusCreated)
}
