package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// receiverTip serializes one submission for the recipient it was fanned
// out to. Answers are rendered against the archived schema snapshot, with
// sensitive values masked unless the viewer holds the admin role.
func (h *Handler) receiverTip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, _ := utils.GetTenantFromContext(ctx)
	session := utils.GetSessionFromContext(ctx)
	tipID := chi.URLParam(r, "id")

	language := r.URL.Query().Get("language")
	if language == "" {
		language = tenant.DefaultLanguage
	}

	canViewSensitive := session.Role == models.RoleAdmin

	view, err := h.services.TipService.GetReceiverTip(ctx, tenant.ID, session.UserID, tipID, language, canViewSensitive)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	utils.WriteJSON(w, view, http.StatusOK)
}
