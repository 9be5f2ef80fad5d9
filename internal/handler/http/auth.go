package http

import (
	"io"
	"net/http"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/internal/validate"
)

// sessionResponse is the payload returned on successful login.
type sessionResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	tenant, _ := utils.GetTenantFromContext(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Err(err).Msg("failed to read request body")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	fields, err := validate.ValidateMessage(body, validate.AuthDesc())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	username, _ := fields["username"].(string)
	password, _ := fields["password"].(string)

	user, err := h.services.AuthService.Login(ctx, tenant.ID, username, password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	session := h.sessions.Create(tenant.ID, user.ID, user.Role, user.Status, nil)

	utils.WriteJSON(w, sessionResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		Role:      session.Role,
	}, http.StatusOK)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	session := utils.GetSessionFromContext(r.Context())

	h.sessions.Revoke(session.ID)

	w.WriteHeader(http.StatusNoContent)
}
