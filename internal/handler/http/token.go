package http

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/upload"
	"github.com/tiplinehq/tipline/internal/utils"
)

// tokenResponse is the payload returned when an anti-automation token is
// issued. The whistleblower client presents the id with every staged file
// chunk and redeems it at finalization.
type tokenResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"creation_date"`
	ExpiresAt time.Time `json:"expiration_date"`
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	tenant, _ := utils.GetTenantFromContext(r.Context())

	issued := h.tokens.Issue(tenant.ID)

	utils.WriteJSON(w, tokenResponse{
		ID:        issued.ID,
		CreatedAt: issued.CreatedAt,
		ExpiresAt: issued.ExpiresAt,
	}, http.StatusCreated)
}

// multipartMemoryLimit caps how much of a chunk's multipart envelope is
// held in memory while parsing; larger bodies spill to temporary files.
const multipartMemoryLimit = 4 << 20

// uploadFile stages one chunk of a file against an issued token. Chunks
// follow the flow.js conventions: flowIdentifier groups the chunks of one
// file, flowChunkNumber orders them, and the descriptor is only
// materialized when the last chunk arrives.
func (h *Handler) uploadFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	tenant, _ := utils.GetTenantFromContext(r.Context())
	tokenID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		log.Err(err).Msg("malformed multipart body")
		http.Error(w, "malformed multipart body", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		log.Err(err).Msg("missing file part")
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		log.Err(err).Msg("failed to read file part")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	chunk := upload.Chunk{
		FlowID:      r.FormValue("flowIdentifier"),
		Number:      formInt(r, "flowChunkNumber"),
		Total:       formInt(r, "flowTotalChunks"),
		TotalSize:   int64(formInt(r, "flowTotalSize")),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Description: r.FormValue("description"),
		Data:        data,
	}
	if chunk.FlowID == "" {
		http.Error(w, "missing flowIdentifier", http.StatusBadRequest)
		return
	}

	file, err := h.staging.Put(tenant.ID, tenant.MaximumFilesize, chunk)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// intermediate chunk: acknowledged, nothing to attach yet
	if file == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.tokens.AttachFile(tokenID, *file); err != nil {
		h.staging.Discard(file.ID)
		h.respondError(w, r, err)
		return
	}

	utils.WriteJSON(w, file, http.StatusCreated)
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.FormValue(key))
	return n
}
