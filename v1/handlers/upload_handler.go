package handlers

import (
	"io"
	"net/http"

	"github.com/formforge/formforge-backend/shared/utils"
	"github.com/formforge/formforge-backend/v1/models"
	authutils "github.com/formforge/formforge-backend/v1/utils"
)

// Uploads are capped at 5MB plus headroom for the multipart envelope
const maxUploadRequestBytes = 6 * 1024 * 1024

func (h *V1Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequestBytes)
	if err := r.ParseMultipartForm(maxUploadRequestBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "An image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	// Anonymous respondents may upload; attribution is best-effort
	var uploadedBy *string
	if caller, err := authutils.GetAuthenticatedUser(r.Context()); err == nil {
		uploadedBy = &caller.ID
	}

	media, err := h.mediaService.UploadImage(r.Context(), data, header.Filename, header.Header.Get("Content-Type"), uploadedBy)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, models.UploadResponse{URL: media.URL})
}
