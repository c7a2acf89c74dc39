package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/formforge/formforge-backend/shared/utils"
	"github.com/formforge/formforge-backend/v1/models"
	authutils "github.com/formforge/formforge-backend/v1/utils"
)

func (h *V1Handler) generateForm(w http.ResponseWriter, r *http.Request) {
	caller, err := authutils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.GenerateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Memory retrieval is on unless the request explicitly disables it
	useMemory := req.UseMemory == nil || *req.UseMemory

	form, source, err := h.formService.CreateForm(r.Context(), caller.ID, req.Prompt, useMemory)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, models.GenerateFormResponse{
		Form:   form,
		Source: source,
	})
}

func (h *V1Handler) listForms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	caller, err := authutils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	items, err := h.formService.GetUserForms(r.Context(), caller.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

func (h *V1Handler) getForm(w http.ResponseWriter, r *http.Request, formID string) {
	form, err := h.formService.GetFormByID(r.Context(), formID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, form)
}

func (h *V1Handler) attachReferenceMedia(w http.ResponseWriter, r *http.Request, formID string) {
	caller, err := authutils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.AttachReferenceMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	urls := req.URLs
	if req.URL != "" {
		urls = append(urls, req.URL)
	}

	form, err := h.formService.AttachReferenceMedia(r.Context(), formID, caller.ID, urls)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, form)
}

func (h *V1Handler) submitForm(w http.ResponseWriter, r *http.Request, formID string) {
	var req models.SubmitFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, fieldErrors, err := h.submissionService.CreateSubmission(r.Context(), formID, req.Responses)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if len(fieldErrors) > 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, models.ValidationErrorResponse{Errors: fieldErrors})
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, models.SubmitFormResponse{Submission: submission})
}

func (h *V1Handler) listSubmissions(w http.ResponseWriter, r *http.Request, formID string) {
	caller, err := authutils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	submissions, err := h.submissionService.GetSubmissionsByForm(r.Context(), formID, caller.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, submissions)
}
