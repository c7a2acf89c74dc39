package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/formforge/formforge-backend/shared/utils"
	"github.com/formforge/formforge-backend/v1/models"
	authutils "github.com/formforge/formforge-backend/v1/utils"
)

func (h *V1Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *V1Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *V1Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	caller, err := authutils.GetAuthenticatedUser(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.UserResponse{UserID: user.UserID, Email: user.Email})
}
