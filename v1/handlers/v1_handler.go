package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/formforge/formforge-backend/ai/embedding"
	"github.com/formforge/formforge-backend/ai/llm"
	"github.com/formforge/formforge-backend/ai/vectorindex"
	"github.com/formforge/formforge-backend/config"
	"github.com/formforge/formforge-backend/mediahost"
	"github.com/formforge/formforge-backend/monitoring"
	apierrors "github.com/formforge/formforge-backend/pkg/errors"
	"github.com/formforge/formforge-backend/shared/utils"
	"github.com/formforge/formforge-backend/v1/middleware"
	"github.com/formforge/formforge-backend/v1/services"
)

// V1Handler handles all V1 API routes
type V1Handler struct {
	authService       *services.AuthService
	formService       *services.FormService
	submissionService *services.SubmissionService
	mediaService      *services.MediaService
	jwtAuth           *middleware.JWTAuthMiddleware
}

// NewV1Handler wires the services behind the V1 API
func NewV1Handler(db *gorm.DB, cfg *config.AppConfig, embedder embedding.Embedder, completer llm.Completer, index vectorindex.Index, uploader mediahost.Uploader, metrics *monitoring.Metrics) *V1Handler {
	generator := services.NewGeneratorService(completer)
	return &V1Handler{
		authService:       services.NewAuthService(db, cfg.JWTSecret),
		formService:       services.NewFormService(db, embedder, index, generator, cfg.Memory, metrics),
		submissionService: services.NewSubmissionService(db, metrics),
		mediaService:      services.NewMediaService(db, uploader),
		jwtAuth:           middleware.NewJWTAuthMiddleware(cfg.JWTSecret),
	}
}

// SetupV1Routes configures all V1 API routes
func (h *V1Handler) SetupV1Routes(mux *http.ServeMux) {
	authLimit := middleware.RateLimitMiddleware(20, 15*time.Minute)
	generateLimit := middleware.RateLimitMiddleware(30, 10*time.Minute)

	// Auth routes
	mux.Handle("/api/v1/auth/", utils.PanicRecoveryMiddleware(authLimit(http.HandlerFunc(h.handleAuth))))

	// Form routes. Generation gets its own limiter; everything else under
	// /forms shares the dispatcher.
	mux.Handle("/api/v1/forms/generate", utils.PanicRecoveryMiddleware(generateLimit(h.jwtAuth.RequireAuth(http.HandlerFunc(h.generateForm)))))
	mux.Handle("/api/v1/forms", utils.PanicRecoveryMiddleware(h.jwtAuth.RequireAuth(http.HandlerFunc(h.listForms))))
	mux.Handle("/api/v1/forms/", utils.PanicRecoveryMiddleware(http.HandlerFunc(h.handleFormSubtree)))

	// Upload routes
	mux.Handle("/api/v1/uploads/image", utils.PanicRecoveryMiddleware(h.jwtAuth.OptionalAuth(http.HandlerFunc(h.uploadImage))))
}

// handleAuth handles authentication routes
func (h *V1Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/auth")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) != 1 || parts[0] == "" {
		utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
		return
	}

	switch parts[0] {
	case "signup":
		if r.Method != http.MethodPost {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.signup(w, r)
	case "login":
		if r.Method != http.MethodPost {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.login(w, r)
	case "me":
		if r.Method != http.MethodGet {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.jwtAuth.RequireAuth(http.HandlerFunc(h.currentUser)).ServeHTTP(w, r)
	default:
		utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// handleFormSubtree handles /api/v1/forms/:formId and its nested routes.
// Reading a form and submitting responses are public; the rest requires the
// owner's token.
func (h *V1Handler) handleFormSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/forms")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) < 1 || parts[0] == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Form ID is required")
		return
	}

	formID := parts[0]

	// Handle base form endpoint: GET /api/v1/forms/:formId
	if len(parts) == 1 {
		if r.Method == http.MethodGet {
			h.getForm(w, r, formID)
		} else {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "submit":
			if r.Method == http.MethodPost {
				h.submitForm(w, r, formID)
			} else {
				utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		case "submissions":
			if r.Method == http.MethodGet {
				h.jwtAuth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					h.listSubmissions(w, r, formID)
				})).ServeHTTP(w, r)
			} else {
				utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		case "reference-media":
			if r.Method == http.MethodPost {
				h.jwtAuth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					h.attachReferenceMedia(w, r, formID)
				})).ServeHTTP(w, r)
			} else {
				utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
	}

	utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
}

// respondServiceError translates service errors into HTTP responses
func respondServiceError(w http.ResponseWriter, err error) {
	if apiErr := apierrors.GetAPIError(err); apiErr != nil {
		utils.RespondWithError(w, apiErr.HTTPStatus, apiErr.Message)
		return
	}
	utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}
